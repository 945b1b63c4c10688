// Package stream splits a streamed assistant response into a thinking channel and an answer
// channel based on in-band delimiter tags. Models such as DeepSeek R1 emit their reasoning
// trace between <think> and </think> before the final answer; the UI shows the two segments
// separately.
package stream

import (
	"regexp"
	"strings"
	"time"
)

// Delimiter tags marking the thinking region inside the raw model output.
const (
	OpenTag  = "<think>"
	CloseTag = "</think>"
)

// Non-greedy, so only the first well-formed region is recognized.
var thinkRegion = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// State is the split of an assistant message buffer. Thinking holds the text inside the
// delimiter region, Content the text outside it, both trimmed at the boundaries. IsThinking
// is true while no closing tag has been observed; per message it only ever flips from true
// to false.
type State struct {
	Thinking   string
	Content    string
	IsThinking bool
}

// Split evaluates a complete message buffer. If the buffer contains a well-formed region,
// the interior becomes Thinking and the remainder (with the region and both tags removed)
// becomes Content. An opening tag without a closing tag leaves the message in the thinking
// phase, with everything after the tag as Thinking; this is not an error. A buffer with no
// tags at all is plain answer content.
//
// Split is idempotent: the same buffer always yields the same State.
func Split(buf string) State {
	if m := thinkRegion.FindStringSubmatchIndex(buf); m != nil {
		return State{
			Thinking: strings.TrimSpace(buf[m[2]:m[3]]),
			Content:  strings.TrimSpace(buf[:m[0]] + buf[m[1]:]),
		}
	}
	if idx := strings.Index(buf, OpenTag); idx != -1 {
		return State{
			Thinking:   strings.TrimSpace(buf[idx+len(OpenTag):]),
			IsThinking: true,
		}
	}
	return State{Content: strings.TrimSpace(buf)}
}

type scanMode int

const (
	// modeLeading is the default at message start: no tag seen yet, text displays as thinking.
	modeLeading scanMode = iota
	// modeThinking is entered on the opening tag.
	modeThinking
	// modeAnswer is entered on the closing tag and never left.
	modeAnswer
)

// Scanner incrementally splits a streamed message, remembering its scan position so each
// chunk is examined once instead of re-parsing the whole cumulative buffer. The mode
// transition on the closing tag is irreversible; a Scanner is good for exactly one
// assistant message and a new one must be created when the next message starts.
type Scanner struct {
	mode scanMode

	// lead collects text seen before any opening tag. While leading it displays as
	// thinking; once the full region resolves it belongs to the answer.
	lead     strings.Builder
	thinking strings.Builder
	answer   strings.Builder

	// pending withholds a chunk tail that could be the start of the next expected tag.
	pending string

	thinkingStart time.Time
	thinkingStop  time.Time
}

// NewScanner returns a Scanner in the default thinking mode.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Push feeds the next raw chunk to the scanner and returns the resulting state. Pushing an
// empty chunk is a no-op beyond re-reporting the current state.
func (s *Scanner) Push(chunk string) State {
	s.pending += chunk

	for s.pending != "" {
		if s.mode == modeAnswer {
			// Only the first delimited region is recognized; everything else is answer text.
			s.answer.WriteString(s.pending)
			s.pending = ""
			break
		}

		target := OpenTag
		if s.mode == modeThinking {
			target = CloseTag
		}

		idx := strings.Index(s.pending, target)
		if idx == -1 {
			s.emit(s.withholdPartial(target))
			break
		}

		s.emit(s.pending[:idx])
		s.pending = s.pending[idx+len(target):]
		s.advance()
	}

	st := s.State()
	if s.thinkingStart.IsZero() && st.Thinking != "" {
		s.thinkingStart = time.Now()
	}
	return st
}

// withholdPartial splits off a trailing prefix of target (e.g. "<th" while waiting for
// "<think>") so a tag broken across chunks is not emitted as text. It returns the emittable
// part and leaves the withheld tail in pending.
func (s *Scanner) withholdPartial(target string) string {
	if i := strings.LastIndexByte(s.pending, '<'); i != -1 && strings.HasPrefix(target, s.pending[i:]) {
		emittable := s.pending[:i]
		s.pending = s.pending[i:]
		return emittable
	}
	emittable := s.pending
	s.pending = ""
	return emittable
}

func (s *Scanner) emit(text string) {
	if text == "" {
		return
	}
	switch s.mode {
	case modeLeading:
		s.lead.WriteString(text)
	case modeThinking:
		s.thinking.WriteString(text)
	case modeAnswer:
		s.answer.WriteString(text)
	}
}

func (s *Scanner) advance() {
	switch s.mode {
	case modeLeading:
		s.mode = modeThinking
	case modeThinking:
		s.mode = modeAnswer
		s.thinkingStop = time.Now()
	case modeAnswer:
	}
}

// State reports the current split. Before any tag has been seen, all received text displays
// as thinking; after the opening tag only the region interior does; after the closing tag
// the interior is frozen and everything outside it is answer content.
func (s *Scanner) State() State {
	switch s.mode {
	case modeThinking:
		return State{
			Thinking:   strings.TrimSpace(s.thinking.String()),
			IsThinking: true,
		}
	case modeAnswer:
		return State{
			Thinking: strings.TrimSpace(s.thinking.String()),
			Content:  strings.TrimSpace(s.lead.String() + s.answer.String()),
		}
	default:
		return State{
			Thinking:   strings.TrimSpace(s.lead.String()),
			IsThinking: true,
		}
	}
}

// ThinkingDuration reports the elapsed time since thinking text was first observed. It keeps
// growing while the thinking phase is open and freezes once the closing tag arrives. Zero if
// no thinking text has been seen.
func (s *Scanner) ThinkingDuration() time.Duration {
	if s.thinkingStart.IsZero() {
		return 0
	}
	if !s.thinkingStop.IsZero() {
		return s.thinkingStop.Sub(s.thinkingStart)
	}
	return time.Since(s.thinkingStart)
}
