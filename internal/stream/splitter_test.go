package stream_test

import (
	"strings"
	"testing"

	"github.com/grailstone/think-web-ui/internal/stream"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		want stream.State
	}{
		{
			name: "Complete region",
			buf:  "<think>step one</think>Final answer.",
			want: stream.State{Thinking: "step one", Content: "Final answer."},
		},
		{
			name: "Unterminated region",
			buf:  "<think>still working",
			want: stream.State{Thinking: "still working", IsThinking: true},
		},
		{
			name: "No tags",
			buf:  "Plain answer.",
			want: stream.State{Content: "Plain answer."},
		},
		{
			name: "Boundary whitespace trimmed",
			buf:  "<think>\n  reasoning  \n</think>\n\nanswer\n",
			want: stream.State{Thinking: "reasoning", Content: "answer"},
		},
		{
			name: "Text before the opening tag stays in content",
			buf:  "preamble <think>inner</think> tail",
			want: stream.State{Thinking: "inner", Content: "preamble  tail"},
		},
		{
			name: "Only the first region is recognized",
			buf:  "<think>one</think>mid<think>two</think>end",
			want: stream.State{Thinking: "one", Content: "mid<think>two</think>end"},
		},
		{
			name: "Empty buffer",
			buf:  "",
			want: stream.State{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stream.Split(tt.buf)
			if got != tt.want {
				t.Errorf("Split(%q) = %+v, want %+v", tt.buf, got, tt.want)
			}
		})
	}
}

func TestSplitIdempotent(t *testing.T) {
	buf := "<think>step one</think>Final answer."
	first := stream.Split(buf)
	for i := 0; i < 3; i++ {
		if got := stream.Split(buf); got != first {
			t.Fatalf("Split run %d = %+v, want %+v", i+2, got, first)
		}
	}
}

func TestScanner(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   stream.State
	}{
		{
			name:   "Complete region in one chunk",
			chunks: []string{"<think>step one</think>Final answer."},
			want:   stream.State{Thinking: "step one", Content: "Final answer."},
		},
		{
			name:   "Tag split across chunks",
			chunks: []string{"<th", "ink>reasoning</think>", "Hello!"},
			want:   stream.State{Thinking: "reasoning", Content: "Hello!"},
		},
		{
			name:   "Closing tag split across chunks",
			chunks: []string{"<think>deep", " thought</thi", "nk>done"},
			want:   stream.State{Thinking: "deep thought", Content: "done"},
		},
		{
			name:   "Opening tag only",
			chunks: []string{"<think>", "still ", "working"},
			want:   stream.State{Thinking: "still working", IsThinking: true},
		},
		{
			name:   "No tags defaults to thinking",
			chunks: []string{"no tags ", "at all"},
			want:   stream.State{Thinking: "no tags at all", IsThinking: true},
		},
		{
			name:   "Second region flows to the answer",
			chunks: []string{"<think>one</think>mid", "<think>two</think>end"},
			want:   stream.State{Thinking: "one", Content: "mid<think>two</think>end"},
		},
		{
			name:   "Angle bracket that is not a tag",
			chunks: []string{"<think>a < b</think>so a <", " b holds"},
			want:   stream.State{Thinking: "a < b", Content: "so a < b holds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := stream.NewScanner()
			var got stream.State
			for _, chunk := range tt.chunks {
				got = sc.Push(chunk)
			}
			if got != tt.want {
				t.Errorf("state after %d chunks = %+v, want %+v", len(tt.chunks), got, tt.want)
			}
			if got != sc.State() {
				t.Errorf("Push returned %+v but State() reports %+v", got, sc.State())
			}
		})
	}
}

func TestScannerMatchesSplitOnCompleteBuffers(t *testing.T) {
	bufs := []string{
		"<think>step one</think>Final answer.",
		"<think>\n  reasoning  \n</think>\n\nanswer\n",
		"<think>one</think>mid<think>two</think>end",
	}

	for _, buf := range bufs {
		sc := stream.NewScanner()
		var got stream.State
		for _, r := range buf {
			got = sc.Push(string(r))
		}
		if want := stream.Split(buf); got != want {
			t.Errorf("byte-at-a-time scan of %q = %+v, want %+v", buf, got, want)
		}
	}
}

func TestScannerLatchIsMonotonic(t *testing.T) {
	sc := stream.NewScanner()
	sc.Push("<think>reasoning</think>")

	if st := sc.State(); st.IsThinking {
		t.Fatal("IsThinking should be false after the closing tag")
	}

	for _, chunk := range []string{"more ", "answer ", "<think>late region</think>"} {
		if st := sc.Push(chunk); st.IsThinking {
			t.Fatalf("IsThinking reverted to true after pushing %q", chunk)
		}
	}

	if st := sc.State(); st.Thinking != "reasoning" {
		t.Errorf("Thinking = %q, want it frozen at %q", st.Thinking, "reasoning")
	}
}

func TestScannerThinkingDuration(t *testing.T) {
	sc := stream.NewScanner()

	if d := sc.ThinkingDuration(); d != 0 {
		t.Fatalf("ThinkingDuration before any text = %v, want 0", d)
	}

	sc.Push("<think>reasoning")
	open := sc.ThinkingDuration()
	if open < 0 {
		t.Fatalf("ThinkingDuration while open = %v, want >= 0", open)
	}

	sc.Push("</think>answer")
	frozen := sc.ThinkingDuration()
	if frozen < 0 {
		t.Fatalf("ThinkingDuration after close = %v, want >= 0", frozen)
	}
	sc.Push(" more answer")
	if got := sc.ThinkingDuration(); got != frozen {
		t.Errorf("ThinkingDuration changed after close: %v -> %v", frozen, got)
	}
}

func TestScannerLongStream(t *testing.T) {
	sc := stream.NewScanner()
	sc.Push("<think>plan</think>")

	var want strings.Builder
	for i := 0; i < 1000; i++ {
		sc.Push("chunk ")
		want.WriteString("chunk ")
	}

	st := sc.State()
	if st.Content != strings.TrimSpace(want.String()) {
		t.Errorf("Content length = %d, want %d", len(st.Content), len(strings.TrimSpace(want.String())))
	}
}
