package handlers

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/grailstone/think-web-ui/internal/models"
	"github.com/grailstone/think-web-ui/internal/stream"
)

type chat struct {
	ID    string
	Title string

	Active bool
}

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time

	StreamingState string
}

// assistantContent is the data for the ai_content partial: a collapsible thinking panel shown
// only when Thinking is non-empty, followed by the markdown-rendered answer when non-empty.
type assistantContent struct {
	Thinking   string
	IsThinking bool
	Answer     template.HTML

	// ThoughtFor is a human-readable elapsed-thinking duration, set once the thinking phase
	// has closed and the duration is known.
	ThoughtFor string
}

// renderState renders a parsed assistant message state to HTML. The thinking text is inserted as
// plain text (the template escapes it); only the answer goes through the markdown renderer.
func (m Main) renderState(st stream.State, thoughtFor time.Duration) (template.HTML, error) {
	data := assistantContent{
		Thinking:   st.Thinking,
		IsThinking: st.IsThinking,
	}

	if st.Content != "" {
		rendered, err := m.markdown.Render(st.Content)
		if err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		data.Answer = template.HTML(rendered)
	}

	if !st.IsThinking && st.Thinking != "" && thoughtFor > 0 {
		data.ThoughtFor = formatThoughtFor(thoughtFor)
	}

	var sb strings.Builder
	if err := m.templates.ExecuteTemplate(&sb, "ai_content", data); err != nil {
		return "", fmt.Errorf("failed to execute ai_content template: %w", err)
	}
	return template.HTML(sb.String()), nil
}

// renderMessage prepares a stored message for the transcript page. User messages are plain
// escaped text with no markdown processing or thinking-panel logic; assistant messages are
// re-split from their raw stored content.
func (m Main) renderMessage(msg models.Message, streamingState string) (message, error) {
	out := message{
		ID:             msg.ID,
		Role:           string(msg.Role),
		Timestamp:      msg.Timestamp,
		StreamingState: streamingState,
	}

	if msg.Role != models.RoleAssistant {
		out.Content = template.HTML(template.HTMLEscapeString(msg.Content))
		return out, nil
	}

	content, err := m.renderState(stream.Split(msg.Content), 0)
	if err != nil {
		return message{}, err
	}
	out.Content = content
	return out, nil
}

func formatThoughtFor(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		d = time.Second
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
