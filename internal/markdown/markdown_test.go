package markdown_test

import (
	"strings"
	"testing"

	"github.com/grailstone/think-web-ui/internal/markdown"
)

func TestRender(t *testing.T) {
	r := markdown.New()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "Paragraph",
			source: "Hello!",
			want:   []string{"<p>Hello!</p>"},
		},
		{
			name:   "Inline code",
			source: "run `go test` now",
			want:   []string{"<code>go test</code>"},
		},
		{
			name:   "Fenced code block",
			source: "```go\nfmt.Println(\"hi\")\n```",
			want:   []string{"<pre", "Println"},
		},
		{
			name:   "List",
			source: "- one\n- two",
			want:   []string{"<ul>", "<li>one</li>", "<li>two</li>"},
		},
		{
			name:   "Raw HTML is escaped",
			source: "<script>alert(1)</script>",
			want:   []string{"&lt;script&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.source)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) = %q, want it to contain %q", tt.source, got, want)
				}
			}
		})
	}
}
