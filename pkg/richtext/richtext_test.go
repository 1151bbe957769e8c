package richtext

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScripts(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:    "script removed",
			input:   `<p>Hello</p><script>alert(1)</script>`,
			want:    []string{"<p>Hello</p>"},
			notWant: []string{"script", "alert"},
		},
		{
			name:    "event handler removed",
			input:   `<img src="https://cdn.example.com/a.png" onerror="alert(1)" alt="stand">`,
			want:    []string{`src="https://cdn.example.com/a.png"`, `alt="stand"`},
			notWant: []string{"onerror"},
		},
		{
			name:    "javascript link removed",
			input:   `<a href="javascript:alert(1)">x</a>`,
			notWant: []string{"javascript:"},
		},
		{
			name:  "tables kept",
			input: `<table><tr><td>Booth</td></tr></table>`,
			want:  []string{"<table>", "<td>Booth</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Sanitize() = %q, missing %q", got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Sanitize() = %q, should not contain %q", got, nw)
				}
			}
		})
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := NewSanitizer().Sanitize("   "); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestFromMarkdown(t *testing.T) {
	got, err := NewSanitizer().FromMarkdown("# Trade shows\n\nSee **Hannover**.\n\n<script>x()</script>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<strong>Hannover</strong>") {
		t.Errorf("missing bold: %q", got)
	}
	if !strings.Contains(got, `<h1 id="trade-shows">`) {
		t.Errorf("missing heading id: %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("script survived: %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	s := NewSanitizer()
	if got := s.Excerpt("<p>Design   and build</p>", 0); got != "Design and build" {
		t.Errorf("got %q", got)
	}
	if got := s.Excerpt("<p>Exhibition stands</p>", 10); got != "Exhibition…" {
		t.Errorf("got %q", got)
	}
}
