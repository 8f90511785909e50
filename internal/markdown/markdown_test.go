package markdown

import (
	"strings"
	"testing"
)

func TestConverter_Fragment(t *testing.T) {
	t.Parallel()

	c := New()

	tests := []struct {
		name        string
		source      string
		want        string
		contains    []string
		notContains []string
	}{
		{
			name:   "blank input",
			source: "  \n\t",
			want:   "",
		},
		{
			name:   "single paragraph",
			source: "For research use only.",
			want:   "<p>For research use only.</p>",
		},
		{
			name:     "emphasis",
			source:   "*Intended Use:* research only",
			contains: []string{"<em>Intended Use:</em>"},
		},
		{
			name:     "hard wraps",
			source:   "line one\nline two",
			contains: []string{"<br />"},
		},
		{
			name:        "raw HTML omitted",
			source:      "<script>alert(1)</script>\n\nsafe",
			contains:    []string{"<p>safe</p>"},
			notContains: []string{"<script>"},
		},
		{
			name:     "autolink",
			source:   "see https://example.com/qc",
			contains: []string{`href="https://example.com/qc"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.Fragment(tt.source)
			if err != nil {
				t.Fatalf("Fragment() error = %v", err)
			}
			if tt.want != "" || (len(tt.contains) == 0 && len(tt.notContains) == 0) {
				if got != tt.want {
					t.Errorf("Fragment() = %q, want %q", got, tt.want)
				}
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Fragment() = %q, should contain %q", got, s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(got, s) {
					t.Errorf("Fragment() = %q, should not contain %q", got, s)
				}
			}
		})
	}
}
