package ingest

import (
	"strings"
	"testing"
)

func TestMarkdownToText(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		want     string
		excluded string
	}{
		{
			name:   "plain_text",
			source: "Just a sentence.",
			want:   "Just a sentence.",
		},
		{
			name:   "strips_heading_markers",
			source: "# Lithium outlook\n\nPrices keep rising.",
			want:   "Lithium outlook Prices keep rising.",
		},
		{
			name:   "keeps_link_text",
			source: "Read the [full report](https://example.com/report) today.",
			want:   "Read the full report today.",
		},
		{
			name:     "skips_fenced_code",
			source:   "Intro text.\n\n```\nselect * from articles;\n```\n\nOutro text.",
			want:     "Intro text. Outro text.",
			excluded: "select",
		},
		{
			name:   "keeps_inline_code",
			source: "Set `threshold` before running.",
			want:   "Set threshold before running.",
		},
		{
			name:   "empty_input",
			source: "   \n",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToText(tt.source)
			if got != tt.want {
				t.Errorf("MarkdownToText() = %q, want %q", got, tt.want)
			}
			if tt.excluded != "" && strings.Contains(got, tt.excluded) {
				t.Errorf("MarkdownToText() kept excluded content %q", tt.excluded)
			}
		})
	}
}
