package rag

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "plain_terms",
			query: "lithium supply chain",
			want:  []string{"lithium", "supply", "chain"},
		},
		{
			name:  "lowercases_and_strips_punctuation",
			query: "What's driving Lithium prices?!",
			want:  []string{"whats", "driving", "lithium", "prices"},
		},
		{
			name:  "drops_short_tokens_and_stop_words",
			query: "what is the latest news about EV batteries",
			want:  []string{"batteries"},
		},
		{
			name:  "keeps_first_ten",
			query: "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima",
			want: []string{"alpha", "bravo", "charlie", "delta", "echo",
				"foxtrot", "golf", "hotel", "india", "juliet"},
		},
		{
			name:  "empty_query",
			query: "   ",
			want:  []string{},
		},
		{
			name:  "only_stop_words",
			query: "what about the most recent",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
