package llmclient

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"newsgraph/prompts"
	"newsgraph/rag"
)

// buildMessages assembles the two-turn exchange: the fixed system
// instruction plus one user turn carrying the question and the numbered
// context block.
func buildMessages(query string, sources []rag.SourceContext) []llms.MessageContent {
	return []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(prompts.AnswerSystem())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt(query, sources))},
		},
	}
}

func userPrompt(query string, sources []rag.SourceContext) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nContext articles:\n\n")
	b.WriteString(FormatSources(sources))
	return b.String()
}

// FormatSources renders retrieved articles as a numbered plain-text block.
// Numbering follows source order so citations line up with the response's
// sources list.
func FormatSources(sources []rag.SourceContext) string {
	var b strings.Builder
	for i, src := range sources {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, src.Title)
		if src.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", src.URL)
		}
		if len(src.Categories) > 0 {
			fmt.Fprintf(&b, "Categories: %s\n", strings.Join(src.Categories, ", "))
		}
		if len(src.Topics) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(src.Topics, ", "))
		}
		if len(src.Keywords) > 0 {
			fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(src.Keywords, ", "))
		}
		if src.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", src.Summary)
		}
	}
	return b.String()
}
