package rag

import (
	"regexp"
	"strings"
)

const maxQueryKeywords = 10

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// stopWords are query tokens that carry no retrieval signal. Tokens of
// length <= 2 are dropped before this set is consulted.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"was": {}, "were": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "shall": {},
	"what": {}, "when": {}, "where": {}, "who": {}, "whom": {}, "why": {},
	"how": {}, "which": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"with": {}, "from": {}, "into": {}, "about": {}, "against": {},
	"between": {}, "through": {}, "during": {}, "before": {}, "after": {},
	"above": {}, "below": {}, "under": {}, "over": {}, "again": {},
	"there": {}, "here": {}, "all": {}, "any": {}, "both": {}, "each": {},
	"few": {}, "more": {}, "most": {}, "other": {}, "some": {}, "such": {},
	"only": {}, "own": {}, "same": {}, "than": {}, "too": {}, "very": {},
	"just": {}, "also": {}, "tell": {}, "show": {}, "give": {}, "find": {},
	"news": {}, "article": {}, "articles": {}, "latest": {}, "recent": {},
}

// ExtractKeywords lowercases the query, strips non-word characters, splits on
// whitespace, drops short tokens and stop words, and keeps at most the first
// ten survivors in query order.
func ExtractKeywords(query string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(query), "")
	keywords := make([]string, 0, maxQueryKeywords)
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxQueryKeywords {
			break
		}
	}
	return keywords
}
