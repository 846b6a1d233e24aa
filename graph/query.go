package graph

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// QueryIndex answers substring lookups over the store's taxonomy fields.
type QueryIndex struct {
	store  *Store
	logger *zap.Logger
}

// NewQueryIndex creates a QueryIndex over the given store.
func NewQueryIndex(store *Store, logger *zap.Logger) *QueryIndex {
	return &QueryIndex{store: store, logger: logger}
}

// TopicResult is one topic-query hit.
type TopicResult struct {
	ArticleID     string   `json:"articleId"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Relevance     int      `json:"relevance"`
	MatchedTopics []string `json:"matchedTopics"`
}

// KeywordResult is one keyword-query hit.
type KeywordResult struct {
	ArticleID       string   `json:"articleId"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	MatchCount      int      `json:"matchCount"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// QueryByTopic matches term as a case-insensitive substring of topics and
// categories. A topic match scores relevance 2, a category-only match scores
// 1; the two never accumulate. Results sort by relevance descending with ties
// in node table order, truncated to limit.
func (q *QueryIndex) QueryByTopic(term string, limit int) []TopicResult {
	needle := strings.ToLower(term)

	results := make([]TopicResult, 0)
	for _, node := range q.store.Nodes() {
		matched := matchSubstring(node.Topics(), needle)
		relevance := 2
		if len(matched) == 0 {
			matched = matchSubstring(node.Categories(), needle)
			relevance = 1
		}
		if len(matched) == 0 {
			continue
		}
		results = append(results, TopicResult{
			ArticleID:     node.ID,
			Title:         node.Title,
			URL:           node.URL,
			Relevance:     relevance,
			MatchedTopics: matched,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// QueryByKeyword matches term as a case-insensitive substring of keyword
// entries. Relevance is the number of matching entries; zero-match nodes are
// excluded. Results sort by match count descending, truncated to limit.
func (q *QueryIndex) QueryByKeyword(term string, limit int) []KeywordResult {
	needle := strings.ToLower(term)

	results := make([]KeywordResult, 0)
	for _, node := range q.store.Nodes() {
		matched := matchSubstring(node.Keywords(), needle)
		if len(matched) == 0 {
			continue
		}
		results = append(results, KeywordResult{
			ArticleID:       node.ID,
			Title:           node.Title,
			URL:             node.URL,
			MatchCount:      len(matched),
			MatchedKeywords: matched,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchCount > results[j].MatchCount
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// matchSubstring returns the entries containing needle, original casing.
func matchSubstring(values []string, needle string) []string {
	var matched []string
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			matched = append(matched, v)
		}
	}
	return matched
}
