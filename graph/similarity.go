package graph

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "newsgraph/errors"
)

// SimilarityConfig weights each taxonomy field's contribution to the score.
type SimilarityConfig struct {
	CategoryWeight int
	TopicWeight    int
	KeywordWeight  int
	EntityWeight   int
}

// DefaultSimilarityConfig returns the standard field weights.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		CategoryWeight: 3,
		TopicWeight:    2,
		KeywordWeight:  1,
		EntityWeight:   2,
	}
}

// SimilarityEngine scores taxonomy overlap between article nodes. It only
// scores; whether a score is high enough to materialize an edge is the
// ingestion caller's policy.
type SimilarityEngine struct {
	store  *Store
	config SimilarityConfig
	logger *zap.Logger
}

// NewSimilarityEngine creates a SimilarityEngine over the given store.
// Zero-valued config fields fall back to the defaults.
func NewSimilarityEngine(store *Store, config SimilarityConfig, logger *zap.Logger) *SimilarityEngine {
	defaults := DefaultSimilarityConfig()
	if config.CategoryWeight == 0 {
		config.CategoryWeight = defaults.CategoryWeight
	}
	if config.TopicWeight == 0 {
		config.TopicWeight = defaults.TopicWeight
	}
	if config.KeywordWeight == 0 {
		config.KeywordWeight = defaults.KeywordWeight
	}
	if config.EntityWeight == 0 {
		config.EntityWeight = defaults.EntityWeight
	}
	return &SimilarityEngine{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Match is one similar-article result.
type Match struct {
	ArticleID      string   `json:"articleId"`
	Title          string   `json:"title"`
	Similarity     int      `json:"similarity"`
	SharedTopics   []string `json:"sharedTopics"`
	SharedKeywords []string `json:"sharedKeywords"`
}

// Score computes the weighted case-insensitive overlap between two nodes'
// taxonomy fields. Intersection is commutative, so the score is symmetric.
func (e *SimilarityEngine) Score(a, b *Node) int {
	score := e.config.CategoryWeight * len(intersectFold(a.Categories(), b.Categories()))
	score += e.config.TopicWeight * len(intersectFold(a.Topics(), b.Topics()))
	score += e.config.KeywordWeight * len(intersectFold(a.Keywords(), b.Keywords()))
	score += e.config.EntityWeight * len(intersectFold(a.People(), b.People()))
	score += e.config.EntityWeight * len(intersectFold(a.Organizations(), b.Organizations()))
	return score
}

// Similarity scores a against b and reports the shared topics and keywords.
// Shared-term lists preserve the casing of b's values.
func (e *SimilarityEngine) Similarity(a, b *Node) Match {
	return Match{
		ArticleID:      b.ID,
		Title:          b.Title,
		Similarity:     e.Score(a, b),
		SharedTopics:   intersectFold(a.Topics(), b.Topics()),
		SharedKeywords: intersectFold(a.Keywords(), b.Keywords()),
	}
}

// FindSimilar scores nodeID against every other node, drops zero scores,
// sorts descending (ties keep node table order), and truncates to limit.
func (e *SimilarityEngine) FindSimilar(nodeID string, limit int) ([]Match, error) {
	source, ok := e.store.Node(nodeID)
	if !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrNodeNotFound, "similarity source %q", nodeID)
	}

	matches := make([]Match, 0)
	for _, candidate := range e.store.Nodes() {
		if candidate.ID == nodeID {
			continue
		}
		match := e.Similarity(source, candidate)
		if match.Similarity == 0 {
			continue
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// intersectFold returns the case-insensitive intersection of two value lists,
// deduplicated by folded form, preserving the second list's casing and order.
func intersectFold(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	folded := make(map[string]struct{}, len(a))
	for _, v := range a {
		folded[strings.ToLower(v)] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		key := strings.ToLower(v)
		if _, ok := folded[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, v)
	}
	return shared
}
