package rag

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

const maxContextKeywords = 8

// SourceContext is one ranked article prepared for the generation
// collaborator.
type SourceContext struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
	Topics     []string `json:"topics"`
	Keywords   []string `json:"keywords"`
	Summary    string   `json:"summary"`
	Score      int      `json:"score"`
}

// Result is the outcome of one retrieval run.
type Result struct {
	Sources               []SourceContext `json:"sources"`
	TotalArticlesSearched int             `json:"totalArticlesSearched"`
}

// strategy is one independent way of locating candidate articles. Strategies
// run concurrently and fail independently; a failed strategy contributes
// nothing to the merge.
type strategy struct {
	name string
	run  func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error)
}

// Aggregator runs the retrieval pipeline: extract query keywords, fan out the
// retrieval strategies, deduplicate, re-score against the query, truncate,
// and assemble the generation context.
type Aggregator struct {
	store      *graph.Store
	index      *graph.QueryIndex
	strategies []strategy
	timeout    time.Duration
	logger     *zap.Logger
}

// NewAggregator creates an Aggregator with the standard topic, keyword, and
// recency strategies. timeout bounds each strategy call.
func NewAggregator(store *graph.Store, index *graph.QueryIndex, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	a := &Aggregator{
		store:   store,
		index:   index,
		timeout: timeout,
		logger:  logger,
	}
	a.strategies = []strategy{
		{name: "topic", run: a.topicStrategy},
		{name: "keyword", run: a.keywordStrategy},
		{name: "recent", run: a.recentStrategy},
	}
	return a
}

// Retrieve runs the full pipeline for one query. Strategy failures are logged
// and dropped; even total strategy failure yields an empty successful result.
func (a *Aggregator) Retrieve(ctx context.Context, query string, maxSources int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxSources <= 0 {
		maxSources = 5
	}

	query = strings.ToLower(strings.TrimSpace(query))
	keywords := ExtractKeywords(query)
	totalSearched := a.store.NodeCount()

	gathered := make([][]*graph.Node, len(a.strategies))
	var wg conc.WaitGroup
	for i, st := range a.strategies {
		wg.Go(func() {
			strategyCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			nodes, err := st.run(strategyCtx, keywords, maxSources)
			if err != nil {
				a.logger.Warn("Retrieval strategy failed",
					zap.String("strategy", st.name),
					zap.Error(err))
				return
			}
			gathered[i] = nodes
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		a.logger.Warn("Retrieval strategy panicked",
			zap.String("panic", recovered.String()))
	}

	// Merge in strategy order, first occurrence per article wins.
	seen := make(map[string]bool)
	candidates := make([]*graph.Node, 0)
	for _, nodes := range gathered {
		for _, node := range nodes {
			if seen[node.ID] {
				continue
			}
			seen[node.ID] = true
			candidates = append(candidates, node)
		}
	}

	type scored struct {
		node  *graph.Node
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, node := range candidates {
		score := scoreArticle(node, query, keywords)
		if score == 0 {
			continue
		}
		ranked = append(ranked, scored{node: node, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > maxSources {
		ranked = ranked[:maxSources]
	}

	sources := make([]SourceContext, 0, len(ranked))
	for _, entry := range ranked {
		nodeKeywords := entry.node.Keywords()
		if len(nodeKeywords) > maxContextKeywords {
			nodeKeywords = nodeKeywords[:maxContextKeywords]
		}
		sources = append(sources, SourceContext{
			ID:         entry.node.ID,
			Title:      entry.node.Title,
			URL:        entry.node.URL,
			Categories: entry.node.Categories(),
			Topics:     entry.node.Topics(),
			Keywords:   nodeKeywords,
			Summary:    entry.node.Summary(),
			Score:      entry.score,
		})
	}

	a.logger.Debug("Retrieval complete",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("sources", len(sources)),
		zap.Int("searched", totalSearched))

	return &Result{Sources: sources, TotalArticlesSearched: totalSearched}, nil
}

func (a *Aggregator) topicStrategy(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUpstreamFetch, "topic strategy cancelled")
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	results := a.index.QueryByTopic(strings.Join(keywords, " "), limit)
	return a.resolveNodes(resultIDs(results)), nil
}

func (a *Aggregator) keywordStrategy(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUpstreamFetch, "keyword strategy cancelled")
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	results := a.index.QueryByKeyword(strings.Join(keywords, " "), limit)
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ArticleID)
	}
	return a.resolveNodes(ids), nil
}

func (a *Aggregator) recentStrategy(ctx context.Context, _ []string, limit int) ([]*graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUpstreamFetch, "recency strategy cancelled")
	}
	return a.store.RecentNodes(limit), nil
}

func (a *Aggregator) resolveNodes(ids []string) []*graph.Node {
	nodes := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		node, ok := a.store.Node(id)
		if !ok {
			a.logger.Warn("Query result references missing node", zap.String("id", id))
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func resultIDs(results []graph.TopicResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ArticleID)
	}
	return ids
}

// scoreArticle computes the second-pass relevance score of one candidate.
// query and keywords must already be lowercased.
func scoreArticle(node *graph.Node, query string, keywords []string) int {
	score := 0
	title := strings.ToLower(node.Title)
	if query != "" && strings.Contains(title, query) {
		score += 10
	}
	for _, keyword := range keywords {
		if strings.Contains(title, keyword) {
			score += 5
		}
		if containsFold(node.Topics(), keyword) {
			score += 3
		}
		if containsFold(node.Categories(), keyword) {
			score += 2
		}
		if containsFold(node.Keywords(), keyword) {
			score += 1
		}
	}
	if query != "" {
		if summary := strings.ToLower(node.Summary()); summary != "" && strings.Contains(summary, query) {
			score += 4
		}
	}
	return score
}

func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
