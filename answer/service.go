package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
	"newsgraph/prompts"
	"newsgraph/rag"
)

const (
	defaultCacheSize  = 256
	defaultMaxSources = 5
)

// Generator produces the final answer text from retrieved sources.
type Generator interface {
	GenerateAnswer(ctx context.Context, query string, sources []rag.SourceContext) (string, error)
}

// Source is one cited article in a response.
type Source struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Categories     []string `json:"categories"`
	Topics         []string `json:"topics"`
	Summary        string   `json:"summary"`
	RelevanceScore int      `json:"relevanceScore"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	TotalArticlesSearched int       `json:"totalArticlesSearched"`
	SourcesUsed           int       `json:"sourcesUsed"`
	Timestamp             time.Time `json:"timestamp"`
}

// Response is a complete answer to one question.
type Response struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Metadata Metadata `json:"metadata"`
}

// Service answers questions over the graph. Each answer is retrieved,
// generated, and cached; the cache key includes the graph generation so any
// mutation invalidates every cached answer.
type Service struct {
	store      *graph.Store
	aggregator *rag.Aggregator
	generator  Generator
	cache      *lru.Cache
	group      singleflight.Group
	maxSources int
	logger     *zap.Logger
}

func NewService(store *graph.Store, aggregator *rag.Aggregator, generator Generator, cacheSize, maxSources int, logger *zap.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}
	// lru.New only fails on a non-positive size, which is guarded above.
	cache, _ := lru.New(cacheSize)
	return &Service{
		store:      store,
		aggregator: aggregator,
		generator:  generator,
		cache:      cache,
		maxSources: maxSources,
		logger:     logger,
	}
}

// Ask answers one question, drawing on up to maxSources articles
// (non-positive means the configured default). Concurrent identical questions
// share a single retrieval and generation pass.
func (s *Service) Ask(ctx context.Context, query string, maxSources int) (*Response, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "query must not be empty")
	}
	if maxSources <= 0 {
		maxSources = s.maxSources
	}

	key := s.cacheKey(trimmed, maxSources)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("Answer cache hit", zap.String("query", trimmed))
		return cached.(*Response), nil
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// Double-check the cache inside the flight.
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		return s.answer(ctx, trimmed, maxSources, key)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := v.(*Response)
	if !ok {
		return nil, fmt.Errorf("unexpected type from answer group: %T", v)
	}
	if shared {
		s.logger.Debug("Answer shared with concurrent caller", zap.String("query", trimmed))
	}
	return resp, nil
}

func (s *Service) answer(ctx context.Context, query string, maxSources int, key string) (*Response, error) {
	result, err := s.aggregator.Retrieve(ctx, query, maxSources)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		TotalArticlesSearched: result.TotalArticlesSearched,
		SourcesUsed:           len(result.Sources),
		Timestamp:             time.Now().UTC(),
	}

	// No relevant articles: answer with the fixed fallback and skip the
	// model call entirely.
	if len(result.Sources) == 0 {
		resp := &Response{
			Answer:   strings.TrimSpace(prompts.NoSources()),
			Sources:  []Source{},
			Metadata: meta,
		}
		s.cache.Add(key, resp)
		return resp, nil
	}

	text, err := s.generator.GenerateAnswer(ctx, query, result.Sources)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, Source{
			ID:             src.ID,
			Title:          src.Title,
			URL:            src.URL,
			Categories:     src.Categories,
			Topics:         src.Topics,
			Summary:        src.Summary,
			RelevanceScore: src.Score,
		})
	}

	resp := &Response{Answer: text, Sources: sources, Metadata: meta}
	s.cache.Add(key, resp)

	s.logger.Info("Answered question",
		zap.String("query", query),
		zap.Int("sources", len(sources)),
		zap.Int("searched", meta.TotalArticlesSearched))

	return resp, nil
}

// cacheKey folds in the graph generation and source limit so cached answers
// age out after any mutation and never leak across limit changes.
func (s *Service) cacheKey(query string, maxSources int) string {
	return fmt.Sprintf("%d|%d|%s", s.store.Generation(), maxSources, strings.ToLower(query))
}
