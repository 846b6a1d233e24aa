package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"newsgraph/graph"
)

func newTestAggregator(t *testing.T) (*Aggregator, *graph.Store) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store := graph.NewStore(logger)
	index := graph.NewQueryIndex(store, logger)
	return NewAggregator(store, index, time.Second, logger), store
}

func TestRetrieveRanksExactTitleFirst(t *testing.T) {
	agg, store := newTestAggregator(t)

	store.AddNode(&graph.Node{ID: "keyword-only", Title: "Battery markets heat up", Labels: &graph.Labels{
		Keywords: []string{"lithium"},
	}})
	store.AddNode(&graph.Node{ID: "exact", Title: "Lithium Supply Chain", Labels: &graph.Labels{
		Categories: []string{"Energy"},
		Topics:     []string{"Lithium Supply Chain", "Mining"},
		Keywords:   []string{"lithium", "logistics"},
	}})
	store.AddNode(&graph.Node{ID: "another", Title: "Grid storage trends", Labels: &graph.Labels{
		Keywords: []string{"lithium", "storage"},
	}})

	result, err := agg.Retrieve(context.Background(), "lithium supply chain", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Sources) == 0 {
		t.Fatal("Retrieve() returned no sources")
	}
	if result.Sources[0].ID != "exact" {
		t.Errorf("top source = %v, want exact", result.Sources[0].ID)
	}
	if result.Sources[0].Score <= result.Sources[len(result.Sources)-1].Score {
		t.Errorf("scores not descending: %+v", result.Sources)
	}
	if result.TotalArticlesSearched != 3 {
		t.Errorf("TotalArticlesSearched = %d, want 3", result.TotalArticlesSearched)
	}
}

func TestRetrieveScoring(t *testing.T) {
	tests := []struct {
		name     string
		node     *graph.Node
		query    string
		keywords []string
		want     int
	}{
		{
			name:     "exact_title_bonus",
			node:     &graph.Node{Title: "Lithium Supply Chain"},
			query:    "lithium supply chain",
			keywords: []string{"lithium", "supply", "chain"},
			// +10 title contains query, +5 per keyword in title
			want: 25,
		},
		{
			name: "field_weights",
			node: &graph.Node{Title: "Energy report", Labels: &graph.Labels{
				Topics:     []string{"Lithium Mining"},
				Categories: []string{"Lithium Industry"},
				Keywords:   []string{"lithium-ion"},
			}},
			query:    "lithium outlook",
			keywords: []string{"lithium", "outlook"},
			// lithium: +3 topic, +2 category, +1 keyword
			want: 6,
		},
		{
			name: "summary_bonus",
			node: &graph.Node{Title: "Weekly digest", Labels: &graph.Labels{
				Summary: "A look at the lithium outlook for next year.",
			}},
			query:    "lithium outlook",
			keywords: []string{"lithium", "outlook"},
			want:     4,
		},
		{
			name:     "no_match",
			node:     &graph.Node{Title: "Local sports roundup"},
			query:    "lithium outlook",
			keywords: []string{"lithium", "outlook"},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreArticle(tt.node, tt.query, tt.keywords)
			if got != tt.want {
				t.Errorf("scoreArticle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetrieveDropsZeroScores(t *testing.T) {
	agg, store := newTestAggregator(t)

	store.AddNode(&graph.Node{ID: "relevant", Title: "Lithium prices", Labels: &graph.Labels{
		Keywords: []string{"lithium"},
	}})
	store.AddNode(&graph.Node{ID: "irrelevant", Title: "Local sports roundup"})

	result, err := agg.Retrieve(context.Background(), "lithium prices", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	for _, src := range result.Sources {
		if src.ID == "irrelevant" {
			t.Error("zero-score article survived ranking")
		}
	}
}

func TestRetrieveTruncatesToMaxSources(t *testing.T) {
	agg, store := newTestAggregator(t)

	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		store.AddNode(&graph.Node{ID: id, Title: "Lithium " + id, Labels: &graph.Labels{
			Keywords: []string{"lithium"},
		}})
	}

	result, err := agg.Retrieve(context.Background(), "lithium", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Sources) != 2 {
		t.Errorf("Retrieve(maxSources=2) = %d sources, want 2", len(result.Sources))
	}
}

func TestRetrieveCapsContextKeywords(t *testing.T) {
	agg, store := newTestAggregator(t)

	store.AddNode(&graph.Node{ID: "a", Title: "Lithium deep dive", Labels: &graph.Labels{
		Keywords: []string{"lithium", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10"},
	}})

	result, err := agg.Retrieve(context.Background(), "lithium", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("Retrieve() = %d sources, want 1", len(result.Sources))
	}
	if got := len(result.Sources[0].Keywords); got != maxContextKeywords {
		t.Errorf("context keywords = %d, want %d", got, maxContextKeywords)
	}
}

func TestRetrieveToleratesStrategyFailure(t *testing.T) {
	agg, store := newTestAggregator(t)
	good := store.AddNode(&graph.Node{ID: "good", Title: "Lithium update", Labels: &graph.Labels{
		Keywords: []string{"lithium"},
	}})

	agg.strategies = []strategy{
		{name: "failing", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return nil, errors.New("index offline")
		}},
		{name: "working", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return []*graph.Node{good}, nil
		}},
	}

	result, err := agg.Retrieve(context.Background(), "lithium", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want success despite strategy failure", err)
	}
	if len(result.Sources) != 1 || result.Sources[0].ID != "good" {
		t.Errorf("Sources = %+v, want the working strategy's article", result.Sources)
	}
}

func TestRetrieveToleratesStrategyPanic(t *testing.T) {
	agg, store := newTestAggregator(t)
	good := store.AddNode(&graph.Node{ID: "good", Title: "Lithium update", Labels: &graph.Labels{
		Keywords: []string{"lithium"},
	}})

	agg.strategies = []strategy{
		{name: "panicking", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			panic("strategy blew up")
		}},
		{name: "working", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return []*graph.Node{good}, nil
		}},
	}

	result, err := agg.Retrieve(context.Background(), "lithium", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want success despite strategy panic", err)
	}
	if len(result.Sources) != 1 || result.Sources[0].ID != "good" {
		t.Errorf("Sources = %+v, want the working strategy's article", result.Sources)
	}
}

func TestRetrieveTotalFailureIsEmptySuccess(t *testing.T) {
	agg, store := newTestAggregator(t)
	store.AddNode(&graph.Node{ID: "a", Title: "Lithium update"})

	agg.strategies = []strategy{
		{name: "f1", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return nil, errors.New("offline")
		}},
		{name: "f2", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return nil, errors.New("offline")
		}},
	}

	result, err := agg.Retrieve(context.Background(), "lithium", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want empty success", err)
	}
	if len(result.Sources) != 0 {
		t.Errorf("Sources = %+v, want empty", result.Sources)
	}
	if result.TotalArticlesSearched != 1 {
		t.Errorf("TotalArticlesSearched = %d, want 1", result.TotalArticlesSearched)
	}
}

func TestRetrieveDeduplicatesInStrategyOrder(t *testing.T) {
	agg, store := newTestAggregator(t)

	// Two articles with identical second-pass scores so the merged order
	// decides the tie.
	first := store.AddNode(&graph.Node{ID: "first", Title: "Lithium briefing A", Labels: &graph.Labels{
		Keywords: []string{"lithium"},
	}})
	second := store.AddNode(&graph.Node{ID: "second", Title: "Lithium briefing B", Labels: &graph.Labels{
		Keywords: []string{"lithium"},
	}})

	agg.strategies = []strategy{
		{name: "s1", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return []*graph.Node{second, first}, nil
		}},
		{name: "s2", run: func(ctx context.Context, keywords []string, limit int) ([]*graph.Node, error) {
			return []*graph.Node{first, second}, nil
		}},
	}

	result, err := agg.Retrieve(context.Background(), "lithium", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("Sources = %d, want 2 after dedupe", len(result.Sources))
	}
	if result.Sources[0].ID != "second" || result.Sources[1].ID != "first" {
		t.Errorf("tie order = [%v %v], want first-seen order [second first]",
			result.Sources[0].ID, result.Sources[1].ID)
	}
}
