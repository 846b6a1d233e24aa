package ingest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

type stubLabeller struct {
	labels *graph.Labels
	err    error
	calls  int
}

func (s *stubLabeller) Label(ctx context.Context, article ArticleInput) (*graph.Labels, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.labels, nil
}

func newTestService(t *testing.T, labeller Labeller) (*Service, *graph.Store) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store := graph.NewStore(logger)
	similarity := graph.NewSimilarityEngine(store, graph.SimilarityConfig{}, logger)
	return NewService(store, similarity, labeller, 3, 5, logger), store
}

func TestIngestAssignsIDAndStoresNode(t *testing.T) {
	svc, store := newTestService(t, nil)

	result, err := svc.Ingest(context.Background(), ArticleInput{
		Title: "Lithium outlook",
		URL:   "https://example.com/lithium",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.Node.ID == "" {
		t.Error("Ingest() left node id empty")
	}
	if _, ok := store.Node(result.Node.ID); !ok {
		t.Error("ingested node not in store")
	}
}

func TestIngestRejectsInvalidInput(t *testing.T) {
	svc, store := newTestService(t, nil)

	tests := []struct {
		name  string
		input ArticleInput
	}{
		{"missing_title", ArticleInput{URL: "https://example.com"}},
		{"malformed_url", ArticleInput{Title: "Valid title", URL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), tt.input)
			if !apperrors.IsInvalidInput(err) {
				t.Errorf("Ingest() error = %v, want InvalidInput", err)
			}
		})
	}
	if store.NodeCount() != 0 {
		t.Errorf("NodeCount = %d after rejected inputs, want 0", store.NodeCount())
	}
}

func TestIngestLinksHighSimilarityArticles(t *testing.T) {
	svc, store := newTestService(t, nil)

	_, err := svc.Ingest(context.Background(), ArticleInput{
		ID:    "a",
		Title: "Lithium mining expands",
		Labels: &graph.Labels{
			Categories: []string{"Energy"},
			Topics:     []string{"Lithium"},
		},
	})
	if err != nil {
		t.Fatalf("Ingest(a) error = %v", err)
	}

	// Shared category (3) + shared topic (2) = 5 > threshold 3.
	result, err := svc.Ingest(context.Background(), ArticleInput{
		ID:    "b",
		Title: "Lithium demand rises",
		Labels: &graph.Labels{
			Categories: []string{"energy"},
			Topics:     []string{"lithium"},
		},
	})
	if err != nil {
		t.Fatalf("Ingest(b) error = %v", err)
	}

	if result.RelationshipsWritten != 1 {
		t.Errorf("RelationshipsWritten = %d, want 1", result.RelationshipsWritten)
	}
	if !store.HasEdge("b", graph.EdgeTypeRelatesTo, "a") {
		t.Error("expected RELATES_TO edge from b to a")
	}
	edges := store.NeighborEdges("b", graph.EdgeTypeRelatesTo)
	if len(edges) != 1 {
		t.Fatalf("NeighborEdges(b) = %d, want 1", len(edges))
	}
	if got := edges[0].Metadata["strength"]; got != 5 {
		t.Errorf("edge strength = %v, want 5", got)
	}
}

func TestIngestSkipsEdgeAtThreshold(t *testing.T) {
	svc, store := newTestService(t, nil)

	// One case-insensitive topic overlap scores 2, below the threshold of 3,
	// so similarity is positive but no edge is written.
	if _, err := svc.Ingest(context.Background(), ArticleInput{
		ID:     "a",
		Title:  "Supply chain pressures",
		Labels: &graph.Labels{Topics: []string{"Lithium", "Supply Chain"}},
	}); err != nil {
		t.Fatalf("Ingest(a) error = %v", err)
	}

	result, err := svc.Ingest(context.Background(), ArticleInput{
		ID:     "b",
		Title:  "Mining roundup",
		Labels: &graph.Labels{Topics: []string{"lithium", "Mining"}},
	})
	if err != nil {
		t.Fatalf("Ingest(b) error = %v", err)
	}

	if len(result.Related) != 1 || result.Related[0].Similarity != 2 {
		t.Fatalf("Related = %+v, want one match with similarity 2", result.Related)
	}
	if result.RelationshipsWritten != 0 {
		t.Errorf("RelationshipsWritten = %d, want 0", result.RelationshipsWritten)
	}
	if store.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", store.EdgeCount())
	}
}

func TestIngestLabelsOnlyWhenAbsent(t *testing.T) {
	labeller := &stubLabeller{labels: &graph.Labels{Topics: []string{"Lithium"}}}
	svc, store := newTestService(t, labeller)

	// Present-but-empty labels are left alone.
	if _, err := svc.Ingest(context.Background(), ArticleInput{
		ID:     "labelled",
		Title:  "Already labelled",
		Labels: &graph.Labels{},
	}); err != nil {
		t.Fatalf("Ingest(labelled) error = %v", err)
	}
	if labeller.calls != 0 {
		t.Errorf("labeller called %d times for present labels, want 0", labeller.calls)
	}

	result, err := svc.Ingest(context.Background(), ArticleInput{
		ID:    "unlabelled",
		Title: "Needs labels",
	})
	if err != nil {
		t.Fatalf("Ingest(unlabelled) error = %v", err)
	}
	if labeller.calls != 1 {
		t.Errorf("labeller called %d times for absent labels, want 1", labeller.calls)
	}
	if !result.Labelled {
		t.Error("Result.Labelled = false, want true")
	}
	node, _ := store.Node("unlabelled")
	if node.Labels == nil || len(node.Labels.Topics) != 1 {
		t.Errorf("stored labels = %+v, want labeller output", node.Labels)
	}
}

func TestIngestToleratesLabellerFailure(t *testing.T) {
	labeller := &stubLabeller{err: errors.New("model unavailable")}
	svc, store := newTestService(t, labeller)

	result, err := svc.Ingest(context.Background(), ArticleInput{
		ID:    "a",
		Title: "Needs labels",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v, want success without labels", err)
	}
	if result.Labelled {
		t.Error("Result.Labelled = true after labeller failure")
	}
	node, _ := store.Node("a")
	if node.Labels != nil {
		t.Errorf("stored labels = %+v, want nil", node.Labels)
	}
}

func TestIngestBatchSkipsInvalidArticles(t *testing.T) {
	svc, store := newTestService(t, nil)

	results := svc.IngestBatch(context.Background(), []ArticleInput{
		{ID: "ok-1", Title: "First"},
		{URL: "https://example.com/missing-title"},
		{ID: "ok-2", Title: "Second"},
	})

	if len(results) != 2 {
		t.Errorf("IngestBatch() = %d results, want 2", len(results))
	}
	if store.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", store.NodeCount())
	}
}

func TestIngestReingestPreservesEdges(t *testing.T) {
	svc, store := newTestService(t, nil)

	labels := &graph.Labels{Categories: []string{"Energy"}, Topics: []string{"Lithium"}}
	if _, err := svc.Ingest(context.Background(), ArticleInput{ID: "a", Title: "A", Labels: labels}); err != nil {
		t.Fatalf("Ingest(a) error = %v", err)
	}
	if _, err := svc.Ingest(context.Background(), ArticleInput{ID: "b", Title: "B", Labels: labels}); err != nil {
		t.Fatalf("Ingest(b) error = %v", err)
	}
	if store.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", store.EdgeCount())
	}

	// Re-sync of b rewrites the same edge, not a duplicate.
	result, err := svc.Ingest(context.Background(), ArticleInput{ID: "b", Title: "B updated", Labels: labels})
	if err != nil {
		t.Fatalf("re-Ingest(b) error = %v", err)
	}
	if result.RelationshipsWritten != 1 {
		t.Errorf("RelationshipsWritten on resync = %d, want 1", result.RelationshipsWritten)
	}
	if store.EdgeCount() != 1 {
		t.Errorf("EdgeCount after resync = %d, want 1", store.EdgeCount())
	}
	node, _ := store.Node("b")
	if node.Title != "B updated" {
		t.Errorf("Title = %v, want B updated", node.Title)
	}
}
