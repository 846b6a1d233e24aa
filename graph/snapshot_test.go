package graph

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	apperrors "newsgraph/errors"
)

func buildSnapshotFixture(t *testing.T) *Store {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	store.AddNode(&Node{ID: "a", Title: "Lithium outlook", URL: "https://example.com/a", Labels: &Labels{
		Categories: []string{"Energy"},
		Topics:     []string{"Lithium"},
		Keywords:   []string{"mining"},
		Sentiment:  "neutral",
	}})
	store.AddNode(&Node{ID: "b", Title: "Battery markets", URL: "https://example.com/b", Labels: &Labels{
		Categories: []string{"Energy"},
	}})
	store.AddNode(&Node{ID: "c", Title: "Unlinked", URL: "https://example.com/c"})
	if _, err := store.AddEdge("a", "b", EdgeTypeRelatesTo, map[string]interface{}{"strength": 4}); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := buildSnapshotFixture(t)

	data, err := json.Marshal(store.Snapshot())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	logger, _ := zap.NewDevelopment()
	restored := NewStore(logger)
	if err := restored.Restore(&decoded); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if restored.NodeCount() != store.NodeCount() {
		t.Errorf("NodeCount = %d, want %d", restored.NodeCount(), store.NodeCount())
	}
	if restored.EdgeCount() != store.EdgeCount() {
		t.Errorf("EdgeCount = %d, want %d", restored.EdgeCount(), store.EdgeCount())
	}

	wantNodes := store.Nodes()
	gotNodes := restored.Nodes()
	for i := range wantNodes {
		if gotNodes[i].ID != wantNodes[i].ID {
			t.Errorf("node order[%d] = %v, want %v", i, gotNodes[i].ID, wantNodes[i].ID)
		}
	}

	node, ok := restored.Node("a")
	if !ok {
		t.Fatal("restored store missing node a")
	}
	if node.Title != "Lithium outlook" || node.Labels == nil || node.Labels.Sentiment != "neutral" {
		t.Errorf("restored node a = %+v, want original attributes", node)
	}

	for _, id := range []string{"a", "b"} {
		edges := restored.NeighborEdges(id, "")
		if len(edges) != 1 {
			t.Fatalf("NeighborEdges(%s) = %d edges, want 1", id, len(edges))
		}
		if edges[0].Type != EdgeTypeRelatesTo {
			t.Errorf("edge type = %v, want RELATES_TO", edges[0].Type)
		}
		if got, want := edges[0].Metadata["strength"], float64(4); got != want {
			t.Errorf("edge metadata strength = %v (%T), want %v", got, got, want)
		}
	}
	if got := len(restored.NeighborEdges("c", "")); got != 0 {
		t.Errorf("NeighborEdges(c) = %d edges, want 0", got)
	}
}

func TestSnapshotShape(t *testing.T) {
	store := buildSnapshotFixture(t)

	data, err := json.Marshal(store.Snapshot())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	var version string
	if err := json.Unmarshal(raw["version"], &version); err != nil || version != SnapshotVersion {
		t.Errorf("version = %v (err %v), want %v", version, err, SnapshotVersion)
	}

	var nodes [][]json.RawMessage
	if err := json.Unmarshal(raw["nodes"], &nodes); err != nil {
		t.Fatalf("nodes are not pair arrays: %v", err)
	}
	if len(nodes) != 3 || len(nodes[0]) != 2 {
		t.Errorf("nodes = %d entries of width %d, want 3 pairs", len(nodes), len(nodes[0]))
	}
	var firstID string
	if err := json.Unmarshal(nodes[0][0], &firstID); err != nil || firstID != "a" {
		t.Errorf("first node pair id = %v (err %v), want a", firstID, err)
	}

	var stats SnapshotStats
	if err := json.Unmarshal(raw["stats"], &stats); err != nil {
		t.Fatalf("stats decode error = %v", err)
	}
	if stats.NodeCount != 3 || stats.EdgeCount != 1 {
		t.Errorf("stats = %+v, want nodeCount 3 edgeCount 1", stats)
	}
}

func TestRestoreRejectsDanglingAdjacency(t *testing.T) {
	store := buildSnapshotFixture(t)
	snap := store.Snapshot()
	snap.NodeEdges[2].EdgeIDs = append(snap.NodeEdges[2].EdgeIDs, "no-such-edge")

	logger, _ := zap.NewDevelopment()
	fresh := NewStore(logger)
	fresh.AddNode(&Node{ID: "keep", Title: "Keep"})

	err := fresh.Restore(snap)
	if !apperrors.IsParseFailure(err) {
		t.Errorf("Restore() error = %v, want ParseFailure", err)
	}
	// Failed restore leaves existing contents untouched.
	if _, ok := fresh.Node("keep"); !ok {
		t.Error("failed Restore() dropped existing contents")
	}
}

func TestRestoreRejectsUnregisteredEdge(t *testing.T) {
	store := buildSnapshotFixture(t)
	snap := store.Snapshot()
	// Drop edge registration from one endpoint.
	snap.NodeEdges[1].EdgeIDs = nil

	logger, _ := zap.NewDevelopment()
	fresh := NewStore(logger)
	if err := fresh.Restore(snap); !apperrors.IsParseFailure(err) {
		t.Errorf("Restore() error = %v, want ParseFailure", err)
	}
}

func TestRestoreRejectsEdgeWithMissingNode(t *testing.T) {
	store := buildSnapshotFixture(t)
	snap := store.Snapshot()
	snap.Nodes = snap.Nodes[1:] // drop node a, leaving its edge dangling

	logger, _ := zap.NewDevelopment()
	fresh := NewStore(logger)
	if err := fresh.Restore(snap); !apperrors.IsParseFailure(err) {
		t.Errorf("Restore() error = %v, want ParseFailure", err)
	}
}
