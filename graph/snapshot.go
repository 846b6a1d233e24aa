package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "newsgraph/errors"
)

// SnapshotVersion identifies the on-disk snapshot format.
const SnapshotVersion = "1.0"

// Snapshot is the serializable form of the whole graph. Nodes, edges, and
// adjacency lists are stored as [id, value] pairs so the on-disk document
// keeps insertion order and restores into the same iteration order.
type Snapshot struct {
	Version   string           `json:"version"`
	SavedAt   time.Time        `json:"savedAt"`
	Nodes     []NodeEntry      `json:"nodes"`
	Edges     []EdgeEntry      `json:"edges"`
	NodeEdges []AdjacencyEntry `json:"nodeEdges"`
	Stats     SnapshotStats    `json:"stats"`
}

// SnapshotStats records the counts at save time.
type SnapshotStats struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// NodeEntry is one [id, node] pair.
type NodeEntry struct {
	ID   string
	Node *Node
}

// EdgeEntry is one [id, edge] pair.
type EdgeEntry struct {
	ID   string
	Edge *Edge
}

// AdjacencyEntry is one [id, [edgeId, ...]] pair.
type AdjacencyEntry struct {
	ID      string
	EdgeIDs []string
}

func (e NodeEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.ID, e.Node})
}

func (e *NodeEntry) UnmarshalJSON(data []byte) error {
	return unmarshalPair(data, &e.ID, &e.Node)
}

func (e EdgeEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.ID, e.Edge})
}

func (e *EdgeEntry) UnmarshalJSON(data []byte) error {
	return unmarshalPair(data, &e.ID, &e.Edge)
}

func (e AdjacencyEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.ID, e.EdgeIDs})
}

func (e *AdjacencyEntry) UnmarshalJSON(data []byte) error {
	return unmarshalPair(data, &e.ID, &e.EdgeIDs)
}

func unmarshalPair(data []byte, id *string, value interface{}) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [id, value] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], id); err != nil {
		return fmt.Errorf("failed to decode pair id: %w", err)
	}
	if err := json.Unmarshal(raw[1], value); err != nil {
		return fmt.Errorf("failed to decode pair value: %w", err)
	}
	return nil
}

// Snapshot captures the full graph in insertion order.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Version:   SnapshotVersion,
		SavedAt:   time.Now(),
		Nodes:     make([]NodeEntry, 0, len(s.nodeOrder)),
		Edges:     make([]EdgeEntry, 0, len(s.edgeOrder)),
		NodeEdges: make([]AdjacencyEntry, 0, len(s.nodeOrder)),
		Stats: SnapshotStats{
			NodeCount: len(s.nodes),
			EdgeCount: len(s.edges),
		},
	}

	for _, id := range s.nodeOrder {
		snap.Nodes = append(snap.Nodes, NodeEntry{ID: id, Node: s.nodes[id]})
	}
	for _, id := range s.edgeOrder {
		snap.Edges = append(snap.Edges, EdgeEntry{ID: id, Edge: s.edges[id]})
	}
	for _, id := range s.nodeOrder {
		edgeIDs := make([]string, len(s.nodeEdges[id]))
		copy(edgeIDs, s.nodeEdges[id])
		snap.NodeEdges = append(snap.NodeEdges, AdjacencyEntry{ID: id, EdgeIDs: edgeIDs})
	}

	return snap
}

// Restore replaces the store contents with the snapshot's. The snapshot is
// validated first: every adjacency entry must reference a stored node and
// stored edges, and every edge must reference stored nodes and be registered
// under both endpoints. A violation fails with ErrParseFailure and leaves the
// current contents untouched.
func (s *Store) Restore(snap *Snapshot) error {
	if snap == nil {
		return apperrors.WrapError(apperrors.ErrParseFailure, "nil snapshot")
	}

	nodes := make(map[string]*Node, len(snap.Nodes))
	nodeOrder := make([]string, 0, len(snap.Nodes))
	for _, entry := range snap.Nodes {
		if entry.Node == nil || entry.ID == "" {
			return apperrors.WrapError(apperrors.ErrParseFailure, "snapshot node entry missing id or value")
		}
		if _, dup := nodes[entry.ID]; dup {
			return apperrors.WrapErrorf(apperrors.ErrParseFailure, "duplicate node id %q", entry.ID)
		}
		nodes[entry.ID] = entry.Node
		nodeOrder = append(nodeOrder, entry.ID)
	}

	edges := make(map[string]*Edge, len(snap.Edges))
	edgeOrder := make([]string, 0, len(snap.Edges))
	for _, entry := range snap.Edges {
		if entry.Edge == nil || entry.ID == "" {
			return apperrors.WrapError(apperrors.ErrParseFailure, "snapshot edge entry missing id or value")
		}
		if _, dup := edges[entry.ID]; dup {
			return apperrors.WrapErrorf(apperrors.ErrParseFailure, "duplicate edge id %q", entry.ID)
		}
		if _, ok := nodes[entry.Edge.From]; !ok {
			return apperrors.WrapErrorf(apperrors.ErrParseFailure, "edge %q references missing node %q", entry.ID, entry.Edge.From)
		}
		if _, ok := nodes[entry.Edge.To]; !ok {
			return apperrors.WrapErrorf(apperrors.ErrParseFailure, "edge %q references missing node %q", entry.ID, entry.Edge.To)
		}
		edges[entry.ID] = entry.Edge
		edgeOrder = append(edgeOrder, entry.ID)
	}

	nodeEdges := make(map[string][]string, len(snap.NodeEdges))
	registered := make(map[string]int, len(edges))
	for _, entry := range snap.NodeEdges {
		if _, ok := nodes[entry.ID]; !ok {
			return apperrors.WrapErrorf(apperrors.ErrParseFailure, "adjacency entry references missing node %q", entry.ID)
		}
		edgeIDs := make([]string, 0, len(entry.EdgeIDs))
		for _, edgeID := range entry.EdgeIDs {
			if _, ok := edges[edgeID]; !ok {
				return apperrors.WrapErrorf(apperrors.ErrParseFailure, "adjacency entry for %q references missing edge %q", entry.ID, edgeID)
			}
			edgeIDs = append(edgeIDs, edgeID)
			registered[edgeID]++
		}
		nodeEdges[entry.ID] = edgeIDs
	}
	for _, id := range nodeOrder {
		if _, ok := nodeEdges[id]; !ok {
			nodeEdges[id] = []string{}
		}
	}
	for id, edge := range edges {
		want := 2
		if edge.From == edge.To {
			want = 1
		}
		if registered[id] != want {
			return apperrors.WrapErrorf(apperrors.ErrParseFailure, "edge %q not registered under both endpoints", id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nodes
	s.nodeOrder = nodeOrder
	s.edges = edges
	s.edgeOrder = edgeOrder
	s.nodeEdges = nodeEdges
	s.generation++

	s.logger.Info("Restored graph from snapshot",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)))

	return nil
}
