package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	apperrors "newsgraph/errors"
)

// EdgeTypeRelatesTo is the relationship type ingestion materializes between
// similar articles.
const EdgeTypeRelatesTo = "RELATES_TO"

// Edge represents a typed relationship between two article nodes.
type Edge struct {
	ID        string                 `json:"id"`
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	Type      string                 `json:"type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// EdgeID derives the deterministic edge id for a relationship triple.
// Re-inserting the same triple therefore overwrites rather than duplicates.
func EdgeID(from, edgeType, to string) string {
	hash := sha256.Sum256([]byte(from + "\x00" + edgeType + "\x00" + to))
	return hex.EncodeToString(hash[:])
}

// AddEdge creates or overwrites the edge for (from, type, to). It fails with
// ErrNodeNotFound if either endpoint is absent, leaving the store untouched.
// The edge id is registered under both endpoints' adjacency sets; registering
// an already-present id has no effect.
func (s *Store) AddEdge(from, to, edgeType string, metadata map[string]interface{}) (*Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from]; !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrNodeNotFound, "edge source %q", from)
	}
	if _, ok := s.nodes[to]; !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrNodeNotFound, "edge target %q", to)
	}

	edge := &Edge{
		ID:        EdgeID(from, edgeType, to),
		From:      from,
		To:        to,
		Type:      edgeType,
		Metadata:  cloneMetadata(metadata),
		CreatedAt: time.Now(),
	}

	if _, exists := s.edges[edge.ID]; !exists {
		s.edgeOrder = append(s.edgeOrder, edge.ID)
		s.nodeEdges[from] = append(s.nodeEdges[from], edge.ID)
		if to != from {
			s.nodeEdges[to] = append(s.nodeEdges[to], edge.ID)
		}
	}
	s.edges[edge.ID] = edge
	s.generation++

	s.logger.Debug("Upserted graph edge",
		zap.String("type", edgeType),
		zap.String("from", from),
		zap.String("to", to))

	return edge, nil
}

// HasEdge reports whether an edge exists for the given triple.
func (s *Store) HasEdge(from, edgeType, to string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[EdgeID(from, edgeType, to)]
	return ok
}

// NeighborEdges returns the edges incident to a node, optionally filtered by
// relationship type. An unknown node yields an empty list, not an error.
func (s *Store) NeighborEdges(nodeID, typeFilter string) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edgeIDs := s.nodeEdges[nodeID]
	edges := make([]*Edge, 0, len(edgeIDs))
	for _, id := range edgeIDs {
		edge := s.edges[id]
		if typeFilter != "" && edge.Type != typeFilter {
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

func cloneMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	clone := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		clone[k] = v
	}
	return clone
}
