package graph

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds article nodes, typed relationship edges, and a bidirectional
// adjacency index mapping each node to its incident edge ids. It is the
// process-wide source of truth; persistence round-trips it via Snapshot and
// Restore. Insertion order of nodes and edges is preserved so that scoring
// tie-breaks and snapshots are deterministic.
type Store struct {
	mu         sync.RWMutex
	nodes      map[string]*Node
	nodeOrder  []string
	edges      map[string]*Edge
	edgeOrder  []string
	nodeEdges  map[string][]string
	generation uint64
	logger     *zap.Logger
}

// NewStore creates an empty Store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		nodeEdges: make(map[string][]string),
		logger:    logger,
	}
}

// AddNode upserts an article node. Re-adding an existing id overwrites the
// node's attributes in place and refreshes AddedAt; incident edges and the
// node's position in iteration order are preserved. Always succeeds.
func (s *Store) AddNode(node *Node) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	node.AddedAt = time.Now()

	if _, exists := s.nodes[node.ID]; !exists {
		s.nodeOrder = append(s.nodeOrder, node.ID)
	}
	s.nodes[node.ID] = node
	if _, exists := s.nodeEdges[node.ID]; !exists {
		s.nodeEdges[node.ID] = []string{}
	}
	s.generation++

	s.logger.Debug("Upserted graph node",
		zap.String("id", node.ID),
		zap.String("title", node.Title))

	return node
}

// Node returns the node with the given id, or false if absent.
func (s *Store) Node(id string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	return node, ok
}

// Nodes returns all nodes in insertion order.
func (s *Store) Nodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		nodes = append(nodes, s.nodes[id])
	}
	return nodes
}

// RecentNodes returns up to limit nodes ordered by AddedAt descending.
// Ties keep insertion order.
func (s *Store) RecentNodes(limit int) []*Node {
	nodes := s.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].AddedAt.After(nodes[j].AddedAt)
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

// NodeCount returns the number of stored nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of stored edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Generation returns a counter that increases on every mutation. Callers can
// compare generations to detect that cached derived results are stale.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Clear atomically empties nodes, edges, and the adjacency index.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	s.nodeOrder = nil
	s.edges = make(map[string]*Edge)
	s.edgeOrder = nil
	s.nodeEdges = make(map[string][]string)
	s.generation++

	s.logger.Info("Cleared graph store")
}

// Stats summarizes the current graph contents.
type Stats struct {
	TotalNodes             int            `json:"totalNodes"`
	TotalEdges             int            `json:"totalEdges"`
	RelationshipTypeCounts map[string]int `json:"relationshipTypeCounts"`
	CategoryCounts         map[string]int `json:"categoryCounts"`
	SentimentCounts        map[string]int `json:"sentimentCounts"`
}

// Stats computes node, edge, relationship-type, category, and sentiment
// counts over the current graph contents.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalNodes:             len(s.nodes),
		TotalEdges:             len(s.edges),
		RelationshipTypeCounts: make(map[string]int),
		CategoryCounts:         make(map[string]int),
		SentimentCounts:        make(map[string]int),
	}

	for _, id := range s.edgeOrder {
		stats.RelationshipTypeCounts[s.edges[id].Type]++
	}
	for _, id := range s.nodeOrder {
		node := s.nodes[id]
		for _, category := range node.Categories() {
			stats.CategoryCounts[category]++
		}
		if sentiment := node.Sentiment(); sentiment != "" {
			stats.SentimentCounts[sentiment]++
		}
	}

	return stats
}
