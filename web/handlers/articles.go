package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsgraph/graph"
	"newsgraph/ingest"
	"newsgraph/persistence"
)

const defaultSimilarLimit = 5

type ArticleHandler struct {
	ingest     *ingest.Service
	store      *graph.Store
	similarity *graph.SimilarityEngine
	saver      *persistence.Saver
	logger     *zap.Logger
}

func NewArticleHandler(ingestService *ingest.Service, store *graph.Store, similarity *graph.SimilarityEngine, saver *persistence.Saver, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{
		ingest:     ingestService,
		store:      store,
		similarity: similarity,
		saver:      saver,
		logger:     logger,
	}
}

// Ingest handles POST /api/articles.
func (h *ArticleHandler) Ingest(c *gin.Context) {
	var input ingest.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), input)
	if err != nil {
		respondWithDomainError(c, err, h.logger, zap.String("title", input.Title))
		return
	}

	h.markDirty()
	c.JSON(http.StatusCreated, result)
}

// IngestBatch handles POST /api/articles/batch. Invalid articles are skipped,
// not fatal to the batch.
func (h *ArticleHandler) IngestBatch(c *gin.Context) {
	var inputs []ingest.ArticleInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(inputs) == 0 {
		respondWithClientError(c, http.StatusBadRequest, "Batch must contain at least one article")
		return
	}

	results := h.ingest.IngestBatch(c.Request.Context(), inputs)
	if len(results) > 0 {
		h.markDirty()
	}

	c.JSON(http.StatusCreated, gin.H{
		"ingested": len(results),
		"skipped":  len(inputs) - len(results),
		"results":  results,
	})
}

// Get handles GET /api/articles/:id.
func (h *ArticleHandler) Get(c *gin.Context) {
	node, ok := h.store.Node(c.Param("id"))
	if !ok {
		respondWithClientError(c, http.StatusNotFound, "Article not found")
		return
	}
	c.JSON(http.StatusOK, node)
}

// Similar handles GET /api/articles/:id/similar.
func (h *ArticleHandler) Similar(c *gin.Context) {
	id := c.Param("id")
	limit := queryInt(c, "limit", defaultSimilarLimit)

	matches, err := h.similarity.FindSimilar(id, limit)
	if err != nil {
		respondWithDomainError(c, err, h.logger, zap.String("id", id))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articleId": id,
		"count":     len(matches),
		"similar":   matches,
	})
}

// Edges handles GET /api/articles/:id/edges. An optional type parameter
// filters by relationship type.
func (h *ArticleHandler) Edges(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Node(id); !ok {
		respondWithClientError(c, http.StatusNotFound, "Article not found")
		return
	}

	edges := h.store.NeighborEdges(id, c.Query("type"))
	c.JSON(http.StatusOK, gin.H{
		"articleId": id,
		"count":     len(edges),
		"edges":     edges,
	})
}

type edgeRequest struct {
	From     string                 `json:"from" binding:"required"`
	To       string                 `json:"to" binding:"required"`
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
}

// AddEdge handles POST /api/edges. The relationship type defaults to
// RELATES_TO.
func (h *ArticleHandler) AddEdge(c *gin.Context) {
	var req edgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = graph.EdgeTypeRelatesTo
	}

	edge, err := h.store.AddEdge(req.From, req.To, req.Type, req.Metadata)
	if err != nil {
		respondWithDomainError(c, err, h.logger,
			zap.String("from", req.From),
			zap.String("to", req.To))
		return
	}

	h.markDirty()
	c.JSON(http.StatusCreated, edge)
}

func (h *ArticleHandler) markDirty() {
	if h.saver != nil {
		h.saver.MarkDirty()
	}
}

// queryInt parses an optional integer query parameter, falling back on
// missing or unusable values.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
