package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsgraph/graph"
	"newsgraph/persistence"
)

type GraphHandler struct {
	store   *graph.Store
	persist persistence.Store
	saver   *persistence.Saver
	logger  *zap.Logger
}

func NewGraphHandler(store *graph.Store, persist persistence.Store, saver *persistence.Saver, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{store: store, persist: persist, saver: saver, logger: logger}
}

// Stats handles GET /api/graph/stats.
func (h *GraphHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// Clear handles POST /api/graph/clear.
func (h *GraphHandler) Clear(c *gin.Context) {
	h.store.Clear()
	if h.saver != nil {
		h.saver.MarkDirty()
	}
	h.logger.Info("Cleared knowledge graph")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Save handles POST /api/graph/save. It writes a snapshot synchronously,
// bypassing the autosave interval.
func (h *GraphHandler) Save(c *gin.Context) {
	snapshot := h.store.Snapshot()
	if err := h.persist.Save(c.Request.Context(), snapshot); err != nil {
		respondWithDomainError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "saved",
		"nodes":  snapshot.Stats.NodeCount,
		"edges":  snapshot.Stats.EdgeCount,
	})
}

// Health handles GET /healthz.
func (h *GraphHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"nodes":  h.store.NodeCount(),
	})
}
