package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsgraph/graph"
)

const defaultQueryLimit = 10

type QueryHandler struct {
	index  *graph.QueryIndex
	logger *zap.Logger
}

func NewQueryHandler(index *graph.QueryIndex, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{index: index, logger: logger}
}

// ByTopic handles GET /api/query/topic.
func (h *QueryHandler) ByTopic(c *gin.Context) {
	term := strings.TrimSpace(c.Query("term"))
	if term == "" {
		respondWithClientError(c, http.StatusBadRequest, "Query parameter term is required")
		return
	}

	results := h.index.QueryByTopic(term, queryInt(c, "limit", defaultQueryLimit))
	c.JSON(http.StatusOK, gin.H{
		"query":   term,
		"count":   len(results),
		"results": results,
	})
}

// ByKeyword handles GET /api/query/keyword.
func (h *QueryHandler) ByKeyword(c *gin.Context) {
	term := strings.TrimSpace(c.Query("term"))
	if term == "" {
		respondWithClientError(c, http.StatusBadRequest, "Query parameter term is required")
		return
	}

	results := h.index.QueryByKeyword(term, queryInt(c, "limit", defaultQueryLimit))
	c.JSON(http.StatusOK, gin.H{
		"query":   term,
		"count":   len(results),
		"results": results,
	})
}
