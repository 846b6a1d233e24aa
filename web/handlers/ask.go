package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsgraph/answer"
)

type AskHandler struct {
	answer *answer.Service
	logger *zap.Logger
}

func NewAskHandler(answerService *answer.Service, logger *zap.Logger) *AskHandler {
	return &AskHandler{answer: answerService, logger: logger}
}

type askRequest struct {
	Query      string `json:"query"`
	MaxSources int    `json:"max_sources"`
}

// Ask handles POST /api/ask.
func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.answer.Ask(c.Request.Context(), req.Query, req.MaxSources)
	if err != nil {
		respondWithDomainError(c, err, h.logger, zap.String("query", req.Query))
		return
	}

	c.JSON(http.StatusOK, resp)
}
