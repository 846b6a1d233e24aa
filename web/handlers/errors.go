package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "newsgraph/errors"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	// Log technical error with context
	if logger != nil {
		fields = append(fields, zap.Error(technicalError))
		logger.Error("Request failed", fields...)
	}

	// Return user-friendly message
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case apperrors.IsNodeNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrLLMCommunication):
		return http.StatusBadGateway
	case apperrors.IsPersistenceUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithDomainError picks the HTTP status from the error chain. Client
// errors return their own text; server-side failures are logged and replaced
// with a generic message.
func respondWithDomainError(c *gin.Context, err error, logger *zap.Logger, fields ...zap.Field) {
	status := statusForError(err)
	if status < http.StatusInternalServerError {
		respondWithClientError(c, status, err.Error())
		return
	}

	userMessage := "internal error"
	switch status {
	case http.StatusBadGateway:
		userMessage = "answer generation failed"
	case http.StatusServiceUnavailable:
		userMessage = "storage unavailable"
	}
	respondWithError(c, status, err, userMessage, logger, fields...)
}
