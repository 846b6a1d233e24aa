package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNodeNotFound indicates a referenced graph node does not exist
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistenceUnavailable indicates the persistence backend cannot be reached
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrParseFailure indicates stored or supplied data could not be decoded
	ErrParseFailure = errors.New("parse failure")

	// ErrUpstreamFetch indicates a retrieval strategy failed against its index
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrLLMCommunication indicates LLM communication failed
	ErrLLMCommunication = errors.New("llm communication failed")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNodeNotFound checks if error is a missing node error
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPersistenceUnavailable checks if error is a persistence availability error
func IsPersistenceUnavailable(err error) bool {
	return errors.Is(err, ErrPersistenceUnavailable)
}

// IsParseFailure checks if error is a decode error
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrParseFailure)
}
