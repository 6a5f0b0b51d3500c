package mcp

import (
	"errors"
	"fmt"

	"github.com/scryhq/scry/internal/domain/research"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Returns nil for errors
// with no dedicated code.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var provErr *research.ProviderError
	switch {
	case errors.Is(err, research.ErrInvalidQuery):
		return &APIError{Code: "INVALID_QUERY", Message: "query text must not be blank"}
	case errors.Is(err, research.ErrNoQueriesGenerated):
		return &APIError{Code: "NO_QUERIES_GENERATED", Message: "no search queries could be generated", RecoveryHint: "Add more detail to purpose and question"}
	case errors.Is(err, research.ErrNotFound):
		return &APIError{Code: "RESULT_NOT_FOUND", Message: "result not found", RecoveryHint: "Check the result ID against list_recent_results"}
	case errors.As(err, &provErr):
		return &APIError{Code: "SEARCH_PROVIDER_ERROR", Message: provErr.Error(), RecoveryHint: "Retry later"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
