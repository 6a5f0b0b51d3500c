package research

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery indicates a blank query text reached the gateway.
	ErrInvalidQuery = errors.New("query text cannot be blank")
	// ErrNoQueriesGenerated indicates the generator produced zero queries.
	ErrNoQueriesGenerated = errors.New("no search queries were generated")
	// ErrNotFound indicates a lookup by identifier found nothing.
	ErrNotFound = errors.New("result not found")
)

// ProviderError wraps a search provider failure with the query that caused it.
type ProviderError struct {
	Query string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("search provider failed for %q: %v", e.Query, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
