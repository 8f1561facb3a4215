package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors mapped to HTTP statuses by the handlers. Cross-user
// reads by non-admins deliberately surface ErrNotFound rather than
// ErrForbidden so resource existence is never confirmed.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrSummariesStale marks a partial success: the ledger write
	// committed but recomputing one or more summaries failed. The
	// mutation is never rolled back; the summaries converge on the
	// next successful recompute for the same bucket.
	ErrSummariesStale = errors.New("operation saved but summaries may be stale")
)

// ValidationError carries per-field issues for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid data: " + strings.Join(parts, "; ")
}

func invalidField(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func staleSummaries(err error) error {
	return fmt.Errorf("%w: %v", ErrSummariesStale, err)
}
