package source

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoRecords is returned when the fetched pages contain no catalog rows.
var ErrNoRecords = errors.New("no catalog records found")

// ErrInvalidSize is wrapped by RowError when a size cell cannot be parsed.
var ErrInvalidSize = errors.New("invalid size")

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status is worth retrying.
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RowError describes a catalog row that was skipped.
type RowError struct {
	Row      int
	Category string
	Name     string
	Err      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s/%s): %v", e.Row, e.Category, e.Name, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
