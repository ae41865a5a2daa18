// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"fmt"
	"net/http"
)

// FetchError reports a failed call to the upstream election API.
// StatusCode is 0 when no HTTP response was received.
type FetchError struct {
	Op         string
	ElectionID string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s for election %s: upstream returned %d: %v", e.Op, e.ElectionID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s for election %s: %v", e.Op, e.ElectionID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable is false only for client errors that a retry cannot fix
func (e *FetchError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return false
	default:
		return true
	}
}

// NotFound reports whether the upstream has no such election
func (e *FetchError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
