// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/live"
	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/middleware"
	"github.com/danielhkuo/ballotboard/tally"
)

var validate = validator.New()

// Services are the non-database dependencies shared by the handlers
type Services struct {
	Source     fetcher.Source
	Aggregator *tally.Aggregator
	Live       *live.Registry
	Metrics    *metrics.Collector
}

// invalidator is implemented by sources that cache upstream responses
type invalidator interface {
	Invalidate(electionID string)
}

// writeFetchError maps an upstream failure onto the HTTP response
func writeFetchError(w http.ResponseWriter, err error) {
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		if fe.NotFound() {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Warn("upstream fetch failed",
			"op", fe.Op,
			"election_id", fe.ElectionID,
			"status", fe.StatusCode,
			"error", fe.Err,
		)
		middleware.RetryableErrorResponse(w, http.StatusBadGateway, "Election data is temporarily unavailable", fe.Retryable())
		return
	}
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody reads the response
		return
	}
	slog.Error("unexpected fetch error", "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
}

// queryInt reads a non-negative integer query parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
