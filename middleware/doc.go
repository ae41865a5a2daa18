// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(handler))

Logs completion with method, path, status and duration_ms, plus election_id
when the route has an {id} wildcard. 5xx responses log at warn level.

# Request Metrics

Count requests and latency per route pattern:

	mux.HandleFunc(pattern, middleware.WithMetrics(collector, pattern, handler))

A nil collector records nothing.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Key.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.RetryableErrorResponse(w, http.StatusBadGateway, "message", true)

Parse JSON request bodies (unknown fields are rejected):

	var req models.CursorRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Audit entries store a salted hash of it, never the address.
*/
package middleware
