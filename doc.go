// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotboard API server.

ballotboard turns the raw counts of an election API into ranked results,
paged result screens, a rotating public bulletin of voter verification
codes, CSV exports and live counting boards that refresh themselves.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:ballotboard.db ADMIN_KEY_SALT=... UPSTREAM_URL=https://... go run main.go

Or with flags:

	go run main.go -p 3318 -d "postgres://..." -t postgres -u https://elections.example.com/api

A .env file in the working directory is loaded first, and a YAML file can be
given with -c.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - UPSTREAM_URL (-u): Base URL of the election API

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TIMEZONE (-tz): zone of election end times

See package cliparse for the full list.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (results, snapshots, live boards, audit)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - fetcher: Upstream election API client
  - tally: Ranking, percentages, winners and countdowns
  - paginate: Position pages, voter code pages and the bulletin carousel
  - report: Report assembly and CSV export
  - live, schedule: Self-refreshing live boards and their timers
  - models: Domain, request and response types
  - auth: Admin keys and audit identity
  - db: Connection and schema creation
  - metrics: Prometheus collectors
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
