// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses github.com/lib/pq, "sqlite" uses modernc.org/sqlite. SQLite
connections are limited to one so ":memory:" databases behave as one database.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - result_snapshot: frozen AggregatedResults of an election, JSON in payload
  - audit_log: who exported or changed what, and when

Election data itself is never stored here; it is read from the upstream
election API on demand.

# Indexes

  - result_snapshot.(election_id, computed_at) for latest-snapshot lookups
  - audit_log.created_at for newest-first listing
*/
package db
