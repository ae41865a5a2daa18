// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are layered, later ones winning:

 1. Defaults()
 2. YAML file named by -c or CONFIG_FILE
 3. Environment variables (a .env file is loaded by main beforehand)
 4. Command-line flags

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - UpstreamURL: base URL of the election API (required)
  - UpstreamToken: bearer token for the election API
  - UpstreamRPS: request pacing, 0 disables it (default: 10)
  - UpstreamCacheTTL: response cache lifetime, 0 disables it (default: 750ms)
  - Timezone: zone election end times are expressed in (default: Local)
  - PageSize: voter codes per page (default: 50)
  - RefreshInterval, CountdownInterval: live board timers (default: 1s)
  - PositionCarouselInterval: default 10s
  - BulletinCarouselInterval: default 5s
  - Debug: debug-level logging

# CLI Flags

	-c                  YAML config file
	-p                  Server port
	-d                  Database URL
	-t                  Database type
	-u                  Upstream election API URL
	-admin-salt         Admin key salt
	-upstream-token     Upstream bearer token
	-upstream-rps       Upstream requests per second
	-cache-ttl          Upstream cache TTL
	-tz                 Timezone
	-page-size          Voter codes per page
	-refresh            Live refresh interval
	-countdown          Live countdown interval
	-position-carousel  Position carousel interval
	-bulletin-carousel  Bulletin carousel interval
	-debug              Debug logging

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, ADMIN_KEY_SALT,
	UPSTREAM_URL, UPSTREAM_TOKEN, UPSTREAM_RPS, UPSTREAM_CACHE_TTL,
	TIMEZONE, PAGE_SIZE, REFRESH_INTERVAL, COUNTDOWN_INTERVAL,
	POSITION_CAROUSEL_INTERVAL, BULLETIN_CAROUSEL_INTERVAL, DEBUG

Durations use Go syntax ("750ms", "10s").

# Validation

The merged Config is checked with validator struct tags. ParseFlags fails
when a required value is missing, a number or duration does not parse, the
database type is unknown, or the timezone cannot be loaded.
*/
package cliparse
