// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the codevote API server.

codevote runs scheduled votings that voters join with a short code.
Admins create a voting with a title, a start and end date, and a list
of options. Voters cast exactly one vote while the voting is active, and
everyone signed in can follow the results live.

# Starting the Server

The server reads configuration from the environment (and a .env file):

	DATABASE_URL=file:codevote.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string

Optional settings:

  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PORT (-p): Server port (default: 3318)
  - SESSION_TTL (--session-ttl): Session lifetime (default: 24h)
  - SESSION_SWEEP_INTERVAL (--session-sweep): Expired session cleanup, 0 disables (default: 10m)
  - BCRYPT_COST (--bcrypt-cost): Password hashing cost (default: 10)
  - LOG_LEVEL, LOG_FORMAT: slog level and text/json output
  - CORS_ORIGIN: Allowed origin, "*" reflects the caller (default: *)

# Architecture

  - handlers: HTTP request handlers (auth, votings, voting, results)
  - router: Route definitions and session guards using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - results: Live result snapshots driven by change events
  - notify: Change event hub and PostgreSQL NOTIFY bridge
  - store: Persistence for profiles, votings, votes and sessions
  - tally: Status and result aggregation
  - models: Request/response and domain types
  - auth: Password hashing, tokens and session context
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
