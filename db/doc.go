// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Opening

Open selects the driver from the database type and pings the connection:

	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")
	conn, err := db.Open(ctx, db.TypeSQLite, "file:codevote.db")

PostgreSQL uses github.com/lib/pq, SQLite uses modernc.org/sqlite. SQLite
connections are limited to one open connection with foreign keys enabled,
which also makes ":memory:" usable for tests.

# Schema Creation

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The options column is JSONB on PostgreSQL and TEXT on SQLite.

# Tables

  - profiles: Accounts with role admin or voter
  - voting_schedules: Votings with join code, time window and options
  - votes: One vote per voter per voting
  - sessions: Login sessions

# Relationships

	profiles 1──* voting_schedules (created_by)
	voting_schedules 1──* votes
	profiles 1──* votes (voter_id)
	profiles 1──* sessions

Votes and sessions cascade on delete.

# Constraints

  - profiles.email UNIQUE
  - voting_schedules.code UNIQUE (stored uppercase)
  - voting_schedules CHECK (end_date > start_date)
  - votes UNIQUE (voting_id, voter_id)

The votes uniqueness constraint is what actually prevents double voting;
two concurrent submissions from one voter race past any read-then-insert
check in the handlers.
*/
package db
