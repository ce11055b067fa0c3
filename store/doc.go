// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists profiles, votings, votes and sessions.

A Store wraps a *sql.DB opened by package db and works on both SQLite and
PostgreSQL:

	st := store.New(conn, hub)
	voting, err := st.GetScheduleByCode(ctx, "abc123")

Failures the caller can act on are returned as sentinel errors and
matched with errors.Is:

	_, err := st.InsertVote(ctx, vote)
	if errors.Is(err, store.ErrDuplicateVote) {
		// the earlier vote stands
	}

Options are stored as a JSON column and validated on every read and
write. After a vote or voting write the store publishes a notify.Event
so live results can refresh.
*/
package store
