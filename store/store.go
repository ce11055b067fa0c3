// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/codevote/notify"
)

var (
	ErrScheduleNotFound = errors.New("voting not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrDuplicateVote    = errors.New("voter has already voted in this voting")
	ErrDuplicateEmail   = errors.New("email is already registered")
	ErrDuplicateCode    = errors.New("join code already in use")
	ErrNotOwner         = errors.New("voting belongs to another admin")
)

// Store reads and writes profiles, votings, votes and sessions.
type Store struct {
	db  *sql.DB
	pub notify.Publisher
}

// New creates a Store. pub receives change events after vote and voting
// writes; it may be nil.
func New(db *sql.DB, pub notify.Publisher) *Store {
	return &Store{db: db, pub: pub}
}

// publish emits a change event for a write that has already been
// committed. Failure is logged, not returned: the write itself succeeded.
// The event outlives the caller's request, so its cancellation is
// ignored.
func (s *Store) publish(ctx context.Context, ev notify.Event) {
	if s.pub == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := s.pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("failed to publish change event",
			"table", ev.Table,
			"op", ev.Op,
			"voting_id", ev.VotingID,
			"error", err,
		)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure from either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY failure.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
