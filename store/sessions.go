// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/codevote/auth"
)

// CreateSession starts a login session for a profile.
func (s *Store) CreateSession(ctx context.Context, userID, role string, ttl time.Duration) (auth.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return auth.Session{}, err
	}

	now := time.Now().UTC()
	sess := auth.Session{
		Token:     token,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.Token, sess.UserID, sess.Role, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return auth.Session{}, ErrProfileNotFound
		}
		return auth.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}

	return sess, nil
}

// GetSession loads a session by token. Expired sessions are removed and
// reported as ErrSessionNotFound.
func (s *Store) GetSession(ctx context.Context, token string) (auth.Session, error) {
	var sess auth.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, role, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&sess.Token, &sess.UserID, &sess.Role, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	if sess.Expired(time.Now()) {
		if err := s.DeleteSession(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return auth.Session{}, err
		}
		return auth.Session{}, ErrSessionNotFound
	}

	return sess, nil
}

// DeleteSession ends a session.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions removes every session past its expiry and returns
// how many were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
