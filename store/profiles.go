// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/codevote/models"
)

const profileColumns = `id, name, email, password_hash, contact, role, national_id, created_at, updated_at`

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Contact,
		&p.Role, &p.NationalID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateProfile inserts a new profile. The ID and timestamps are assigned
// here.
func (s *Store) CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Email = NormalizeEmail(p.Email)
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, password_hash, contact, role, national_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Email, p.PasswordHash, p.Contact, p.Role, p.NationalID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, fmt.Errorf("failed to insert profile: %w", err)
	}

	return p, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of req to the profile. An empty
// contact or national ID clears the field.
func (s *Store) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (models.Profile, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Contact != nil {
		p.Contact = emptyToNil(*req.Contact)
	}
	if req.NationalID != nil {
		p.NationalID = emptyToNil(*req.NationalID)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE profiles
		SET name = $1, contact = $2, national_id = $3, updated_at = $4
		WHERE id = $5
	`, p.Name, p.Contact, p.NationalID, p.UpdatedAt, p.ID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return p, nil
}

func emptyToNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
