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

	"github.com/danielhkuo/codevote/auth"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/notify"
)

// maxCodeAttempts bounds join code regeneration on collision.
const maxCodeAttempts = 5

const scheduleColumns = `id, code, title, start_date, end_date, options, image_url, created_by, created_at, updated_at`

func scanSchedule(row rowScanner, extra ...any) (models.VotingSchedule, error) {
	var v models.VotingSchedule
	dest := []any{
		&v.ID, &v.Code, &v.Title, &v.StartDate, &v.EndDate,
		&v.Options, &v.ImageURL, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return v, err
}

// CreateSchedule stores a new voting. When v.Code is empty a join code is
// generated, retrying on collision.
func (s *Store) CreateSchedule(ctx context.Context, v models.VotingSchedule) (models.VotingSchedule, error) {
	if err := models.ValidateSchedule(v); err != nil {
		return models.VotingSchedule{}, err
	}

	now := time.Now().UTC()
	v.ID = uuid.NewString()
	v.StartDate = v.StartDate.UTC()
	v.EndDate = v.EndDate.UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	generate := v.Code == ""
	v.Code = auth.NormalizeCode(v.Code)

	for attempt := 1; ; attempt++ {
		if generate {
			code, err := auth.GenerateJoinCode()
			if err != nil {
				return models.VotingSchedule{}, err
			}
			v.Code = code
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO voting_schedules (id, code, title, start_date, end_date, options, image_url, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, v.ID, v.Code, v.Title, v.StartDate, v.EndDate, v.Options, v.ImageURL, v.CreatedBy, v.CreatedAt, v.UpdatedAt)
		if err == nil {
			break
		}
		if isForeignKeyViolation(err) {
			return models.VotingSchedule{}, ErrProfileNotFound
		}
		if !isUniqueViolation(err) {
			return models.VotingSchedule{}, fmt.Errorf("failed to insert voting: %w", err)
		}
		if !generate || attempt >= maxCodeAttempts {
			return models.VotingSchedule{}, ErrDuplicateCode
		}
	}

	return v, nil
}

// UpdateSchedule replaces the title, window, options and image of a
// voting. Only the admin who created it may edit it.
func (s *Store) UpdateSchedule(ctx context.Context, v models.VotingSchedule, editorID string) (models.VotingSchedule, error) {
	if err := models.ValidateSchedule(v); err != nil {
		return models.VotingSchedule{}, err
	}

	existing, err := s.GetScheduleByID(ctx, v.ID)
	if err != nil {
		return models.VotingSchedule{}, err
	}
	if existing.CreatedBy != editorID {
		return models.VotingSchedule{}, ErrNotOwner
	}

	existing.Title = v.Title
	existing.StartDate = v.StartDate.UTC()
	existing.EndDate = v.EndDate.UTC()
	existing.Options = v.Options
	existing.ImageURL = v.ImageURL
	existing.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE voting_schedules
		SET title = $1, start_date = $2, end_date = $3, options = $4, image_url = $5, updated_at = $6
		WHERE id = $7 AND created_by = $8
	`, existing.Title, existing.StartDate, existing.EndDate, existing.Options,
		existing.ImageURL, existing.UpdatedAt, existing.ID, editorID)
	if err != nil {
		return models.VotingSchedule{}, fmt.Errorf("failed to update voting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Deleted between the read and the write
		return models.VotingSchedule{}, ErrScheduleNotFound
	}

	s.publish(ctx, notify.Event{
		Table:    notify.TableVotingSchedules,
		Op:       notify.OpUpdate,
		VotingID: existing.ID,
		RowID:    existing.ID,
	})

	return existing, nil
}

// DeleteSchedule removes a voting and, by cascade, its votes.
func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM voting_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete voting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete voting: %w", err)
	}
	if n == 0 {
		return ErrScheduleNotFound
	}

	s.publish(ctx, notify.Event{
		Table:    notify.TableVotingSchedules,
		Op:       notify.OpDelete,
		VotingID: id,
		RowID:    id,
	})
	return nil
}

func (s *Store) GetScheduleByID(ctx context.Context, id string) (models.VotingSchedule, error) {
	v, err := scanSchedule(s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM voting_schedules WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.VotingSchedule{}, ErrScheduleNotFound
	}
	if err != nil {
		return models.VotingSchedule{}, fmt.Errorf("failed to query voting: %w", err)
	}
	return v, nil
}

// GetScheduleByCode finds a voting by join code, ignoring case.
func (s *Store) GetScheduleByCode(ctx context.Context, code string) (models.VotingSchedule, error) {
	code = auth.NormalizeCode(code)
	if code == "" {
		return models.VotingSchedule{}, ErrScheduleNotFound
	}

	v, err := scanSchedule(s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM voting_schedules WHERE code = $1`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return models.VotingSchedule{}, ErrScheduleNotFound
	}
	if err != nil {
		return models.VotingSchedule{}, fmt.Errorf("failed to query voting: %w", err)
	}
	return v, nil
}

// ListSchedules returns votings newest first with their vote counts. A
// non-empty query matches title or code, case-insensitively.
func (s *Store) ListSchedules(ctx context.Context, query string) ([]models.VotingSummary, error) {
	q := `
		SELECT ` + scheduleColumns + `,
		       (SELECT COUNT(*) FROM votes WHERE votes.voting_id = voting_schedules.id) AS total_votes
		FROM voting_schedules`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		q += ` WHERE LOWER(title) LIKE $1 ESCAPE '\' OR LOWER(code) LIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(query))+"%")
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votings: %w", err)
	}
	defer rows.Close()

	summaries := []models.VotingSummary{}
	for rows.Next() {
		var total int
		v, err := scanSchedule(rows, &total)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voting: %w", err)
		}
		summaries = append(summaries, models.VotingSummary{VotingSchedule: v, TotalVotes: total})
	}

	return summaries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
