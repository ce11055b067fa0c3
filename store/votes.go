// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/notify"
)

const voteColumns = `id, voting_id, voter_id, option_id, created_at`

func scanVote(row rowScanner) (models.Vote, error) {
	var v models.Vote
	err := row.Scan(&v.ID, &v.VotingID, &v.VoterID, &v.OptionID, &v.CreatedAt)
	return v, err
}

// InsertVote records a vote. A second vote by the same voter in the same
// voting fails with ErrDuplicateVote; the first vote is never replaced.
func (s *Store) InsertVote(ctx context.Context, v models.Vote) (models.Vote, error) {
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (id, voting_id, voter_id, option_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.VotingID, v.VoterID, v.OptionID, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Vote{}, ErrDuplicateVote
		}
		if isForeignKeyViolation(err) {
			return models.Vote{}, ErrScheduleNotFound
		}
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	s.publish(ctx, notify.Event{
		Table:    notify.TableVotes,
		Op:       notify.OpInsert,
		VotingID: v.VotingID,
		RowID:    v.ID,
	})

	return v, nil
}

// ListVotes returns every vote of a voting in the order they were cast.
func (s *Store) ListVotes(ctx context.Context, votingID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+voteColumns+`
		FROM votes
		WHERE voting_id = $1
		ORDER BY created_at, id
	`, votingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}

	return votes, rows.Err()
}

func (s *Store) CountVotes(ctx context.Context, votingID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE voting_id = $1`, votingID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// GetVoterVote returns the vote a voter cast in a voting.
func (s *Store) GetVoterVote(ctx context.Context, votingID, voterID string) (models.Vote, error) {
	v, err := scanVote(s.db.QueryRowContext(ctx, `
		SELECT `+voteColumns+`
		FROM votes
		WHERE voting_id = $1 AND voter_id = $2
	`, votingID, voterID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, ErrVoteNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	return v, nil
}

// VoterRecord pairs a voting with the vote one voter cast in it.
type VoterRecord struct {
	Voting models.VotingSchedule
	Vote   models.Vote
}

// ListVoterHistory returns every voting the voter took part in, most
// recent vote first.
func (s *Store) ListVoterHistory(ctx context.Context, voterID string) ([]VoterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.code, s.title, s.start_date, s.end_date, s.options, s.image_url,
		       s.created_by, s.created_at, s.updated_at,
		       v.id, v.voting_id, v.voter_id, v.option_id, v.created_at
		FROM votes v
		JOIN voting_schedules s ON s.id = v.voting_id
		WHERE v.voter_id = $1
		ORDER BY v.created_at DESC, v.id
	`, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voter history: %w", err)
	}
	defer rows.Close()

	records := []VoterRecord{}
	for rows.Next() {
		var rec VoterRecord
		rec.Voting, err = scanSchedule(rows,
			&rec.Vote.ID, &rec.Vote.VotingID, &rec.Vote.VoterID, &rec.Vote.OptionID, &rec.Vote.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voter history: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
