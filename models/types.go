// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Profile roles
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// Status is the temporal classification of a voting. It is derived from
// the clock on every read and never stored.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Request types

type SignupRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Contact    *string `json:"contact,omitempty"`
	Role       string  `json:"role"`
	NationalID *string `json:"national_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Contact    *string `json:"contact,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
}

// ScheduleRequest is used for both creating and editing a voting.
type ScheduleRequest struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Options   Options   `json:"options"`
	ImageURL  *string   `json:"image_url,omitempty"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type JoinResponse struct {
	Voting VotingSchedule `json:"voting"`
	Status Status         `json:"status"`
	MyVote *Vote          `json:"my_vote,omitempty"`
}

type VotingSummary struct {
	VotingSchedule
	Status     Status `json:"status"`
	TotalVotes int    `json:"total_votes"`
}

type ListVotingsResponse struct {
	Votings []VotingSummary `json:"votings"`
}

type PreviewResponse struct {
	Title       string `json:"title"`
	Status      Status `json:"status"`
	OptionCount int    `json:"option_count"`
	VoteCount   int    `json:"vote_count"`
	When        string `json:"when"`
}

type HistoryEntry struct {
	Voting           VotingWithResults `json:"voting"`
	SelectedOptionID string            `json:"selected_option_id"`
	VotedAt          time.Time         `json:"voted_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// Domain types

type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Contact      *string   `json:"contact,omitempty"`
	Role         string    `json:"role"`
	NationalID   *string   `json:"national_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type VotingSchedule struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Options   Options   `json:"options"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	VotingID  string    `json:"voting_id"`
	VoterID   string    `json:"-"` // Never expose in JSON
	OptionID  string    `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Aggregated result types

type OptionResult struct {
	OptionID string  `json:"option_id"`
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
	Votes    int     `json:"votes"`
	Percent  int     `json:"percent"`
}

// VotingWithResults is a read-only projection of a voting and its votes.
type VotingWithResults struct {
	VotingSchedule
	TotalVotes    int            `json:"total_votes"`
	OrphanedVotes int            `json:"orphaned_votes"`
	Results       []OptionResult `json:"results"`
	Winner        *OptionResult  `json:"winner"`
	Status        Status         `json:"status"`
	ComputedAt    time.Time      `json:"computed_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
