// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SignupRequest: name, email, password, contact, role, national_id
  - LoginRequest: email, password, role
  - UpdateProfileRequest: name, contact, national_id
  - ScheduleRequest: title, start_date, end_date, options, image_url
  - CastVoteRequest: option_id

# Response Types

  - SessionResponse: token, expires_at, profile
  - JoinResponse: voting, status, my_vote
  - ListVotingsResponse: votings with status and total votes
  - PreviewResponse: compact voting card
  - HistoryResponse: votings a voter took part in
  - ErrorResponse: error, message

# Domain Types

  - Profile: account with role admin or voter
  - VotingSchedule: title, code, time window, ordered Options
  - Vote: one voter's choice in one voting
  - VotingWithResults: per-option tallies, winner and derived status

# Options

The option list is stored as a JSON document. Options implements
sql.Scanner and driver.Valuer and validates on both paths, so a malformed
list never enters or leaves the database:

	var opts models.Options
	row.Scan(&opts) // fails with ErrNoOptions, ErrDuplicateOptionID, ...

# Constants

Roles:

	RoleAdmin = "admin"
	RoleVoter = "voter"

Status values:

	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
*/
package models
