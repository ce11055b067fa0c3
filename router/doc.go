// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the codevote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, watcher, cfg)

# Endpoints

Health:

	GET /health

Accounts:

	POST  /auth/signup - Create profile and session
	POST  /auth/login  - Start session for a role
	POST  /auth/logout - End session
	GET   /me          - Current profile
	PATCH /me          - Update profile

Voting management (admin session):

	POST   /votings      - Create voting
	GET    /votings      - List votings, ?q= searches
	GET    /votings/{id} - Voting with results
	PUT    /votings/{id} - Edit voting (creator only)
	DELETE /votings/{id} - Delete voting and its votes

Voting (voter session):

	GET  /join/{code}      - Voting details and own vote
	POST /join/{code}/vote - Cast vote
	GET  /history          - Votings the voter took part in

Results (any session):

	GET /join/{code}/results        - Current results
	GET /join/{code}/results/stream - Live results as server-sent events
	GET /join/{code}/preview        - Compact preview data

Sessions are passed as "Authorization: Bearer <token>".
*/
package router
