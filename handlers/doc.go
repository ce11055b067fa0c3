// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the codevote API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - AuthHandler: Signup, login, logout and the caller's profile
  - ScheduleHandler: Voting lifecycle for admins (create, list, update, delete)
  - VotingHandler: Joining by code, casting a vote and voter history
  - ResultsHandler: Results, live result stream and preview

Handlers are created via constructor functions:

	scheduleHandler := handlers.NewScheduleHandler(st, watcher, cfg)

Every handler except Signup and Login expects the router to have
attached a session (see middleware.RequireSession).

# Voting Lifecycle

A voting's status follows from its dates, never from stored state:

	now < start        → upcoming
	start ≤ now ≤ end  → active
	now > end          → completed

Votes are accepted only while a voting is active. Each voter gets one
vote per voting; a second attempt answers 409 Conflict and the first
vote stands.

# Results

Results report votes and a rounded percentage per option in option
order. The winner is the first option holding the maximum count. Votes
that reference an option removed by an edit still count toward the
total.

	GET /join/{code}/results        → GetResults
	GET /join/{code}/results/stream → StreamResults (server-sent events)
*/
package handlers
