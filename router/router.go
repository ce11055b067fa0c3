// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/handlers"
	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/results"
	"github.com/danielhkuo/codevote/store"
)

func NewRouter(st *store.Store, watcher *results.Watcher, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, cfg)
	scheduleHandler := handlers.NewScheduleHandler(st, watcher, cfg)
	votingHandler := handlers.NewVotingHandler(st, cfg)
	resultsHandler := handlers.NewResultsHandler(st, watcher, cfg)

	// Session guards
	anyone := middleware.RequireSession(st)
	admin := middleware.RequireSession(st, models.RoleAdmin)
	voter := middleware.RequireSession(st, models.RoleVoter)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /auth/signup", middleware.WithLogging(authHandler.Signup))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(anyone(authHandler.Logout)))
	mux.HandleFunc("GET /me", middleware.WithLogging(anyone(authHandler.GetMe)))
	mux.HandleFunc("PATCH /me", middleware.WithLogging(anyone(authHandler.UpdateMe)))

	// Voting management (admins)
	mux.HandleFunc("POST /votings", middleware.WithLogging(admin(scheduleHandler.CreateVoting)))
	mux.HandleFunc("GET /votings", middleware.WithLogging(admin(scheduleHandler.ListVotings)))
	mux.HandleFunc("GET /votings/{id}", middleware.WithLogging(admin(scheduleHandler.GetVoting)))
	mux.HandleFunc("PUT /votings/{id}", middleware.WithLogging(admin(scheduleHandler.UpdateVoting)))
	mux.HandleFunc("DELETE /votings/{id}", middleware.WithLogging(admin(scheduleHandler.DeleteVoting)))

	// Voting by code (voters)
	mux.HandleFunc("GET /join/{code}", middleware.WithLogging(voter(votingHandler.Join)))
	mux.HandleFunc("POST /join/{code}/vote", middleware.WithLogging(voter(votingHandler.CastVote)))
	mux.HandleFunc("GET /history", middleware.WithLogging(voter(votingHandler.History)))

	// Results (any signed-in user)
	mux.HandleFunc("GET /join/{code}/results", middleware.WithLogging(anyone(resultsHandler.GetResults)))
	mux.HandleFunc("GET /join/{code}/results/stream", middleware.WithLogging(anyone(resultsHandler.StreamResults)))
	mux.HandleFunc("GET /join/{code}/preview", middleware.WithLogging(anyone(resultsHandler.GetPreview)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("codevote API v1"))
	})

	return mux
}
