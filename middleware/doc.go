// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug level and completion (status, duration_ms) at
info level. The wrapper keeps Flush reachable through
http.ResponseController, so streaming handlers work behind it.

# Sessions

RequireSession checks the Authorization: Bearer token against a
SessionLoader (the store) and optionally restricts the route to roles:

	admin := middleware.RequireSession(st, models.RoleAdmin)
	mux.HandleFunc("POST /votings", middleware.WithLogging(admin(h.CreateVoting)))

Handlers read the caller's session with auth.FromContext. Missing or
expired sessions get 401, a role mismatch gets 403.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

An origin of "*" reflects the request's Origin header.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used in request logs.
*/
package middleware
