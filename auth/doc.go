// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session and join code utilities.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword(password, cfg.BcryptCost)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

Passwords shorter than MinPasswordLength are rejected with
ErrPasswordTooShort.

# Sessions

Session tokens are random 32-byte (256-bit) secrets, URL-safe base64
encoded:

	token, err := auth.GenerateSessionToken()

A Session is stored in the sessions table at login and removed at logout.
Middleware loads it for each request and attaches it to the request
context; handlers read it back with FromContext:

	s, ok := auth.FromContext(r.Context())

There is no process-wide "current user".

# Join Codes

Votings are found by a short code typed in by voters:

	code, err := auth.GenerateJoinCode() // e.g. "K3Q9ZD"
	auth.NormalizeCode(" k3q9zd ")       // "K3Q9ZD"

Codes are stored uppercase, so lookups are case-insensitive once the input
is normalized.
*/
package auth
