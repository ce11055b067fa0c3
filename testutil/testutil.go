// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/codevote/auth"
	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/db"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/notify"
	"github.com/danielhkuo/codevote/store"
)

// TestPassword is the password of every profile created by CreateTestProfile
const TestPassword = "test-password"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// db.Open keeps a single connection, so each call gets its own
	// private in-memory database
	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// SetupTestStore returns a store over a fresh database and the hub it
// publishes change events to
func SetupTestStore(t *testing.T) (*store.Store, *notify.Hub) {
	t.Helper()
	hub := notify.NewHub()
	return store.New(SetupTestDB(t), hub), hub
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		SessionTTL:   time.Hour,
		BcryptCost:   bcrypt.MinCost,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// CreateTestProfile creates a profile with the given role and returns it
// with a valid session token
func CreateTestProfile(t *testing.T, st *store.Store, role, email string) (models.Profile, string) {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	p, err := st.CreateProfile(context.Background(), models.Profile{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	sess, err := st.CreateSession(context.Background(), p.ID, p.Role, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return p, sess.Token
}

// TestOptions builds an option list from alternating id, text pairs
func TestOptions(pairs ...string) models.Options {
	opts := make(models.Options, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		opts = append(opts, models.Option{ID: pairs[i], Text: pairs[i+1]})
	}
	return opts
}

// CreateTestVoting creates a voting owned by creatorID with the given window
func CreateTestVoting(t *testing.T, st *store.Store, creatorID string, start, end time.Time, opts models.Options) models.VotingSchedule {
	t.Helper()

	v, err := st.CreateSchedule(context.Background(), models.VotingSchedule{
		Title:     "Test Voting",
		StartDate: start,
		EndDate:   end,
		Options:   opts,
		CreatedBy: creatorID,
	})
	if err != nil {
		t.Fatalf("Failed to create test voting: %v", err)
	}

	return v
}

// CastTestVote inserts a vote directly through the store
func CastTestVote(t *testing.T, st *store.Store, votingID, voterID, optionID string) models.Vote {
	t.Helper()

	v, err := st.InsertVote(context.Background(), models.Vote{
		VotingID: votingID,
		VoterID:  voterID,
		OptionID: optionID,
	})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return v
}

// MakeRequest creates an HTTP test request, authenticated when token is set
func MakeRequest(method, path string, body interface{}, token string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
