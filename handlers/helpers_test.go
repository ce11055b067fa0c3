// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/store"
	"github.com/danielhkuo/codevote/testutil"
)

// serve runs h behind the session middleware, the way the router mounts it
func serve(st *store.Store, h http.HandlerFunc, req *http.Request, roles ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.RequireSession(st, roles...)(h)(w, req)
	return w
}

// activeVoting creates a voting that is open for the next hour
func activeVoting(t *testing.T, st *store.Store, adminID string) models.VotingSchedule {
	t.Helper()
	now := time.Now()
	return testutil.CreateTestVoting(t, st, adminID, now.Add(-time.Hour), now.Add(time.Hour),
		testutil.TestOptions("yes", "Yes", "no", "No"))
}
