// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/notify"
	"github.com/danielhkuo/codevote/store"
	"github.com/danielhkuo/codevote/testutil"
)

func TestCreateProfileDuplicateEmail(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	p, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "Alice@Example.com")
	if p.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %s", p.Email)
	}

	_, err := st.CreateProfile(ctx, models.Profile{
		Name:         "Other Alice",
		Email:        "alice@example.com ",
		PasswordHash: "x",
		Role:         models.RoleVoter,
	})
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}

	got, err := st.GetProfileByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetProfileByEmail() error = %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("Expected profile %s, got %s", p.ID, got.ID)
	}
}

func TestUpdateProfile(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	p, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "bob@example.com")

	name := "Robert"
	contact := "+1 555 0100"
	updated, err := st.UpdateProfile(ctx, p.ID, models.UpdateProfileRequest{Name: &name, Contact: &contact})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Robert" || updated.Contact == nil || *updated.Contact != contact {
		t.Errorf("Unexpected profile after update: %+v", updated)
	}

	empty := ""
	updated, err = st.UpdateProfile(ctx, p.ID, models.UpdateProfileRequest{Contact: &empty})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Contact != nil {
		t.Errorf("Expected contact to be cleared, got %v", *updated.Contact)
	}

	reloaded, _ := st.GetProfile(ctx, p.ID)
	if reloaded.Name != "Robert" || reloaded.Contact != nil {
		t.Errorf("Update not persisted: %+v", reloaded)
	}

	if _, err := st.UpdateProfile(ctx, "missing", models.UpdateProfileRequest{Name: &name}); !errors.Is(err, store.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	start := time.Now().Add(time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)
	opts := testutil.TestOptions("1", "Yes", "2", "No", "3", "Abstain")

	created := testutil.CreateTestVoting(t, st, admin.ID, start, end, opts)
	if len(created.Code) != 6 {
		t.Errorf("Expected 6-char code, got %q", created.Code)
	}

	got, err := st.GetScheduleByCode(ctx, " "+toLower(created.Code)+" ")
	if err != nil {
		t.Fatalf("GetScheduleByCode() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected voting %s, got %s", created.ID, got.ID)
	}
	if !got.StartDate.Equal(start) || !got.EndDate.Equal(end) {
		t.Errorf("Window not preserved: %v - %v", got.StartDate, got.EndDate)
	}
	if len(got.Options) != 3 || got.Options[2].Text != "Abstain" {
		t.Errorf("Options not preserved in order: %+v", got.Options)
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestCreateScheduleValidation(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()
	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	now := time.Now()

	tests := []struct {
		name    string
		voting  models.VotingSchedule
		wantErr error
	}{
		{
			name: "end before start",
			voting: models.VotingSchedule{
				Title: "Bad", StartDate: now, EndDate: now.Add(-time.Hour),
				Options: testutil.TestOptions("1", "A"), CreatedBy: admin.ID,
			},
			wantErr: models.ErrInvalidWindow,
		},
		{
			name: "end equals start",
			voting: models.VotingSchedule{
				Title: "Bad", StartDate: now, EndDate: now,
				Options: testutil.TestOptions("1", "A"), CreatedBy: admin.ID,
			},
			wantErr: models.ErrInvalidWindow,
		},
		{
			name: "no options",
			voting: models.VotingSchedule{
				Title: "Bad", StartDate: now, EndDate: now.Add(time.Hour), CreatedBy: admin.ID,
			},
			wantErr: models.ErrNoOptions,
		},
		{
			name: "duplicate option ids",
			voting: models.VotingSchedule{
				Title: "Bad", StartDate: now, EndDate: now.Add(time.Hour),
				Options: testutil.TestOptions("1", "A", "1", "B"), CreatedBy: admin.ID,
			},
			wantErr: models.ErrDuplicateOptionID,
		},
		{
			name: "blank option text",
			voting: models.VotingSchedule{
				Title: "Bad", StartDate: now, EndDate: now.Add(time.Hour),
				Options: testutil.TestOptions("1", "  "), CreatedBy: admin.ID,
			},
			wantErr: models.ErrEmptyOptionText,
		},
		{
			name: "missing title",
			voting: models.VotingSchedule{
				StartDate: now, EndDate: now.Add(time.Hour),
				Options: testutil.TestOptions("1", "A"), CreatedBy: admin.ID,
			},
			wantErr: models.ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.CreateSchedule(ctx, tt.voting)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateScheduleExplicitCodeCollision(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()
	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	now := time.Now()

	v := models.VotingSchedule{
		Code: "board1", Title: "Board", StartDate: now, EndDate: now.Add(time.Hour),
		Options: testutil.TestOptions("1", "A"), CreatedBy: admin.ID,
	}
	created, err := st.CreateSchedule(ctx, v)
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	if created.Code != "BOARD1" {
		t.Errorf("Expected uppercase code, got %s", created.Code)
	}

	v.Code = "BOARD1"
	if _, err := st.CreateSchedule(ctx, v); !errors.Is(err, store.ErrDuplicateCode) {
		t.Errorf("Expected ErrDuplicateCode, got %v", err)
	}
}

func TestUpdateScheduleOwnership(t *testing.T) {
	st, hub := testutil.SetupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	owner, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "owner@example.com")
	other, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "other@example.com")
	now := time.Now()
	v := testutil.CreateTestVoting(t, st, owner.ID, now, now.Add(time.Hour), testutil.TestOptions("1", "A"))

	events := hub.Subscribe(ctx, notify.TableVotingSchedules)

	v.Title = "Renamed"
	if _, err := st.UpdateSchedule(ctx, v, other.ID); !errors.Is(err, store.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}

	updated, err := st.UpdateSchedule(ctx, v, owner.ID)
	if err != nil {
		t.Fatalf("UpdateSchedule() error = %v", err)
	}
	if updated.Title != "Renamed" || updated.Code != v.Code {
		t.Errorf("Unexpected voting after update: %+v", updated)
	}

	select {
	case ev := <-events:
		if ev.Op != notify.OpUpdate || ev.VotingID != v.ID {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Error("Expected an update event")
	}

	v.ID = "missing"
	if _, err := st.UpdateSchedule(ctx, v, owner.ID); !errors.Is(err, store.ErrScheduleNotFound) {
		t.Errorf("Expected ErrScheduleNotFound, got %v", err)
	}
}

func TestDeleteScheduleCascadesVotes(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	now := time.Now()
	v := testutil.CreateTestVoting(t, st, admin.ID, now, now.Add(time.Hour), testutil.TestOptions("1", "A"))
	testutil.CastTestVote(t, st, v.ID, voter.ID, "1")

	if err := st.DeleteSchedule(ctx, v.ID); err != nil {
		t.Fatalf("DeleteSchedule() error = %v", err)
	}

	if _, err := st.GetScheduleByID(ctx, v.ID); !errors.Is(err, store.ErrScheduleNotFound) {
		t.Errorf("Expected ErrScheduleNotFound, got %v", err)
	}
	if n, _ := st.CountVotes(ctx, v.ID); n != 0 {
		t.Errorf("Expected votes to cascade, %d remain", n)
	}
	if err := st.DeleteSchedule(ctx, v.ID); !errors.Is(err, store.ErrScheduleNotFound) {
		t.Errorf("Expected ErrScheduleNotFound on second delete, got %v", err)
	}
}

func TestListSchedulesSearch(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	now := time.Now()

	for _, tc := range []struct{ code, title string }{
		{"BOARD1", "Board Member Election"},
		{"BUDGET", "Budget Approval"},
		{"LOGO99", "New Logo Selection"},
	} {
		v, err := st.CreateSchedule(ctx, models.VotingSchedule{
			Code: tc.code, Title: tc.title, StartDate: now, EndDate: now.Add(time.Hour),
			Options: testutil.TestOptions("1", "A"), CreatedBy: admin.ID,
		})
		if err != nil {
			t.Fatalf("CreateSchedule() error = %v", err)
		}
		if tc.code == "BUDGET" {
			testutil.CastTestVote(t, st, v.ID, voter.ID, "1")
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"member", 1},
		{"election", 2},
		{"b", 2},
		{"logo9", 1},
		{"100%", 0},
		{"nothing", 0},
	}
	for _, tt := range tests {
		got, err := st.ListSchedules(ctx, tt.query)
		if err != nil {
			t.Fatalf("ListSchedules(%q) error = %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("ListSchedules(%q) returned %d, want %d", tt.query, len(got), tt.want)
		}
	}

	budget, _ := st.ListSchedules(ctx, "budget")
	if len(budget) != 1 || budget[0].TotalVotes != 1 {
		t.Errorf("Expected budget voting with 1 vote, got %+v", budget)
	}
}

func TestInsertVoteDuplicate(t *testing.T) {
	st, hub := testutil.SetupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	now := time.Now()
	v := testutil.CreateTestVoting(t, st, admin.ID, now, now.Add(time.Hour), testutil.TestOptions("1", "Yes", "2", "No"))

	events := hub.Subscribe(ctx, notify.TableVotes)

	first := testutil.CastTestVote(t, st, v.ID, voter.ID, "1")

	_, err := st.InsertVote(ctx, models.Vote{VotingID: v.ID, VoterID: voter.ID, OptionID: "2"})
	if !errors.Is(err, store.ErrDuplicateVote) {
		t.Fatalf("Expected ErrDuplicateVote, got %v", err)
	}

	// The first vote is untouched
	got, err := st.GetVoterVote(ctx, v.ID, voter.ID)
	if err != nil {
		t.Fatalf("GetVoterVote() error = %v", err)
	}
	if got.ID != first.ID || got.OptionID != "1" {
		t.Errorf("Expected original vote, got %+v", got)
	}
	if n, _ := st.CountVotes(ctx, v.ID); n != 1 {
		t.Errorf("Expected 1 vote, got %d", n)
	}

	// Exactly one insert event
	select {
	case ev := <-events:
		if ev.RowID != first.ID {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an insert event")
	}
	select {
	case ev := <-events:
		t.Errorf("Unexpected event for rejected vote: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInsertVoteUnknownVoting(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")

	_, err := st.InsertVote(context.Background(), models.Vote{VotingID: "missing", VoterID: voter.ID, OptionID: "1"})
	if !errors.Is(err, store.ErrScheduleNotFound) {
		t.Errorf("Expected ErrScheduleNotFound, got %v", err)
	}
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	now := time.Now()
	v := testutil.CreateTestVoting(t, st, admin.ID, now, now.Add(time.Hour), testutil.TestOptions("1", "Yes"))

	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.InsertVote(ctx, models.Vote{VotingID: v.ID, VoterID: voter.ID, OptionID: "1"})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, store.ErrDuplicateVote):
				duplicateCount.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 || duplicateCount.Load() != 9 {
		t.Errorf("Expected 1 success and 9 duplicates, got %d and %d", successCount.Load(), duplicateCount.Load())
	}
}

func TestVoterHistory(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	now := time.Now()
	v1 := testutil.CreateTestVoting(t, st, admin.ID, now, now.Add(time.Hour), testutil.TestOptions("1", "A"))
	v2 := testutil.CreateTestVoting(t, st, admin.ID, now, now.Add(time.Hour), testutil.TestOptions("x", "X", "y", "Y"))
	testutil.CreateTestVoting(t, st, admin.ID, now, now.Add(time.Hour), testutil.TestOptions("1", "A"))

	testutil.CastTestVote(t, st, v1.ID, voter.ID, "1")
	testutil.CastTestVote(t, st, v2.ID, voter.ID, "y")

	records, err := st.ListVoterHistory(ctx, voter.ID)
	if err != nil {
		t.Fatalf("ListVoterHistory() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	byVoting := map[string]string{}
	for _, r := range records {
		byVoting[r.Voting.ID] = r.Vote.OptionID
		if len(r.Voting.Options) == 0 {
			t.Errorf("Voting %s loaded without options", r.Voting.ID)
		}
	}
	if byVoting[v1.ID] != "1" || byVoting[v2.ID] != "y" {
		t.Errorf("Unexpected history: %v", byVoting)
	}
}

func TestSessions(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	p, token := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")

	sess, err := st.GetSession(ctx, token)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess.UserID != p.ID || sess.Role != models.RoleVoter {
		t.Errorf("Unexpected session %+v", sess)
	}

	if err := st.DeleteSession(ctx, token); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := st.GetSession(ctx, token); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after logout, got %v", err)
	}

	expired, err := st.CreateSession(ctx, p.ID, p.Role, -time.Minute)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := st.GetSession(ctx, expired.Token); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("Expected expired session to be rejected, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	ctx := context.Background()

	p, live := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	for i := 0; i < 3; i++ {
		if _, err := st.CreateSession(ctx, p.ID, p.Role, -time.Hour); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
	}

	n, err := st.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 removed sessions, got %d", n)
	}
	if _, err := st.GetSession(ctx, live); err != nil {
		t.Errorf("Live session was removed: %v", err)
	}
}

// ctxRecorder keeps the context each event was published with.
type ctxRecorder struct {
	mu   sync.Mutex
	ctxs []context.Context
}

func (r *ctxRecorder) Publish(ctx context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctxs = append(r.ctxs, ctx)
	return nil
}

func TestPublishOutlivesRequest(t *testing.T) {
	rec := &ctxRecorder{}
	st := store.New(testutil.SetupTestDB(t), rec)

	admin, _ := testutil.CreateTestProfile(t, st, models.RoleAdmin, "admin@example.com")
	voter, _ := testutil.CreateTestProfile(t, st, models.RoleVoter, "voter@example.com")
	now := time.Now()
	voting := testutil.CreateTestVoting(t, st, admin.ID, now.Add(-time.Hour), now.Add(time.Hour),
		testutil.TestOptions("a", "A"))

	type requestKey struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), requestKey{}, "req-1"))
	if _, err := st.InsertVote(ctx, models.Vote{VotingID: voting.ID, VoterID: voter.ID, OptionID: "a"}); err != nil {
		t.Fatalf("InsertVote() error = %v", err)
	}
	cancel()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.ctxs) == 0 {
		t.Fatal("Expected a published event")
	}
	got := rec.ctxs[len(rec.ctxs)-1]
	if got.Err() != nil || got.Done() != nil {
		t.Error("Expected publish context to ignore request cancellation")
	}
	if got.Value(requestKey{}) != "req-1" {
		t.Error("Expected publish context to keep request values")
	}
}
