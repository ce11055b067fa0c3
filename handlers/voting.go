// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/codevote/auth"
	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/store"
	"github.com/danielhkuo/codevote/tally"
)

type VotingHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewVotingHandler(st *store.Store, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{st: st, cfg: cfg}
}

// Join handles GET /join/{code}
func (h *VotingHandler) Join(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	voting, err := h.st.GetScheduleByCode(r.Context(), r.PathValue("code"))
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting found for this code")
		return
	}
	if err != nil {
		slog.Error("failed to query voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.JoinResponse{
		Voting: voting,
		Status: tally.StatusAt(time.Now(), voting.StartDate, voting.EndDate),
	}

	vote, err := h.st.GetVoterVote(r.Context(), voting.ID, sess.UserID)
	switch {
	case err == nil:
		resp.MyVote = &vote
	case errors.Is(err, store.ErrVoteNotFound):
	default:
		slog.Error("failed to query vote", "error", err, "voting_id", voting.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CastVote handles POST /join/{code}/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.OptionID = strings.TrimSpace(req.OptionID)
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	voting, err := h.st.GetScheduleByCode(r.Context(), r.PathValue("code"))
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting found for this code")
		return
	}
	if err != nil {
		slog.Error("failed to query voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Votes are only accepted inside the window
	if status := tally.StatusAt(time.Now(), voting.StartDate, voting.EndDate); status != models.StatusActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting is "+string(status)+", not open for votes")
		return
	}

	if _, ok := voting.Options.Find(req.OptionID); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown option for this voting")
		return
	}

	vote, err := h.st.InsertVote(r.Context(), models.Vote{
		VotingID: voting.ID,
		VoterID:  sess.UserID,
		OptionID: req.OptionID,
	})
	if errors.Is(err, store.ErrDuplicateVote) {
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this voting")
		return
	}
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting found for this code")
		return
	}
	if err != nil {
		slog.Error("failed to insert vote", "error", err, "voting_id", voting.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote cast", "voting_id", voting.ID, "vote_id", vote.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  vote.ID,
		Message: "Vote recorded",
	})
}

// History handles GET /history
func (h *VotingHandler) History(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	records, err := h.st.ListVoterHistory(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("failed to query voter history", "error", err, "user_id", sess.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	entries := make([]models.HistoryEntry, 0, len(records))
	for _, rec := range records {
		votes, err := h.st.ListVotes(r.Context(), rec.Voting.ID)
		if err != nil {
			slog.Error("failed to query votes", "error", err, "voting_id", rec.Voting.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		entries = append(entries, models.HistoryEntry{
			Voting:           tally.Aggregate(rec.Voting, votes, now),
			SelectedOptionID: rec.Vote.OptionID,
			VotedAt:          rec.Vote.CreatedAt,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Entries: entries})
}
