// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/codevote/auth"
	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/results"
	"github.com/danielhkuo/codevote/store"
	"github.com/danielhkuo/codevote/tally"
)

type ScheduleHandler struct {
	st      *store.Store
	watcher *results.Watcher
	cfg     cliparse.Config
}

func NewScheduleHandler(st *store.Store, watcher *results.Watcher, cfg cliparse.Config) *ScheduleHandler {
	return &ScheduleHandler{st: st, watcher: watcher, cfg: cfg}
}

// scheduleFromRequest trims the request and assigns ids to new options.
func scheduleFromRequest(req models.ScheduleRequest) models.VotingSchedule {
	opts := make(models.Options, len(req.Options))
	for i, opt := range req.Options {
		opt.ID = strings.TrimSpace(opt.ID)
		if opt.ID == "" {
			opt.ID = uuid.NewString()
		}
		opt.Text = strings.TrimSpace(opt.Text)
		opts[i] = opt
	}

	return models.VotingSchedule{
		Title:     strings.TrimSpace(req.Title),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Options:   opts,
		ImageURL:  req.ImageURL,
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		models.ErrEmptyTitle,
		models.ErrInvalidWindow,
		models.ErrNoOptions,
		models.ErrEmptyOptionID,
		models.ErrDuplicateOptionID,
		models.ErrEmptyOptionText,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CreateVoting handles POST /votings
func (h *ScheduleHandler) CreateVoting(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	var req models.ScheduleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v := scheduleFromRequest(req)
	v.CreatedBy = sess.UserID

	created, err := h.st.CreateSchedule(r.Context(), v)
	if isValidationError(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, store.ErrDuplicateCode) {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Could not allocate a join code, try again")
		return
	}
	if err != nil {
		slog.Error("failed to create voting", "error", err, "user_id", sess.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create voting")
		return
	}

	slog.Info("voting created",
		"voting_id", created.ID,
		"code", created.Code,
		"options", len(created.Options),
	)

	middleware.JSONResponse(w, http.StatusCreated, created)
}

// ListVotings handles GET /votings?q=
func (h *ScheduleHandler) ListVotings(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.st.ListSchedules(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list votings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	for i := range summaries {
		summaries[i].Status = tally.StatusAt(now, summaries[i].StartDate, summaries[i].EndDate)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListVotingsResponse{Votings: summaries})
}

// GetVoting handles GET /votings/{id}
func (h *ScheduleHandler) GetVoting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	snap, err := h.watcher.Snapshot(r.Context(), id)
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}
	if err != nil {
		slog.Error("failed to compute results", "error", err, "voting_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// UpdateVoting handles PUT /votings/{id}
func (h *ScheduleHandler) UpdateVoting(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	id := r.PathValue("id")

	var req models.ScheduleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v := scheduleFromRequest(req)
	v.ID = id

	updated, err := h.st.UpdateSchedule(r.Context(), v, sess.UserID)
	switch {
	case err == nil:
	case isValidationError(err):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrScheduleNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	case errors.Is(err, store.ErrNotOwner):
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the creator can edit this voting")
		return
	default:
		slog.Error("failed to update voting", "error", err, "voting_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update voting")
		return
	}

	slog.Info("voting updated", "voting_id", id, "user_id", sess.UserID)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteVoting handles DELETE /votings/{id}
func (h *ScheduleHandler) DeleteVoting(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	id := r.PathValue("id")

	err := h.st.DeleteSchedule(r.Context(), id)
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete voting", "error", err, "voting_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voting")
		return
	}

	slog.Info("voting deleted", "voting_id", id, "user_id", sess.UserID)

	w.WriteHeader(http.StatusNoContent)
}
