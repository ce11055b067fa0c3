// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/results"
	"github.com/danielhkuo/codevote/store"
	"github.com/danielhkuo/codevote/tally"
)

// streamHeartbeat keeps idle event streams open through proxies
const streamHeartbeat = 15 * time.Second

type ResultsHandler struct {
	st      *store.Store
	watcher *results.Watcher
	cfg     cliparse.Config
}

func NewResultsHandler(st *store.Store, watcher *results.Watcher, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{st: st, watcher: watcher, cfg: cfg}
}

// lookup resolves the voting for the {code} path value, writing the error
// response itself when it fails.
func (h *ResultsHandler) lookup(w http.ResponseWriter, r *http.Request) (models.VotingSchedule, bool) {
	voting, err := h.st.GetScheduleByCode(r.Context(), r.PathValue("code"))
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting found for this code")
		return models.VotingSchedule{}, false
	}
	if err != nil {
		slog.Error("failed to query voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.VotingSchedule{}, false
	}
	return voting, true
}

// GetResults handles GET /join/{code}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	voting, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap, err := h.watcher.Snapshot(r.Context(), voting.ID)
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting found for this code")
		return
	}
	if err != nil {
		slog.Error("failed to compute results", "error", err, "voting_id", voting.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// StreamResults handles GET /join/{code}/results/stream
// Sends a "results" event with the full projection on every change, and a
// final "closed" event if the voting is deleted.
func (h *ResultsHandler) StreamResults(w http.ResponseWriter, r *http.Request) {
	voting, ok := h.lookup(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	updates, err := h.watcher.Watch(ctx, voting.ID)
	if errors.Is(err, store.ErrScheduleNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting found for this code")
		return
	}
	if err != nil {
		slog.Error("failed to watch results", "error", err, "voting_id", voting.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout; unsupported writers ignore this
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	slog.Debug("results stream opened", "voting_id", voting.ID)
	defer slog.Debug("results stream closed", "voting_id", voting.ID)

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				if ctx.Err() == nil {
					fmt.Fprint(w, "event: closed\ndata: {}\n\n")
					_ = rc.Flush()
				}
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				slog.Error("failed to encode results", "error", err, "voting_id", voting.ID)
				return
			}
			if _, err := fmt.Fprintf(w, "event: results\ndata: %s\n\n", data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// GetPreview handles GET /join/{code}/preview
// Returns compact voting data for link previews
func (h *ResultsHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	voting, ok := h.lookup(w, r)
	if !ok {
		return
	}

	count, err := h.st.CountVotes(r.Context(), voting.ID)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "voting_id", voting.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	status, when := describeWindow(time.Now(), voting.StartDate, voting.EndDate)

	middleware.JSONResponse(w, http.StatusOK, models.PreviewResponse{
		Title:       voting.Title,
		Status:      status,
		OptionCount: len(voting.Options),
		VoteCount:   count,
		When:        when,
	})
}

// describeWindow returns the status at now and a relative description of
// the next or last boundary, e.g. "starts 3 hours from now".
func describeWindow(now, start, end time.Time) (models.Status, string) {
	status := tally.StatusAt(now, start, end)
	switch status {
	case models.StatusUpcoming:
		return status, "starts " + humanize.RelTime(start, now, "ago", "from now")
	case models.StatusActive:
		return status, "ends " + humanize.RelTime(end, now, "ago", "from now")
	default:
		return status, "ended " + humanize.RelTime(end, now, "ago", "from now")
	}
}
