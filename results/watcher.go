// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/notify"
	"github.com/danielhkuo/codevote/store"
	"github.com/danielhkuo/codevote/tally"
)

// Source loads the rows a results projection is computed from.
type Source interface {
	GetScheduleByID(ctx context.Context, id string) (models.VotingSchedule, error)
	ListVotes(ctx context.Context, votingID string) ([]models.Vote, error)
}

// Subscriber delivers change events.
type Subscriber interface {
	Subscribe(ctx context.Context, tables ...string) <-chan notify.Event
}

// retryDelay is how long a watch waits before recomputing after a failed
// read.
const retryDelay = time.Second

// Watcher computes results and keeps them current as votes arrive.
type Watcher struct {
	src Source
	sub Subscriber
	now func() time.Time
}

func NewWatcher(src Source, sub Subscriber) *Watcher {
	return &Watcher{src: src, sub: sub, now: time.Now}
}

// Snapshot computes the current results of a voting.
func (w *Watcher) Snapshot(ctx context.Context, votingID string) (models.VotingWithResults, error) {
	schedule, err := w.src.GetScheduleByID(ctx, votingID)
	if err != nil {
		return models.VotingWithResults{}, err
	}
	votes, err := w.src.ListVotes(ctx, votingID)
	if err != nil {
		return models.VotingWithResults{}, err
	}
	return tally.Aggregate(schedule, votes, w.now()), nil
}

// Watch streams results for a voting. The first value is the current
// snapshot; a new one follows every vote or edit of the voting and every
// status transition. A consumer that falls behind only sees the latest
// snapshot. The channel is closed when ctx is done or the voting is
// deleted.
func (w *Watcher) Watch(ctx context.Context, votingID string) (<-chan models.VotingWithResults, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before the first read so no change falls in between
	events := w.sub.Subscribe(ctx, notify.TableVotes, notify.TableVotingSchedules)

	snap, err := w.Snapshot(ctx, votingID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan models.VotingWithResults, 1)
	out <- snap

	go func() {
		defer cancel()
		defer close(out)

		timer := time.NewTimer(time.Hour)
		timer.Stop()
		defer timer.Stop()
		w.armBoundary(timer, snap)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				// A resync may hide changes to this voting
				if ev.Op != notify.OpResync && ev.VotingID != votingID {
					continue
				}
				if ev.Table == notify.TableVotingSchedules && ev.Op == notify.OpDelete {
					return
				}
			case <-timer.C:
			}

			next, err := w.Snapshot(ctx, votingID)
			if errors.Is(err, store.ErrScheduleNotFound) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("failed to recompute results", "voting_id", votingID, "error", err)
				timer.Stop()
				timer.Reset(retryDelay)
				continue
			}

			snap = next
			offer(out, snap)
			w.armBoundary(timer, snap)
		}
	}()

	return out, nil
}

// armBoundary schedules a wake-up at the next status transition, if any.
func (w *Watcher) armBoundary(timer *time.Timer, snap models.VotingWithResults) {
	timer.Stop()

	var at time.Time
	switch snap.Status {
	case models.StatusUpcoming:
		at = snap.StartDate
	case models.StatusActive:
		at = snap.EndDate.Add(time.Nanosecond)
	default:
		return
	}
	timer.Reset(at.Sub(w.now()))
}

// offer replaces any unread snapshot with snap. Only the watch goroutine
// sends on out.
func offer(out chan models.VotingWithResults, snap models.VotingWithResults) {
	for {
		select {
		case out <- snap:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
