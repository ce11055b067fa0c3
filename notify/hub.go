// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Tables that emit change events
const (
	TableVotes           = "votes"
	TableVotingSchedules = "voting_schedules"
)

// Row operations
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"

	// OpResync tells a subscriber that events were lost and any state
	// derived from them must be reloaded.
	OpResync = "RESYNC"
)

// Event describes a committed row change.
type Event struct {
	Table    string    `json:"table"`
	Op       string    `json:"op"`
	VotingID string    `json:"voting_id"`
	RowID    string    `json:"row_id"`
	At       time.Time `json:"at"`
}

// Publisher accepts change events from the store.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

const subscriberBuffer = 16

type subscriber struct {
	tables map[string]bool
	ch     chan Event
}

// Hub fans events out to in-process subscribers.
type Hub struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe returns a channel receiving events for the given tables, or
// for every table when none are given. The channel is closed once ctx is
// done.
func (h *Hub) Subscribe(ctx context.Context, tables ...string) <-chan Event {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(tables) > 0 {
		sub.tables = make(map[string]bool, len(tables))
		for _, t := range tables {
			sub.tables[t] = true
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, sub)
		close(sub.ch)
		h.mu.Unlock()
	}()

	return sub.ch
}

// Publish delivers ev to every interested subscriber. Publishers never
// block: when a subscriber's buffer is full its oldest event is discarded
// along with ev, and a resync event is queued in their place.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if ev.Op != OpResync && sub.tables != nil && !sub.tables[ev.Table] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.dropped.Add(1)
			slog.Warn("dropped change event for slow subscriber",
				"table", ev.Table,
				"voting_id", ev.VotingID,
			)
			sub.resync(ev.At)
		}
	}
	return nil
}

// resync makes room for a resync event. The hub holds its lock and is the
// only sender, so the send after the eviction cannot block.
func (s *subscriber) resync(at time.Time) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- Event{Op: OpResync, At: at}:
	default:
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many events were discarded for slow subscribers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
