// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Channel is the PostgreSQL NOTIFY channel used for change events.
const Channel = "codevote_changes"

// PGPublisher sends events through PostgreSQL NOTIFY so every server
// instance listening on the channel sees them.
type PGPublisher struct {
	db *sql.DB
}

func NewPGPublisher(db *sql.DB) *PGPublisher {
	return &PGPublisher{db: db}
}

func (p *PGPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, Channel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// Listen relays notifications from PostgreSQL into the hub until ctx is
// done.
func Listen(ctx context.Context, connStr string, hub *Hub) error {
	listener := pq.NewListener(connStr, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				slog.Warn("notify listener problem", "event", ev, "error", err)
			}
		})
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}
	slog.Info("listening for change notifications", "channel", Channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; events sent while disconnected are lost
			if n == nil {
				hub.Publish(ctx, Event{Op: OpResync})
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				slog.Warn("malformed change notification", "error", err)
				continue
			}
			hub.Publish(ctx, ev)
		case <-time.After(90 * time.Second):
			go listener.Ping()
		}
	}
}
