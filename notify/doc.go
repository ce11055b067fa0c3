// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify carries row-change events from the store to consumers.

The store publishes an Event after each committed vote insert and each
voting update or delete. Consumers subscribe on a Hub and receive events
on a channel:

	ch := hub.Subscribe(ctx, notify.TableVotes)
	for ev := range ch {
		// re-read and recompute
	}

A subscriber that falls behind by more than its buffer loses events
instead of stalling the publisher, and receives an event with Op
OpResync in their place. Resync events reach every subscriber whatever
tables it asked for. Consumers should treat an event as "something
changed" and re-read, never as a delta.

# PostgreSQL

With several server instances the in-process hub is not enough. On
PostgreSQL the store publishes through PGPublisher (pg_notify), and Listen
relays the channel back into each instance's hub:

	go notify.Listen(ctx, cfg.DatabaseURL, hub)
*/
package notify
