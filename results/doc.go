// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results serves the live results projection of a voting.

A Watcher reads the schedule and its votes from the store, aggregates them
with the tally package and, through Watch, pushes a fresh snapshot on every
change event for that voting:

	w := results.NewWatcher(st, hub)
	ch, err := w.Watch(ctx, votingID)
	for snap := range ch {
		// render snap
	}

Status transitions (upcoming to active, active to completed) also produce
a snapshot, even when nobody votes.
*/
package results
