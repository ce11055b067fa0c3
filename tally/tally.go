// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"time"

	"github.com/danielhkuo/codevote/models"
)

// StatusAt classifies a voting window relative to now.
// Both boundaries belong to the active window.
func StatusAt(now, start, end time.Time) models.Status {
	switch {
	case now.Before(start):
		return models.StatusUpcoming
	case now.After(end):
		return models.StatusCompleted
	default:
		return models.StatusActive
	}
}

// Percent returns round(100 * votes / total) using round-half-up, or 0
// when there are no votes.
func Percent(votes, total int) int {
	if total <= 0 || votes <= 0 {
		return 0
	}
	// Integer form of floor(100*v/t + 0.5)
	return (200*votes + total) / (2 * total)
}

// Aggregate builds the results projection for a voting from its votes.
//
// Every option of the schedule appears in the results, in schedule order,
// even when it has no votes. A vote whose option id is not in the schedule
// is counted in TotalVotes and OrphanedVotes but in no option tally.
func Aggregate(schedule models.VotingSchedule, votes []models.Vote, now time.Time) models.VotingWithResults {
	counts := make(map[string]int, len(schedule.Options))
	for _, opt := range schedule.Options {
		counts[opt.ID] = 0
	}

	orphaned := 0
	for _, v := range votes {
		if _, ok := counts[v.OptionID]; !ok {
			orphaned++
			continue
		}
		counts[v.OptionID]++
	}

	total := len(votes)
	results := make([]models.OptionResult, len(schedule.Options))
	for i, opt := range schedule.Options {
		n := counts[opt.ID]
		results[i] = models.OptionResult{
			OptionID: opt.ID,
			Text:     opt.Text,
			ImageURL: opt.ImageURL,
			Votes:    n,
			Percent:  Percent(n, total),
		}
	}

	return models.VotingWithResults{
		VotingSchedule: schedule,
		TotalVotes:     total,
		OrphanedVotes:  orphaned,
		Results:        results,
		Winner:         Winner(results),
		Status:         StatusAt(now, schedule.StartDate, schedule.EndDate),
		ComputedAt:     now,
	}
}

// Winner returns the leftmost option with the highest vote count, or nil
// when no option has received a vote.
func Winner(results []models.OptionResult) *models.OptionResult {
	best := -1
	for i, r := range results {
		if r.Votes == 0 {
			continue
		}
		if best < 0 || r.Votes > results[best].Votes {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	w := results[best]
	return &w
}
