package journal

import (
	"math"
	"sort"
	"time"

	"github.com/threelines/threelines-cli/internal/core"
)

// completionWindowDays is the trailing window for the completion rate.
const completionWindowDays = 30

// Stats recomputes the derived aggregates from the full collection.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.RUnlock()

	today := core.Today(s.clock)

	totalSentences := 0
	for _, e := range entries {
		totalSentences += e.FilledSentences()
	}

	return Stats{
		TotalDays:      len(entries),
		TotalSentences: totalSentences,
		CurrentStreak:  currentStreak(entries, today),
		LongestStreak:  longestStreak(entries),
		CompletionRate: completionRate(entries, today),
	}
}

// currentStreak walks backward from today one calendar day at a time,
// counting consecutive days with entries. A missing entry for today itself
// is tolerated once (the walk moves to yesterday); any other gap halts.
func currentStreak(entries []Entry, today time.Time) int {
	dates := make(map[string]bool, len(entries))
	for _, e := range entries {
		dates[e.Date] = true
	}

	todayStr := core.FormatDate(today)
	streak := 0
	check := today
	for {
		dateStr := core.FormatDate(check)
		if dates[dateStr] {
			streak++
		} else {
			if dateStr == todayStr {
				check = check.AddDate(0, 0, -1)
				continue
			}
			break
		}
		check = check.AddDate(0, 0, -1)
	}
	return streak
}

// longestStreak scans the dates in descending order; adjacent entries
// exactly one calendar day apart extend the run, anything else resets it
// to 1. Zero entries yield 0.
func longestStreak(entries []Entry) int {
	if len(entries) == 0 {
		return 0
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	longest := 1
	run := 1
	for i := 1; i < len(sorted); i++ {
		prev, err1 := core.ParseDate(sorted[i-1].Date)
		curr, err2 := core.ParseDate(sorted[i].Date)
		if err1 != nil || err2 != nil {
			run = 1
			continue
		}
		if prev.Sub(curr) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// completionRate is the share of the trailing 30-day window ending today
// that has an entry, rounded to the nearest integer percent. At most one
// entry exists per date, so the result stays within [0, 100].
func completionRate(entries []Entry, today time.Time) int {
	windowStart := core.FormatDate(today.AddDate(0, 0, -(completionWindowDays - 1)))
	todayStr := core.FormatDate(today)

	recent := 0
	for _, e := range entries {
		if e.Date >= windowStart && e.Date <= todayStr {
			recent++
		}
	}
	return int(math.Round(float64(recent) / completionWindowDays * 100))
}
