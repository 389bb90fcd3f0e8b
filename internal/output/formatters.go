// Package output provides output formatting utilities for the threelines CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/mood"
)

// PrintJSON prints a single value as formatted JSON.
func PrintJSON(item interface{}) {
	WriteJSON(os.Stdout, item)
}

// WriteJSON writes a value as indented JSON followed by a newline.
func WriteJSON(w io.Writer, item interface{}) {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// PrintEntry renders one diary entry in plain text.
func PrintEntry(entry journal.Entry) {
	WriteEntry(os.Stdout, entry)
}

// WriteEntry writes a diary entry: the date header with optional weather,
// then the numbered non-empty sentences.
func WriteEntry(w io.Writer, entry journal.Entry) {
	header := entry.Date
	if entry.Weather != "" {
		header += "  [" + string(entry.Weather) + "]"
	}
	if entry.Image != "" {
		header += "  (photo)"
	}
	fmt.Fprintln(w, header)
	for i, s := range entry.Sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}

// WriteEntryList writes entries separated by blank lines.
func WriteEntryList(w io.Writer, entries []journal.Entry) {
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		WriteEntry(w, e)
	}
}

// WriteStats renders journal statistics as an aligned key/value block.
func WriteStats(w io.Writer, stats journal.Stats) {
	fmt.Fprintf(w, "Days recorded:    %d\n", stats.TotalDays)
	fmt.Fprintf(w, "Sentences:        %d\n", stats.TotalSentences)
	fmt.Fprintf(w, "Current streak:   %d\n", stats.CurrentStreak)
	fmt.Fprintf(w, "Longest streak:   %d\n", stats.LongestStreak)
	fmt.Fprintf(w, "30-day completion: %d%%\n", stats.CompletionRate)
}

// WriteMoodTrend renders daily mood rows and the aggregate line.
func WriteMoodTrend(w io.Writer, days []mood.DayMood, stats mood.TrendStats) {
	for _, d := range days {
		fmt.Fprintf(w, "%s  %-8s  +%.2f  =%.2f  -%.2f\n",
			d.Date, d.Dominant, d.Positive, d.Neutral, d.Negative)
	}
	if len(days) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Trend: %s (avg +%.2f / =%.2f / -%.2f)\n",
		stats.Trend, stats.AveragePositive, stats.AverageNeutral, stats.AverageNegative)
}
