// Package journal is the single source of truth for diary entries. All
// reads and writes funnel through the Store; statistics are derived on
// demand from the full collection.
package journal

import (
	"strings"
	"time"
)

// SentenceCount is the fixed arity of an entry's sentences: what happened,
// how it felt, what was learned.
const SentenceCount = 3

// Weather is the categorical weather tag captured at entry creation.
type Weather string

const (
	WeatherSunny  Weather = "sunny"
	WeatherRainy  Weather = "rainy"
	WeatherCloudy Weather = "cloudy"
	WeatherSnowy  Weather = "snowy"
)

// ValidWeather reports whether w is one of the known conditions.
// The empty string means "not recorded" and is always accepted.
func ValidWeather(w Weather) bool {
	switch w {
	case "", WeatherSunny, WeatherRainy, WeatherCloudy, WeatherSnowy:
		return true
	}
	return false
}

// Entry is one diary record for a single calendar date. The date is the
// business key: the store holds at most one entry per date.
//
// Entry is a value type ([SentenceCount]string is an array), so entries
// returned by the store are copies and cannot alias store state.
type Entry struct {
	ID        string                `json:"id"`
	Date      string                `json:"date"` // YYYY-MM-DD
	Sentences [SentenceCount]string `json:"sentences"`
	Image     string                `json:"image,omitempty"` // base64 photo payload
	Weather   Weather               `json:"weather,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// FilledSentences returns the number of non-empty sentences.
func (e Entry) FilledSentences() int {
	n := 0
	for _, s := range e.Sentences {
		if len(strings.TrimSpace(s)) > 0 {
			n++
		}
	}
	return n
}

// Stats are derived aggregates over the full entry collection, recomputed
// fresh on every call to Store.Stats.
type Stats struct {
	TotalDays      int `json:"totalDays"`
	TotalSentences int `json:"totalSentences"`
	CurrentStreak  int `json:"currentStreak"`
	LongestStreak  int `json:"longestStreak"`
	CompletionRate int `json:"completionRate"` // trailing 30 days, percent
}
