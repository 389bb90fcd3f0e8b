package journal

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/storage"
)

// collectionRecord is the JSON persisted under the journal storage key.
type collectionRecord struct {
	Entries []Entry `json:"entries"`
}

// Store owns the canonical entry collection. Every mutation computes the
// next collection, persists it, and only then replaces the in-memory state,
// so a failed persist leaves the store at the last durable snapshot.
type Store struct {
	backend storage.Backend
	clock   core.Clock

	mu      sync.RWMutex
	entries []Entry
}

// NewStore loads the persisted collection from backend. A missing record
// starts an empty journal; an unreadable one is surfaced rather than
// silently discarded.
func NewStore(backend storage.Backend, clock core.Clock) (*Store, error) {
	if clock == nil {
		clock = core.SystemClock{}
	}
	s := &Store{backend: backend, clock: clock}

	data, err := backend.Get(core.JournalStorageKey)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return s, nil
		}
		return nil, &StorageError{Op: "load", Err: err}
	}

	var record collectionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt journal record: %w", err)
	}
	s.entries = record.Entries
	return s, nil
}

// AddEntry creates the entry for date, replacing any existing entry for the
// same date so the one-entry-per-date invariant holds. Image and weather are
// optional; empty values mean "not recorded".
func (s *Store) AddEntry(date string, sentences [SentenceCount]string, image string, weather Weather) (Entry, error) {
	if err := validateDate(date); err != nil {
		return Entry{}, err
	}
	if !ValidWeather(weather) {
		return Entry{}, &ValidationError{Field: "weather", Reason: fmt.Sprintf("unknown condition %q", weather)}
	}

	now := s.clock.Now()
	entry := Entry{
		ID:        fmt.Sprintf("%s-%d", date, now.UnixMilli()),
		Date:      date,
		Sentences: sentences,
		Image:     image,
		Weather:   weather,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries)+1)
	for _, e := range s.entries {
		if e.Date != date {
			next = append(next, e)
		}
	}
	next = append(next, entry)

	if err := s.commit(next, "add"); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// UpdateEntry overwrites the sentences of the existing entry for date and,
// when provided, its image and weather. Returns ErrEntryNotFound if no entry
// exists for the date.
func (s *Store) UpdateEntry(date string, sentences [SentenceCount]string, image string, weather Weather) (Entry, error) {
	if err := validateDate(date); err != nil {
		return Entry{}, err
	}
	if !ValidWeather(weather) {
		return Entry{}, &ValidationError{Field: "weather", Reason: fmt.Sprintf("unknown condition %q", weather)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.entries {
		if e.Date == date {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Entry{}, ErrEntryNotFound
	}

	next := make([]Entry, len(s.entries))
	copy(next, s.entries)

	updated := next[idx]
	updated.Sentences = sentences
	if image != "" {
		updated.Image = image
	}
	if weather != "" {
		updated.Weather = weather
	}
	updated.UpdatedAt = s.clock.Now()
	next[idx] = updated

	if err := s.commit(next, "update"); err != nil {
		return Entry{}, err
	}
	return updated, nil
}

// GetEntry returns the entry for date, if any. Never errors: absence is
// reported through the boolean.
func (s *Store) GetEntry(date string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.Date == date {
			return e, true
		}
	}
	return Entry{}, false
}

// HasEntryForDate reports whether an entry exists for date.
func (s *Store) HasEntryForDate(date string) bool {
	_, ok := s.GetEntry(date)
	return ok
}

// EntriesForMonth returns the entries of the given 1-indexed calendar
// month, sorted by date.
func (s *Store) EntriesForMonth(year, month int) ([]Entry, error) {
	first, last, err := core.MonthRange(year, month)
	if err != nil {
		return nil, &ValidationError{Field: "month", Reason: err.Error()}
	}
	return s.entriesInRange(core.FormatDate(first), core.FormatDate(last)), nil
}

// EntriesForWeek returns the entries in the inclusive 7-day window starting
// at startDate, sorted by date.
func (s *Store) EntriesForWeek(startDate string) ([]Entry, error) {
	start, err := core.ParseDate(startDate)
	if err != nil {
		return nil, &ValidationError{Field: "startDate", Reason: err.Error()}
	}
	first, last := core.WeekRange(start)
	return s.entriesInRange(core.FormatDate(first), core.FormatDate(last)), nil
}

// entriesInRange filters by the lexicographic [start, end] date window.
// YYYY-MM-DD strings order the same way the calendar does.
func (s *Store) entriesInRange(start, end string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if e.Date >= start && e.Date <= end {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Entries returns a copy of the full collection, sorted by date.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// DeleteEntry removes the entry for date. Deleting an absent date is a no-op.
func (s *Store) DeleteEntry(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries))
	found := false
	for _, e := range s.entries {
		if e.Date == date {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		return nil
	}
	return s.commit(next, "delete")
}

// DeleteAllEntries clears the collection. Irreversible.
func (s *Store) DeleteAllEntries() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(nil, "clear")
}

// commit persists next and, only on success, makes it the live collection.
// Callers must hold the write lock.
func (s *Store) commit(next []Entry, op string) error {
	data, err := json.Marshal(collectionRecord{Entries: next})
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if err := s.backend.Set(core.JournalStorageKey, data); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	s.entries = next
	return nil
}

// validateDate requires a canonical YYYY-MM-DD string.
func validateDate(date string) error {
	parsed, err := core.ParseDate(date)
	if err != nil {
		return &ValidationError{Field: "date", Reason: err.Error()}
	}
	// Reject non-canonical spellings that would break the date-as-key
	// invariant (e.g. 2024-6-05 parsing but comparing differently).
	if core.FormatDate(parsed) != date {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("non-canonical date %q", date)}
	}
	return nil
}
