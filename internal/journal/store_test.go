package journal

import (
	"errors"
	"testing"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/storage"
)

func newTestStore(t *testing.T, today string) (*Store, *storage.MemoryBackend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	store, err := NewStore(backend, core.ClockAt(today))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store, backend
}

func TestAddEntryUpsert(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-05")

	first, err := store.AddEntry("2024-06-05", [3]string{"went hiking", "tired but happy", "pace yourself"}, "", "")
	if err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	second, err := store.AddEntry("2024-06-05", [3]string{"stayed in", "calm", "rest matters"}, "", WeatherRainy)
	if err != nil {
		t.Fatalf("second AddEntry failed: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry after upsert, got %d", len(entries))
	}
	if entries[0].Sentences != second.Sentences {
		t.Errorf("expected second call's content to win, got %v", entries[0].Sentences)
	}
	if entries[0].Weather != WeatherRainy {
		t.Errorf("expected weather from second call, got %q", entries[0].Weather)
	}
	if entries[0].ID == first.ID {
		t.Error("replacement entry should carry a fresh id")
	}
}

func TestAddEntryValidation(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-05")

	tests := []struct {
		name    string
		date    string
		weather Weather
	}{
		{"bad date format", "06/05/2024", ""},
		{"not a date", "someday", ""},
		{"unknown weather", "2024-06-05", Weather("hail")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddEntry(tt.date, [3]string{}, "", tt.weather)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
			if len(store.Entries()) != 0 {
				t.Error("state mutated despite validation failure")
			}
		})
	}
}

func TestUpdateEntry(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-05")

	if _, err := store.UpdateEntry("2024-06-05", [3]string{"x", "", ""}, "", ""); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("UpdateEntry on absent date = %v, want ErrEntryNotFound", err)
	}

	created, err := store.AddEntry("2024-06-05", [3]string{"a", "b", "c"}, "img-data", WeatherSunny)
	if err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	updated, err := store.UpdateEntry("2024-06-05", [3]string{"a2", "b2", ""}, "", "")
	if err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}

	if updated.ID != created.ID {
		t.Error("update must keep the entry id")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update must keep createdAt")
	}
	if updated.Image != "img-data" || updated.Weather != WeatherSunny {
		t.Error("omitted image/weather must be preserved")
	}
	if updated.Sentences != [3]string{"a2", "b2", ""} {
		t.Errorf("sentences not overwritten: %v", updated.Sentences)
	}

	// Provided image/weather replace the old ones.
	updated, err = store.UpdateEntry("2024-06-05", updated.Sentences, "new-img", WeatherSnowy)
	if err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}
	if updated.Image != "new-img" || updated.Weather != WeatherSnowy {
		t.Error("provided image/weather must overwrite")
	}
}

func TestGetEntryAndHasEntryForDate(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-05")

	if _, ok := store.GetEntry("2024-06-05"); ok {
		t.Error("GetEntry on empty store should report absent")
	}
	if store.HasEntryForDate("2024-06-05") {
		t.Error("HasEntryForDate on empty store should be false")
	}

	if _, err := store.AddEntry("2024-06-05", [3]string{"a", "", ""}, "", ""); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	entry, ok := store.GetEntry("2024-06-05")
	if !ok {
		t.Fatal("GetEntry should find the stored entry")
	}
	if len(entry.Sentences) != SentenceCount {
		t.Errorf("sentence arity = %d, want %d", len(entry.Sentences), SentenceCount)
	}
	if !store.HasEntryForDate("2024-06-05") {
		t.Error("HasEntryForDate should be true")
	}
}

func TestEntryImmutability(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-05")
	if _, err := store.AddEntry("2024-06-05", [3]string{"a", "b", "c"}, "", ""); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	entry, _ := store.GetEntry("2024-06-05")
	entry.Sentences[0] = "mutated"

	again, _ := store.GetEntry("2024-06-05")
	if again.Sentences[0] != "a" {
		t.Error("mutating a returned entry must not affect store state")
	}
}

func TestEntriesForMonth(t *testing.T) {
	store, _ := newTestStore(t, "2024-07-01")
	for _, date := range []string{"2024-06-30", "2024-06-02", "2024-06-15", "2024-07-01", "2024-05-31"} {
		if _, err := store.AddEntry(date, [3]string{"x", "", ""}, "", ""); err != nil {
			t.Fatalf("AddEntry(%s) failed: %v", date, err)
		}
	}

	entries, err := store.EntriesForMonth(2024, 6)
	if err != nil {
		t.Fatalf("EntriesForMonth failed: %v", err)
	}
	want := []string{"2024-06-02", "2024-06-15", "2024-06-30"}
	if len(entries) != len(want) {
		t.Fatalf("EntriesForMonth returned %d entries, want %d", len(entries), len(want))
	}
	for i, date := range want {
		if entries[i].Date != date {
			t.Errorf("entries[%d].Date = %s, want %s (sorted)", i, entries[i].Date, date)
		}
	}

	if _, err := store.EntriesForMonth(2024, 13); err == nil {
		t.Error("EntriesForMonth should reject month 13")
	}
}

func TestEntriesForWeek(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-10")
	for _, date := range []string{"2024-06-02", "2024-06-03", "2024-06-09", "2024-06-10"} {
		if _, err := store.AddEntry(date, [3]string{"x", "", ""}, "", ""); err != nil {
			t.Fatalf("AddEntry(%s) failed: %v", date, err)
		}
	}

	entries, err := store.EntriesForWeek("2024-06-03")
	if err != nil {
		t.Fatalf("EntriesForWeek failed: %v", err)
	}
	// Window is [06-03, 06-09] inclusive.
	want := []string{"2024-06-03", "2024-06-09"}
	if len(entries) != len(want) {
		t.Fatalf("EntriesForWeek returned %d entries, want %d", len(entries), len(want))
	}
	for i, date := range want {
		if entries[i].Date != date {
			t.Errorf("entries[%d].Date = %s, want %s", i, entries[i].Date, date)
		}
	}

	if _, err := store.EntriesForWeek("bogus"); err == nil {
		t.Error("EntriesForWeek should reject malformed start date")
	}
}

func TestDeleteEntry(t *testing.T) {
	store, _ := newTestStore(t, "2024-06-05")
	if _, err := store.AddEntry("2024-06-05", [3]string{"x", "", ""}, "", ""); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	if err := store.DeleteEntry("2024-06-05"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if _, ok := store.GetEntry("2024-06-05"); ok {
		t.Error("entry still present after delete")
	}
	if store.HasEntryForDate("2024-06-05") {
		t.Error("HasEntryForDate should be false after delete")
	}

	// Absent date is a no-op.
	if err := store.DeleteEntry("2024-06-05"); err != nil {
		t.Errorf("DeleteEntry of absent date = %v, want nil", err)
	}
}

func TestDeleteAllEntries(t *testing.T) {
	store, backend := newTestStore(t, "2024-06-05")
	for _, date := range []string{"2024-06-03", "2024-06-04", "2024-06-05"} {
		if _, err := store.AddEntry(date, [3]string{"x", "", ""}, "", ""); err != nil {
			t.Fatalf("AddEntry(%s) failed: %v", date, err)
		}
	}

	if err := store.DeleteAllEntries(); err != nil {
		t.Fatalf("DeleteAllEntries failed: %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Error("entries remain after DeleteAllEntries")
	}

	// The cleared collection survives a reload.
	reloaded, err := NewStore(backend, core.ClockAt("2024-06-05"))
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded.Entries()) != 0 {
		t.Error("cleared collection came back after reload")
	}
}

func TestStorePersistenceRoundTrip(t *testing.T) {
	store, backend := newTestStore(t, "2024-06-05")
	if _, err := store.AddEntry("2024-06-05", [3]string{"a", "b", "c"}, "photo", WeatherCloudy); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	reloaded, err := NewStore(backend, core.ClockAt("2024-06-05"))
	if err != nil {
		t.Fatalf("NewStore reload failed: %v", err)
	}

	entry, ok := reloaded.GetEntry("2024-06-05")
	if !ok {
		t.Fatal("entry lost across reload")
	}
	if entry.Sentences != [3]string{"a", "b", "c"} || entry.Image != "photo" || entry.Weather != WeatherCloudy {
		t.Errorf("reloaded entry differs: %+v", entry)
	}
}

// failingBackend fails every Set to exercise the persist-before-commit policy.
type failingBackend struct {
	*storage.MemoryBackend
}

func (b *failingBackend) Set(key string, value []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	backend := &failingBackend{storage.NewMemoryBackend()}
	store, err := NewStore(backend, core.ClockAt("2024-06-05"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	_, err = store.AddEntry("2024-06-05", [3]string{"x", "", ""}, "", "")
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Error("in-memory state advanced past a failed persist")
	}
}
