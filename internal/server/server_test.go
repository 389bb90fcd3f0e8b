package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/threelines/threelines-cli/internal/aicache"
	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/insight"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/storage"
)

var errTest = errors.New("api unreachable")

func newTestServer(t *testing.T) (*Server, *journal.Store) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	clock := core.ClockAt("2025-06-05")
	store, err := journal.NewStore(backend, clock)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	cache := aicache.New(backend, clock)
	gen := insight.NewMockGenerator("the summary", "the insight")
	insights := insight.NewService(store, cache, gen)
	return New(store, insights, insight.LangEN, clock), store
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestCreateAndGetEntry(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/entries",
		`{"date":"2025-06-03","sentences":["one","two","three"],"weather":"sunny"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created journal.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Date != "2025-06-03" || created.Weather != journal.WeatherSunny {
		t.Errorf("created = %+v", created)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/entries/2025-06-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got journal.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got ID %q, want %q", got.ID, created.ID)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{not json`, http.StatusBadRequest},
		{"bad date", `{"date":"June 3rd","sentences":["a"]}`, http.StatusBadRequest},
		{"bad weather", `{"date":"2025-06-03","sentences":["a"],"weather":"hail"}`, http.StatusBadRequest},
		{"too many sentences", `{"date":"2025-06-03","sentences":["a","b","c","d"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/entries", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUpdateEntryNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPut, "/api/entries/2025-06-03",
		`{"sentences":["x"]}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteEntry(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.AddEntry("2025-06-03", [journal.SentenceCount]string{"a", "", ""}, "", ""); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, http.MethodDelete, "/api/entries/2025-06-03", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if store.HasEntryForDate("2025-06-03") {
		t.Error("entry still present after delete")
	}

	// Deleting an absent date is a no-op.
	rec = doRequest(t, srv, http.MethodDelete, "/api/entries/2025-06-03", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("second delete status = %d", rec.Code)
	}
}

func TestListEntriesByMonth(t *testing.T) {
	srv, store := newTestServer(t)
	for _, date := range []string{"2025-05-31", "2025-06-01", "2025-06-30"} {
		if _, err := store.AddEntry(date, [journal.SentenceCount]string{"a", "", ""}, "", ""); err != nil {
			t.Fatal(err)
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/entries?year=2025&month=6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []journal.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 for June", len(entries))
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/entries?year=2025&month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("month=13 status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list-all status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want all 3", len(entries))
	}
}

func TestWeekEntries(t *testing.T) {
	srv, store := newTestServer(t)
	for _, date := range []string{"2025-06-02", "2025-06-08", "2025-06-09"} {
		if _, err := store.AddEntry(date, [journal.SentenceCount]string{"a", "", ""}, "", ""); err != nil {
			t.Fatal(err)
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/week/2025-06-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []journal.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 2025-06-02 through 2025-06-08 inclusive.
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 inside the week", len(entries))
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.AddEntry("2025-06-05", [journal.SentenceCount]string{"a", "b", ""}, "", ""); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats journal.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalDays != 1 || stats.TotalSentences != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.AddEntry("2025-06-03", [journal.SentenceCount]string{"a", "", ""}, "", ""); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/summary/2025-06-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["text"] != "the summary" {
		t.Errorf("text = %q", body["text"])
	}
	if body["weekStart"] != "2025-06-02" {
		t.Errorf("weekStart = %q", body["weekStart"])
	}
}

func TestSummaryEndpointGenerationFailure(t *testing.T) {
	backend := storage.NewMemoryBackend()
	clock := core.ClockAt("2025-06-05")
	store, err := journal.NewStore(backend, clock)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddEntry("2025-06-03", [journal.SentenceCount]string{"a", "", ""}, "", ""); err != nil {
		t.Fatal(err)
	}
	gen := insight.NewMockGenerator("", "")
	gen.Err = errTest
	insights := insight.NewService(store, aicache.New(backend, clock), gen)
	srv := New(store, insights, insight.LangEN, clock)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary/2025-06-02", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestMoodInsightEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.AddEntry("2025-06-03", [journal.SentenceCount]string{"今天很开心", "", ""}, "", ""); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/mood/2025-06-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Text      string `json:"text"`
		Breakdown struct {
			Positive int `json:"positive"`
			Neutral  int `json:"neutral"`
			Negative int `json:"negative"`
		} `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Text != "the insight" {
		t.Errorf("text = %q", body.Text)
	}
	if body.Breakdown.Positive != 100 {
		t.Errorf("breakdown = %+v, want fully positive", body.Breakdown)
	}
}

func TestInsightNotConfigured(t *testing.T) {
	backend := storage.NewMemoryBackend()
	clock := core.ClockAt("2025-06-05")
	store, err := journal.NewStore(backend, clock)
	if err != nil {
		t.Fatal(err)
	}
	srv := New(store, nil, insight.LangEN, clock)

	rec := doRequest(t, srv, http.MethodGet, "/api/mood/2025-06-02", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMoodTrendEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.AddEntry("2025-06-03", [journal.SentenceCount]string{"happy day", "", ""}, "", ""); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/mood-trend", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Days  []map[string]interface{} `json:"days"`
		Stats map[string]interface{}   `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Days) != 1 {
		t.Errorf("days = %d, want 1", len(body.Days))
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/mood-trend?days=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("days=0 status = %d, want 400", rec.Code)
	}
}
