// Package server exposes the diary over a local HTTP API, mirroring the
// CLI operations for use by a frontend or scripts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/insight"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/mood"
)

// Server wires the journal store and insight service behind a chi router.
type Server struct {
	store    *journal.Store
	insights *insight.Service
	lang     insight.Lang
	clock    core.Clock
}

// New builds a Server. The insight service may be nil, in which case the
// summary and mood-insight endpoints report 503.
func New(store *journal.Store, insights *insight.Service, lang insight.Lang, clock core.Clock) *Server {
	return &Server{store: store, insights: insights, lang: lang, clock: clock}
}

// Router assembles the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/entries", s.handleListEntries)
		r.Post("/entries", s.handleCreateEntry)
		r.Get("/entries/{date}", s.handleGetEntry)
		r.Put("/entries/{date}", s.handleUpdateEntry)
		r.Delete("/entries/{date}", s.handleDeleteEntry)
		r.Get("/week/{start}", s.handleWeekEntries)
		r.Get("/stats", s.handleStats)
		r.Get("/summary/{weekStart}", s.handleSummary)
		r.Get("/mood/{weekStart}", s.handleMoodInsight)
		r.Get("/mood-trend", s.handleMoodTrend)
	})
	return r
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": core.Version})
}

type entryRequest struct {
	Date      string   `json:"date"`
	Sentences []string `json:"sentences"`
	Image     string   `json:"image"`
	Weather   string   `json:"weather"`
}

func (req entryRequest) sentenceArray() ([journal.SentenceCount]string, error) {
	var out [journal.SentenceCount]string
	if len(req.Sentences) > journal.SentenceCount {
		return out, fmt.Errorf("at most %d sentences", journal.SentenceCount)
	}
	copy(out[:], req.Sentences)
	return out, nil
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	sentences, err := req.sentenceArray()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.store.AddEntry(req.Date, sentences, req.Image, journal.Weather(req.Weather))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	entry, ok := s.store.GetEntry(date)
	if !ok {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	sentences, err := req.sentenceArray()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.store.UpdateEntry(date, sentences, req.Image, journal.Weather(req.Weather))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := s.store.DeleteEntry(date); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEntries returns all entries, or one month's when year and month
// query params are given.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")

	if yearStr == "" && monthStr == "" {
		writeJSON(w, http.StatusOK, s.store.Entries())
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}

	entries, err := s.store.EntriesForMonth(year, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleWeekEntries(w http.ResponseWriter, r *http.Request) {
	start := chi.URLParam(r, "start")
	entries, err := s.store.EntriesForWeek(start)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.handleInsight(w, r, func(ctx context.Context, weekStart string) (string, error) {
		return s.insights.WeeklySummary(ctx, weekStart, s.lang)
	})
}

// handleMoodInsight pairs the AI text with the locally computed weekly
// percentage breakdown.
func (s *Server) handleMoodInsight(w http.ResponseWriter, r *http.Request) {
	if s.insights == nil {
		http.Error(w, "AI generation not configured", http.StatusServiceUnavailable)
		return
	}
	weekStart := chi.URLParam(r, "weekStart")
	text, err := s.insights.MoodInsight(r.Context(), weekStart, s.lang)
	if err != nil {
		s.writeInsightError(w, err)
		return
	}
	entries, err := s.store.EntriesForWeek(weekStart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weekStart": weekStart,
		"text":      text,
		"breakdown": mood.WeekBreakdown(entries),
	})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (string, error)) {
	if s.insights == nil {
		http.Error(w, "AI generation not configured", http.StatusServiceUnavailable)
		return
	}
	weekStart := chi.URLParam(r, "weekStart")
	text, err := fn(r.Context(), weekStart)
	if err != nil {
		s.writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"weekStart": weekStart, "text": text})
}

func (s *Server) writeInsightError(w http.ResponseWriter, err error) {
	var genErr *insight.GenerationFailedError
	if errors.As(err, &genErr) {
		http.Error(w, genErr.Error(), http.StatusBadGateway)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// handleMoodTrend scores recent entries locally. The optional days param
// bounds the window (default 30).
func (s *Server) handleMoodTrend(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "Invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}

	trend := mood.AnalyzeTrend(s.store.Entries(), days)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":  trend,
		"stats": mood.Summarize(trend),
	})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var valErr *journal.ValidationError
	switch {
	case errors.Is(err, journal.ErrEntryNotFound):
		http.Error(w, "Entry not found", http.StatusNotFound)
	case errors.As(err, &valErr):
		http.Error(w, valErr.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
