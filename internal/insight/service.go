package insight

import (
	"context"

	"github.com/threelines/threelines-cli/internal/aicache"
	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/journal"
)

// Service produces weekly summaries and mood insights: it slices the week's
// entries from the store, probes the cache, and only on a miss calls the
// external generator, caching successful results.
//
// Two racing generations for the same week are benign: identical inputs
// produce interchangeable artifacts, so the last Put wins.
type Service struct {
	store     *journal.Store
	cache     *aicache.Cache
	generator Generator

	// offlineFallback substitutes a deterministic local text when the
	// generator fails. Explicit opt-in; the default surfaces the failure.
	offlineFallback bool
}

// Option configures a Service.
type Option func(*Service)

// WithOfflineFallback makes failed generations return the deterministic
// local fallback text instead of an error. Fallback text is never cached.
func WithOfflineFallback() Option {
	return func(s *Service) { s.offlineFallback = true }
}

// NewService wires the store, cache and generator together.
func NewService(store *journal.Store, cache *aicache.Cache, generator Generator, opts ...Option) *Service {
	s := &Service{store: store, cache: cache, generator: generator}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WeeklySummary returns the AI summary for the week starting at weekStart
// (YYYY-MM-DD), serving from cache when fresh.
func (s *Service) WeeklySummary(ctx context.Context, weekStart string, lang Lang) (string, error) {
	return s.artifact(ctx, aicache.ArtifactSummary, weekStart, lang)
}

// MoodInsight returns the AI mood insight for the week starting at
// weekStart, serving from cache when fresh.
func (s *Service) MoodInsight(ctx context.Context, weekStart string, lang Lang) (string, error) {
	return s.artifact(ctx, aicache.ArtifactMood, weekStart, lang)
}

func (s *Service) artifact(ctx context.Context, artifact aicache.ArtifactType, weekStart string, lang Lang) (string, error) {
	entries, err := s.store.EntriesForWeek(weekStart)
	if err != nil {
		return "", err
	}

	// An empty week never reaches the generator (or the cache).
	if len(entries) == 0 {
		if artifact == aicache.ArtifactMood {
			return emptyWeekInsight(lang), nil
		}
		return emptyWeekSummary(lang), nil
	}

	if value, ok := s.cache.Get(artifact, weekStart, entries); ok {
		return value, nil
	}

	value, genErr := s.generate(ctx, artifact, entries, lang)
	if genErr != nil {
		if s.offlineFallback {
			if artifact == aicache.ArtifactMood {
				return fallbackInsight(lang), nil
			}
			return fallbackSummary(entries, lang), nil
		}
		return "", &GenerationFailedError{Artifact: string(artifact), Reason: genErr.Error(), Err: genErr}
	}

	// Failed generations are never cached; successful ones always are.
	if err := s.cache.Put(artifact, weekStart, value, entries); err != nil {
		core.Eprint("[Insight] cache write failed: "+err.Error(), true)
	}
	return value, nil
}

// Regenerate bypasses the cache, calls the generator, and replaces the
// cached artifact on success.
func (s *Service) Regenerate(ctx context.Context, artifact aicache.ArtifactType, weekStart string, lang Lang) (string, error) {
	entries, err := s.store.EntriesForWeek(weekStart)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		if artifact == aicache.ArtifactMood {
			return emptyWeekInsight(lang), nil
		}
		return emptyWeekSummary(lang), nil
	}

	value, genErr := s.generate(ctx, artifact, entries, lang)
	if genErr != nil {
		return "", &GenerationFailedError{Artifact: string(artifact), Reason: genErr.Error(), Err: genErr}
	}
	if err := s.cache.Put(artifact, weekStart, value, entries); err != nil {
		core.Eprint("[Insight] cache write failed: "+err.Error(), true)
	}
	return value, nil
}

func (s *Service) generate(ctx context.Context, artifact aicache.ArtifactType, entries []journal.Entry, lang Lang) (string, error) {
	if artifact == aicache.ArtifactMood {
		return s.generator.GenerateMoodInsight(ctx, entries, lang)
	}
	return s.generator.GenerateWeeklySummary(ctx, entries, lang)
}
