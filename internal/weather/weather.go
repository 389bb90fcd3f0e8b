// Package weather resolves today's weather condition for tagging diary
// entries. It queries OpenWeatherMap when a key is configured and degrades
// to a time-seeded simulation when the network or key is unavailable.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/storage"
)

// Report is a simplified weather observation.
type Report struct {
	Condition   journal.Weather `json:"condition"`
	Temperature int             `json:"temperature,omitempty"`
	Description string          `json:"description,omitempty"`
}

// cacheRecord mirrors the stored shape: the report plus when and for which
// day it was observed.
type cacheRecord struct {
	Data      Report `json:"data"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
}

// Service fetches and caches weather reports. Reports are cached per day
// with a short staleness window so repeated `threelines add` invocations in
// one sitting reuse the first lookup.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	backend storage.Backend
	clock   core.Clock
	lat     float64
	lon     float64
	verbose bool

	// randFn is swapped in tests for deterministic simulation.
	randFn func() float64
}

// NewService builds a weather service. An empty apiKey means every lookup
// falls back to simulation.
func NewService(apiKey string, backend storage.Backend, clock core.Clock, lat, lon float64, verbose bool) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: core.OpenWeatherAPIBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		backend: backend,
		clock:   clock,
		lat:     lat,
		lon:     lon,
		verbose: verbose,
		randFn:  rand.Float64,
	}
}

// MapCondition reduces an OpenWeatherMap weather code to the diary's
// four-value condition enum. Unknown codes fall back to keyword matching on
// the description, then to sunny.
func MapCondition(code int, description string) journal.Weather {
	switch {
	case code >= 200 && code < 300:
		return journal.WeatherRainy // thunderstorm
	case code >= 300 && code < 600:
		return journal.WeatherRainy // drizzle and rain
	case code >= 600 && code < 700:
		return journal.WeatherSnowy
	case code >= 700 && code < 800:
		return journal.WeatherCloudy // mist, fog, haze
	case code == 800:
		return journal.WeatherSunny
	case code > 800:
		return journal.WeatherCloudy
	}

	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "rain"), strings.Contains(desc, "drizzle"), strings.Contains(desc, "thunder"):
		return journal.WeatherRainy
	case strings.Contains(desc, "snow"), strings.Contains(desc, "sleet"):
		return journal.WeatherSnowy
	case strings.Contains(desc, "cloud"), strings.Contains(desc, "overcast"),
		strings.Contains(desc, "fog"), strings.Contains(desc, "mist"):
		return journal.WeatherCloudy
	}
	return journal.WeatherSunny
}

// ConditionLabel returns the human label for a condition.
func ConditionLabel(condition journal.Weather, lang string) string {
	if lang == "zh" {
		switch condition {
		case journal.WeatherSunny:
			return "晴朗"
		case journal.WeatherRainy:
			return "下雨"
		case journal.WeatherCloudy:
			return "多云"
		case journal.WeatherSnowy:
			return "下雪"
		}
		return string(condition)
	}
	return string(condition)
}

// Today returns the current day's weather, serving from cache when the
// cached report is from today and under thirty minutes old. API failures
// degrade silently to simulation; only cache writes can error, and those
// are ignored too since weather is best-effort.
func (s *Service) Today(ctx context.Context) Report {
	if cached, ok := s.cachedReport(); ok {
		return cached
	}

	report, err := s.fetch(ctx)
	if err != nil {
		if s.verbose {
			core.Eprint("[Weather] API lookup failed, simulating: "+err.Error(), true)
		}
		report = s.simulate()
	}
	s.cacheReport(report)
	return report
}

// Current bypasses the cache.
func (s *Service) Current(ctx context.Context) Report {
	report, err := s.fetch(ctx)
	if err != nil {
		if s.verbose {
			core.Eprint("[Weather] API lookup failed, simulating: "+err.Error(), true)
		}
		return s.simulate()
	}
	return report
}

type owmResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

func (s *Service) fetch(ctx context.Context) (Report, error) {
	if s.apiKey == "" {
		return Report{}, fmt.Errorf("weather API key not configured")
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%g", s.lat))
	q.Set("lon", fmt.Sprintf("%g", s.lon))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Report{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("weather API error: %d", resp.StatusCode)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Report{}, err
	}
	if len(body.Weather) == 0 {
		return Report{}, fmt.Errorf("weather API returned no conditions")
	}

	return Report{
		Condition:   MapCondition(body.Weather[0].ID, body.Weather[0].Description),
		Temperature: int(math.Round(body.Main.Temp)),
		Description: body.Weather[0].Description,
	}, nil
}

// simulate produces a plausible report when real data is unavailable.
// Nights skew cloudy.
func (s *Service) simulate() Report {
	r := s.randFn()
	var condition journal.Weather
	switch {
	case r < 0.1:
		condition = journal.WeatherSnowy
	case r < 0.3:
		condition = journal.WeatherRainy
	case r < 0.6:
		condition = journal.WeatherCloudy
	default:
		condition = journal.WeatherSunny
	}

	hour := s.clock.Now().Hour()
	if (hour < 6 || hour > 20) && r < 0.7 {
		condition = journal.WeatherCloudy
	}

	return Report{
		Condition:   condition,
		Temperature: int(math.Round(15 + s.randFn()*20)),
		Description: ConditionLabel(condition, "zh"),
	}
}

func (s *Service) cachedReport() (Report, bool) {
	raw, err := s.backend.Get(core.WeatherCacheKey)
	if err != nil {
		return Report{}, false
	}
	var rec cacheRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Report{}, false
	}

	now := s.clock.Now()
	today := now.UTC().Format(core.DateFmt)
	age := now.UnixMilli() - rec.Timestamp
	if rec.Date != today || age < 0 || age >= core.WeatherCacheTTL.Milliseconds() {
		return Report{}, false
	}
	return rec.Data, true
}

func (s *Service) cacheReport(report Report) {
	now := s.clock.Now()
	rec := cacheRecord{
		Data:      report,
		Timestamp: now.UnixMilli(),
		Date:      now.UTC().Format(core.DateFmt),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.backend.Set(core.WeatherCacheKey, raw); err != nil && s.verbose {
		core.Eprint("[Weather] cache write failed: "+err.Error(), true)
	}
}
