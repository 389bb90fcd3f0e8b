package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/storage"
)

func TestMapCondition(t *testing.T) {
	tests := []struct {
		name string
		code int
		desc string
		want journal.Weather
	}{
		{"thunderstorm", 211, "", journal.WeatherRainy},
		{"drizzle", 301, "", journal.WeatherRainy},
		{"rain", 501, "", journal.WeatherRainy},
		{"snow", 601, "", journal.WeatherSnowy},
		{"mist", 701, "", journal.WeatherCloudy},
		{"clear", 800, "", journal.WeatherSunny},
		{"clouds", 804, "", journal.WeatherCloudy},
		{"unknown code rain desc", 0, "light rain", journal.WeatherRainy},
		{"unknown code sleet desc", 0, "sleet showers", journal.WeatherSnowy},
		{"unknown code fog desc", 0, "dense fog", journal.WeatherCloudy},
		{"unknown code no desc", 0, "", journal.WeatherSunny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapCondition(tt.code, tt.desc); got != tt.want {
				t.Errorf("MapCondition(%d, %q) = %q, want %q", tt.code, tt.desc, got, tt.want)
			}
		})
	}
}

func newTestService(apiKey string, clock core.Clock) (*Service, *storage.MemoryBackend) {
	backend := storage.NewMemoryBackend()
	svc := NewService(apiKey, backend, clock, 40.0, 116.0, false)
	svc.randFn = func() float64 { return 0.95 } // always sunny in tests
	return svc, backend
}

func TestTodayFromAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("appid = %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q", got)
		}
		w.Write([]byte(`{"weather":[{"id":800,"description":"clear sky"}],"main":{"temp":21.6}}`))
	}))
	defer server.Close()

	svc, _ := newTestService("test-key", core.ClockAt("2025-06-05"))
	svc.baseURL = server.URL

	got := svc.Today(context.Background())
	if got.Condition != journal.WeatherSunny {
		t.Errorf("condition = %q, want sunny", got.Condition)
	}
	if got.Temperature != 22 {
		t.Errorf("temperature = %d, want rounded 22", got.Temperature)
	}
	if got.Description != "clear sky" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestTodayUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"weather":[{"id":500,"description":"light rain"}],"main":{"temp":10}}`))
	}))
	defer server.Close()

	svc, _ := newTestService("test-key", core.ClockAt("2025-06-05"))
	svc.baseURL = server.URL

	first := svc.Today(context.Background())
	second := svc.Today(context.Background())
	if first.Condition != journal.WeatherRainy || second.Condition != journal.WeatherRainy {
		t.Errorf("conditions = %q, %q", first.Condition, second.Condition)
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestCacheExpiresAfterWindow(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"weather":[{"id":800,"description":"clear sky"}],"main":{"temp":20}}`))
	}))
	defer server.Close()

	base := core.ClockAt("2025-06-05")
	svc, backend := newTestService("test-key", base)
	svc.baseURL = server.URL
	svc.Today(context.Background())

	// Same day, 31 minutes later: stale.
	later := core.FixedClock{T: base.Now().Add(31 * time.Minute)}
	svc2 := NewService("test-key", backend, later, 40.0, 116.0, false)
	svc2.baseURL = server.URL
	svc2.Today(context.Background())

	if calls != 2 {
		t.Errorf("API called %d times, want 2 after expiry", calls)
	}
}

func TestCacheIgnoredAcrossDays(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"weather":[{"id":800,"description":"clear sky"}],"main":{"temp":20}}`))
	}))
	defer server.Close()

	svc, backend := newTestService("test-key", core.ClockAt("2025-06-05"))
	svc.baseURL = server.URL
	svc.Today(context.Background())

	// Next day, even within thirty minutes of wall time the record is for
	// yesterday.
	svc2 := NewService("test-key", backend, core.ClockAt("2025-06-06"), 40.0, 116.0, false)
	svc2.baseURL = server.URL
	svc2.Today(context.Background())

	if calls != 2 {
		t.Errorf("API called %d times, want 2 across days", calls)
	}
}

func TestTodayFallsBackToSimulation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, _ := newTestService("test-key", core.ClockAt("2025-06-05"))
	svc.baseURL = server.URL

	got := svc.Today(context.Background())
	if !journal.ValidWeather(got.Condition) || got.Condition == "" {
		t.Errorf("simulated condition = %q", got.Condition)
	}
	if got.Temperature < 15 || got.Temperature > 35 {
		t.Errorf("simulated temperature = %d, want 15..35", got.Temperature)
	}
}

func TestMissingKeySimulates(t *testing.T) {
	svc, _ := newTestService("", core.ClockAt("2025-06-05"))
	got := svc.Today(context.Background())
	if !journal.ValidWeather(got.Condition) || got.Condition == "" {
		t.Errorf("condition = %q", got.Condition)
	}
}

func TestSimulationNightSkewsCloudy(t *testing.T) {
	backend := storage.NewMemoryBackend()
	night := core.FixedClock{T: time.Date(2025, 6, 5, 23, 0, 0, 0, time.UTC)}
	svc := NewService("", backend, night, 40.0, 116.0, false)
	svc.randFn = func() float64 { return 0.65 } // sunny by day, cloudy at night

	got := svc.Current(context.Background())
	if got.Condition != journal.WeatherCloudy {
		t.Errorf("night condition = %q, want cloudy", got.Condition)
	}
}

func TestCorruptCacheTreatedAsMiss(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"weather":[{"id":800,"description":"clear sky"}],"main":{"temp":20}}`))
	}))
	defer server.Close()

	svc, backend := newTestService("test-key", core.ClockAt("2025-06-05"))
	svc.baseURL = server.URL
	backend.Set(core.WeatherCacheKey, []byte("{not json"))

	svc.Today(context.Background())
	if calls != 1 {
		t.Errorf("API called %d times, want 1 (corrupt cache is a miss)", calls)
	}
}
