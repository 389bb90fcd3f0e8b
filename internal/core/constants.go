// Package core provides shared constants and configuration for the
// threelines diary CLI.
package core

import (
	"os"
	"path/filepath"
	"time"
)

// External service configuration
const (
	GeminiAPIBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	GeminiModel        = "gemini-2.0-flash-exp"
	GeminiAPIKeyEnvVar = "GEMINI_API_KEY"

	OpenWeatherAPIBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	OpenWeatherKeyEnvVar  = "OPENWEATHER_API_KEY"
)

// Local configuration
const (
	DataDirEnvVar = "THREELINES_DATA_DIR"
	LangEnvVar    = "THREELINES_LANG"
)

// Date formats
const (
	DateFmt     = "2006-01-02"
	DatetimeFmt = "2006-01-02 15:04:05"
)

// Durable storage keys. The entry collection lives under a single fixed
// key; AI artifacts use one key per (artifact type, period) pair.
const (
	JournalStorageKey  = "journal-storage"
	AICacheKeyPrefix   = "ai_"
	WeatherCacheKey    = "weather_cache"
)

// Staleness windows
const (
	AICacheTTL      = 24 * time.Hour
	WeatherCacheTTL = 30 * time.Minute
)

// DefaultLang is the prompt/fallback language used when neither the flag
// nor THREELINES_LANG selects one.
var DefaultLang = "en"

func init() {
	if lang := os.Getenv(LangEnvVar); lang == "zh" || lang == "en" {
		DefaultLang = lang
	}
}

// DataRoot returns the default durable storage directory.
func DataRoot() string {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".threelines")
}

// Version is the current CLI version.
const Version = "0.3.0"
