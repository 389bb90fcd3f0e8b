// Package cli implements the command-line interface for the threelines diary.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/threelines/threelines-cli/internal/aicache"
	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/insight"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/storage"
)

// Global flags
var (
	verbose  bool
	quiet    bool
	jsonOut  bool
	offline  bool
	langFlag string
	dataDir  string
	dbPath   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "threelines",
	Short:   "threelines – a three-sentence diary in your terminal",
	Long:    `Record each day in exactly three sentences, track your streaks, and let AI summarize your weeks.`,
	Version: core.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress messages")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of plain text")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use local fallback text when AI generation fails")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", fmt.Sprintf("Language for AI text, zh or en (default: %s)", core.DefaultLang))
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for diary data (default: ~/.threelines)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Store data in a SQLite database at this path instead of JSON files")
}

// openBackend selects the durable store: SQLite when --db is given,
// otherwise per-key JSON files under the data directory. The returned
// closer is a no-op for the filesystem backend.
func openBackend() (storage.Backend, io.Closer, error) {
	if dbPath != "" {
		b, err := storage.NewSQLiteBackend(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	}
	root := dataDir
	if root == "" {
		root = core.DataRoot()
	}
	return storage.NewFilesystemBackend(root), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore() (*journal.Store, io.Closer, error) {
	backend, closer, err := openBackend()
	if err != nil {
		return nil, nil, err
	}
	store, err := journal.NewStore(backend, core.SystemClock{})
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return store, closer, nil
}

// currentLang resolves --lang, falling back to THREELINES_LANG / "en".
func currentLang() insight.Lang {
	switch langFlag {
	case "zh":
		return insight.LangZH
	case "en":
		return insight.LangEN
	}
	if core.DefaultLang == "zh" {
		return insight.LangZH
	}
	return insight.LangEN
}

// newInsightService assembles store → cache → Gemini generator. Requires
// GEMINI_API_KEY unless --offline is set, in which case generation failures
// degrade to deterministic local text.
func newInsightService(store *journal.Store, backend storage.Backend) (*insight.Service, error) {
	apiKey := os.Getenv(core.GeminiAPIKeyEnvVar)
	if apiKey == "" && !offline {
		return nil, fmt.Errorf("%s is not set (use --offline for local fallback text)", core.GeminiAPIKeyEnvVar)
	}

	cache := aicache.New(backend, core.SystemClock{})
	gen := insight.NewGeminiGenerator(apiKey, verbose)
	var opts []insight.Option
	if offline {
		opts = append(opts, insight.WithOfflineFallback())
	}
	return insight.NewService(store, cache, gen, opts...), nil
}
