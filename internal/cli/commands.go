package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/threelines/threelines-cli/internal/aicache"
	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/mood"
	"github.com/threelines/threelines-cli/internal/output"
	"github.com/threelines/threelines-cli/internal/server"
	"github.com/threelines/threelines-cli/internal/weather"
)

func init() {
	// Add all subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(moodCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add command flags
	addCmd.Flags().String("date", "", "Entry date (YYYY-MM-DD, default today)")
	addCmd.Flags().String("image", "", "Attach an image (path or data URL)")
	addCmd.Flags().String("weather", "", "Weather condition (sunny/rainy/cloudy/snowy)")
	addCmd.Flags().Bool("auto-weather", false, "Look up today's weather automatically")

	// Edit command flags
	editCmd.Flags().String("image", "", "Replace the attached image")
	editCmd.Flags().String("weather", "", "Replace the weather condition")

	// Clear command flags
	clearCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	// Summary / insight command flags
	summaryCmd.Flags().Bool("regenerate", false, "Ignore the cache and regenerate")
	insightCmd.Flags().Bool("regenerate", false, "Ignore the cache and regenerate")

	// Mood command flags
	moodCmd.Flags().Int("days", 30, "Number of recent days to analyze")

	// Weather command flags
	weatherCmd.Flags().Float64("lat", 0, "Latitude for the weather lookup")
	weatherCmd.Flags().Float64("lon", 0, "Longitude for the weather lookup")

	// Serve command flags
	serveCmd.Flags().String("addr", ":8747", "Listen address for the HTTP API")
}

var addCmd = &cobra.Command{
	Use:   "add [sentence1] [sentence2] [sentence3]",
	Short: "Record today (or --date) in up to three sentences",
	Args:  cobra.RangeArgs(1, journal.SentenceCount),
	RunE:  handleAdd,
}

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the entry for a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  handleShow,
}

var editCmd = &cobra.Command{
	Use:   "edit [date] [sentence1] [sentence2] [sentence3]",
	Short: "Rewrite an existing entry's sentences",
	Args:  cobra.RangeArgs(2, 1+journal.SentenceCount),
	RunE:  handleEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [date]",
	Short: "Delete the entry for a date",
	Args:  cobra.ExactArgs(1),
	RunE:  handleDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry",
	RunE:  handleClear,
}

var monthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "List entries for a month (default current)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  handleMonth,
}

var weekCmd = &cobra.Command{
	Use:   "week [start-date]",
	Short: "List entries for a week (default the current Monday-start week)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  handleWeek,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streaks and completion statistics",
	RunE:  handleStats,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [week-start]",
	Short: "AI summary of a week (default the current week)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  handleSummary,
}

var insightCmd = &cobra.Command{
	Use:   "insight [week-start]",
	Short: "AI mood insight for a week (default the current week)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  handleInsight,
}

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Local keyword-based mood trend over recent entries",
	RunE:  handleMood,
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show today's weather condition",
	RunE:  handleWeather,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diary over a local HTTP API",
	RunE:  handleServe,
}

func handleAdd(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")
	image, _ := cmd.Flags().GetString("image")
	weatherStr, _ := cmd.Flags().GetString("weather")
	autoWeather, _ := cmd.Flags().GetBool("auto-weather")

	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	if date == "" {
		date = core.FormatDate(core.Today(core.SystemClock{}))
	}

	condition := journal.Weather(weatherStr)
	if autoWeather && condition == "" {
		backend, bcloser, err := openBackend()
		if err == nil {
			svc := weather.NewService(os.Getenv(core.OpenWeatherKeyEnvVar), backend, core.SystemClock{}, 0, 0, verbose)
			condition = svc.Today(cmd.Context()).Condition
			bcloser.Close()
		}
	}

	var sentences [journal.SentenceCount]string
	copy(sentences[:], args)

	entry, err := store.AddEntry(date, sentences, image, condition)
	if err != nil {
		return err
	}

	if jsonOut {
		output.PrintJSON(entry)
		return nil
	}
	core.ProgressPrint(fmt.Sprintf("Recorded %s.", entry.Date), quiet)
	output.PrintEntry(entry)
	return nil
}

func handleShow(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	date := core.FormatDate(core.Today(core.SystemClock{}))
	if len(args) > 0 {
		date = args[0]
	}

	entry, ok := store.GetEntry(date)
	if !ok {
		return fmt.Errorf("no entry for %s", date)
	}
	if jsonOut {
		output.PrintJSON(entry)
		return nil
	}
	output.PrintEntry(entry)
	return nil
}

func handleEdit(cmd *cobra.Command, args []string) error {
	image, _ := cmd.Flags().GetString("image")
	weatherStr, _ := cmd.Flags().GetString("weather")

	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	var sentences [journal.SentenceCount]string
	copy(sentences[:], args[1:])

	entry, err := store.UpdateEntry(args[0], sentences, image, journal.Weather(weatherStr))
	if err != nil {
		return err
	}
	if jsonOut {
		output.PrintJSON(entry)
		return nil
	}
	core.ProgressPrint(fmt.Sprintf("Updated %s.", entry.Date), quiet)
	output.PrintEntry(entry)
	return nil
}

func handleDelete(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := store.DeleteEntry(args[0]); err != nil {
		return err
	}
	core.ProgressPrint(fmt.Sprintf("Deleted %s.", args[0]), quiet)
	return nil
}

func handleClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Print("Delete ALL diary entries? Type 'yes' to confirm: ")
		var answer string
		fmt.Scanln(&answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
			core.ProgressPrint("Aborted.", quiet)
			return nil
		}
	}

	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := store.DeleteAllEntries(); err != nil {
		return err
	}
	core.ProgressPrint("All entries deleted.", quiet)
	return nil
}

func handleMonth(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	now := core.SystemClock{}.Now()
	year, month := now.Year(), int(now.Month())
	if len(args) > 0 {
		year, month, err = parseMonthArg(args[0])
		if err != nil {
			return err
		}
	}

	entries, err := store.EntriesForMonth(year, month)
	if err != nil {
		return err
	}
	if jsonOut {
		output.PrintJSON(entries)
		return nil
	}
	if len(entries) == 0 {
		core.ProgressPrint(fmt.Sprintf("No entries for %04d-%02d.", year, month), quiet)
		return nil
	}
	output.WriteEntryList(os.Stdout, entries)
	return nil
}

func handleWeek(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	start := currentWeekStart()
	if len(args) > 0 {
		start = args[0]
	}

	entries, err := store.EntriesForWeek(start)
	if err != nil {
		return err
	}
	if jsonOut {
		output.PrintJSON(entries)
		return nil
	}
	if len(entries) == 0 {
		core.ProgressPrint(fmt.Sprintf("No entries in the week of %s.", start), quiet)
		return nil
	}
	output.WriteEntryList(os.Stdout, entries)
	return nil
}

func handleStats(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	stats := store.Stats()
	if jsonOut {
		output.PrintJSON(stats)
		return nil
	}
	output.WriteStats(os.Stdout, stats)
	return nil
}

func handleSummary(cmd *cobra.Command, args []string) error {
	return runInsight(cmd, args, aicache.ArtifactSummary)
}

func handleInsight(cmd *cobra.Command, args []string) error {
	return runInsight(cmd, args, aicache.ArtifactMood)
}

func runInsight(cmd *cobra.Command, args []string, artifact aicache.ArtifactType) error {
	regenerate, _ := cmd.Flags().GetBool("regenerate")

	backend, closer, err := openBackend()
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := journal.NewStore(backend, core.SystemClock{})
	if err != nil {
		return err
	}
	svc, err := newInsightService(store, backend)
	if err != nil {
		return err
	}

	weekStart := currentWeekStart()
	if len(args) > 0 {
		weekStart = args[0]
	}

	lang := currentLang()
	core.ProgressPrint(fmt.Sprintf("Generating for the week of %s…", weekStart), quiet)

	var text string
	if regenerate {
		text, err = svc.Regenerate(cmd.Context(), artifact, weekStart, lang)
	} else if artifact == aicache.ArtifactMood {
		text, err = svc.MoodInsight(cmd.Context(), weekStart, lang)
	} else {
		text, err = svc.WeeklySummary(cmd.Context(), weekStart, lang)
	}
	if err != nil {
		return err
	}

	if artifact == aicache.ArtifactMood {
		entries, werr := store.EntriesForWeek(weekStart)
		if werr != nil {
			return werr
		}
		breakdown := mood.WeekBreakdown(entries)
		if jsonOut {
			output.PrintJSON(map[string]interface{}{"weekStart": weekStart, "text": text, "breakdown": breakdown})
			return nil
		}
		fmt.Println(text)
		fmt.Printf("\npositive %d%%  neutral %d%%  negative %d%%\n", breakdown.Positive, breakdown.Neutral, breakdown.Negative)
		return nil
	}

	if jsonOut {
		output.PrintJSON(map[string]string{"weekStart": weekStart, "text": text})
		return nil
	}
	fmt.Println(text)
	return nil
}

func handleMood(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")

	store, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	trend := mood.AnalyzeTrend(store.Entries(), days)
	stats := mood.Summarize(trend)
	if jsonOut {
		output.PrintJSON(map[string]interface{}{"days": trend, "stats": stats})
		return nil
	}
	output.WriteMoodTrend(os.Stdout, trend, stats)
	return nil
}

func handleWeather(cmd *cobra.Command, args []string) error {
	lat, _ := cmd.Flags().GetFloat64("lat")
	lon, _ := cmd.Flags().GetFloat64("lon")

	backend, closer, err := openBackend()
	if err != nil {
		return err
	}
	defer closer.Close()

	svc := weather.NewService(os.Getenv(core.OpenWeatherKeyEnvVar), backend, core.SystemClock{}, lat, lon, verbose)
	report := svc.Today(cmd.Context())

	if jsonOut {
		output.PrintJSON(report)
		return nil
	}
	fmt.Printf("%s", report.Condition)
	if report.Temperature != 0 {
		fmt.Printf("  %d°C", report.Temperature)
	}
	if report.Description != "" {
		fmt.Printf("  (%s)", report.Description)
	}
	fmt.Println()
	return nil
}

func handleServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	backend, closer, err := openBackend()
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := journal.NewStore(backend, core.SystemClock{})
	if err != nil {
		return err
	}

	// The insight endpoints are optional: without an API key the server
	// still serves entries and stats.
	svc, err := newInsightService(store, backend)
	if err != nil {
		core.Eprint(err.Error(), verbose)
		svc = nil
	}

	srv := server.New(store, svc, currentLang(), core.SystemClock{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core.ProgressPrint("Serving on "+addr, quiet)
	if err := srv.ListenAndServe(ctx, addr); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func currentWeekStart() string {
	return core.FormatDate(core.WeekStart(core.DateOnly(core.SystemClock{}.Now())))
}

// parseMonthArg splits a YYYY-MM argument.
func parseMonthArg(arg string) (int, int, error) {
	parts := strings.SplitN(arg, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected YYYY-MM, got %q", arg)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q", arg)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q", arg)
	}
	return year, month, nil
}
