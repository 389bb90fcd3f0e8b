package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/insight"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/mood"
)

// mcpCmd starts the MCP server on stdio
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI integration",
	RunE:  handleMCP,
}

func handleMCP(cmd *cobra.Command, args []string) error {
	backend, closer, err := openBackend()
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := journal.NewStore(backend, core.SystemClock{})
	if err != nil {
		return err
	}

	// Insight tools are registered only when generation is configured.
	insights, insightErr := newInsightService(store, backend)
	if insightErr != nil {
		core.Eprint("[MCP] insight tools disabled: "+insightErr.Error(), verbose)
	}

	s := server.NewMCPServer(
		"threelines",
		core.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	registerEntryTools(s, store)
	registerStatsTools(s, store)
	if insightErr == nil {
		registerInsightTools(s, insights)
	}

	return server.ServeStdio(s)
}

func registerEntryTools(s *server.MCPServer, store *journal.Store) {
	addEntry := mcp.NewTool("add_entry",
		mcp.WithDescription("Record a diary entry for a date in up to three sentences. Replaces any existing entry for that date."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Entry date in YYYY-MM-DD format.")),
		mcp.WithString("sentence1", mcp.Required(), mcp.Description("First sentence.")),
		mcp.WithString("sentence2", mcp.Description("Second sentence.")),
		mcp.WithString("sentence3", mcp.Description("Third sentence.")),
		mcp.WithString("weather", mcp.Description("Optional weather condition: sunny, rainy, cloudy, or snowy.")),
	)
	s.AddTool(addEntry, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, dateOk := request.Params.Arguments["date"].(string)
		s1, s1Ok := request.Params.Arguments["sentence1"].(string)
		if !dateOk || date == "" {
			return mcp.NewToolResultError("'date' parameter is required (YYYY-MM-DD)."), nil
		}
		if !s1Ok || s1 == "" {
			return mcp.NewToolResultError("'sentence1' parameter is required and must be non-empty."), nil
		}

		var sentences [journal.SentenceCount]string
		sentences[0] = s1
		if s2, ok := request.Params.Arguments["sentence2"].(string); ok {
			sentences[1] = s2
		}
		if s3, ok := request.Params.Arguments["sentence3"].(string); ok {
			sentences[2] = s3
		}
		weather := ""
		if w, ok := request.Params.Arguments["weather"].(string); ok {
			weather = w
		}

		entry, err := store.AddEntry(date, sentences, "", journal.Weather(weather))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add entry: %v", err)), nil
		}
		return toolJSON(entry)
	})

	getEntry := mcp.NewTool("get_entry",
		mcp.WithDescription("Retrieve the diary entry for a specific date."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Entry date in YYYY-MM-DD format.")),
	)
	s.AddTool(getEntry, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, ok := request.Params.Arguments["date"].(string)
		if !ok || date == "" {
			return mcp.NewToolResultError("'date' parameter is required (YYYY-MM-DD)."), nil
		}
		entry, found := store.GetEntry(date)
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("No entry for %s.", date)), nil
		}
		return toolJSON(entry)
	})

	deleteEntry := mcp.NewTool("delete_entry",
		mcp.WithDescription("Delete the diary entry for a specific date. Deleting an absent date is a no-op."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Entry date in YYYY-MM-DD format.")),
	)
	s.AddTool(deleteEntry, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, ok := request.Params.Arguments["date"].(string)
		if !ok || date == "" {
			return mcp.NewToolResultError("'date' parameter is required (YYYY-MM-DD)."), nil
		}
		if err := store.DeleteEntry(date); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete entry: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted entry for %s (if it existed).", date)), nil
	})

	weekEntries := mcp.NewTool("week_entries",
		mcp.WithDescription("List diary entries for the 7-day window starting at a date."),
		mcp.WithString("start", mcp.Required(), mcp.Description("Week start date in YYYY-MM-DD format.")),
	)
	s.AddTool(weekEntries, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, ok := request.Params.Arguments["start"].(string)
		if !ok || start == "" {
			return mcp.NewToolResultError("'start' parameter is required (YYYY-MM-DD)."), nil
		}
		entries, err := store.EntriesForWeek(start)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list week: %v", err)), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return toolJSON(entries)
	})
}

func registerStatsTools(s *server.MCPServer, store *journal.Store) {
	getStats := mcp.NewTool("get_stats",
		mcp.WithDescription("Get diary statistics: total days, total sentences, current streak, longest streak, and 30-day completion rate."),
	)
	s.AddTool(getStats, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(store.Stats())
	})

	moodTrend := mcp.NewTool("mood_trend",
		mcp.WithDescription("Keyword-based mood trend over the most recent diary entries."),
		mcp.WithNumber("days", mcp.Description("Number of recent days to analyze (default 30).")),
	)
	s.AddTool(moodTrend, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := 30
		if d, ok := request.Params.Arguments["days"].(float64); ok && d >= 1 {
			days = int(d)
		}
		trend := mood.AnalyzeTrend(store.Entries(), days)
		return toolJSON(map[string]interface{}{
			"days":  trend,
			"stats": mood.Summarize(trend),
		})
	})
}

func registerInsightTools(s *server.MCPServer, insights *insight.Service) {
	weeklySummary := mcp.NewTool("weekly_summary",
		mcp.WithDescription("Generate (or fetch from cache) the AI summary of a week's diary entries."),
		mcp.WithString("week_start", mcp.Required(), mcp.Description("Week start date in YYYY-MM-DD format.")),
	)
	s.AddTool(weeklySummary, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		weekStart, ok := request.Params.Arguments["week_start"].(string)
		if !ok || weekStart == "" {
			return mcp.NewToolResultError("'week_start' parameter is required (YYYY-MM-DD)."), nil
		}
		text, err := insights.WeeklySummary(ctx, weekStart, currentLang())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Summary generation failed: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	})

	moodInsight := mcp.NewTool("mood_insight",
		mcp.WithDescription("Generate (or fetch from cache) the AI mood insight for a week's diary entries."),
		mcp.WithString("week_start", mcp.Required(), mcp.Description("Week start date in YYYY-MM-DD format.")),
	)
	s.AddTool(moodInsight, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		weekStart, ok := request.Params.Arguments["week_start"].(string)
		if !ok || weekStart == "" {
			return mcp.NewToolResultError("'week_start' parameter is required (YYYY-MM-DD)."), nil
		}
		text, err := insights.MoodInsight(ctx, weekStart, currentLang())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Insight generation failed: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}

func toolJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
