package cli

import (
	"testing"

	"github.com/threelines/threelines-cli/internal/insight"
)

func TestParseMonthArg(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{"valid", "2025-06", 2025, 6, false},
		{"unpadded month", "2025-6", 2025, 6, false},
		{"no separator", "202506", 0, 0, true},
		{"bad year", "abcd-06", 0, 0, true},
		{"bad month", "2025-xx", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := parseMonthArg(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseMonthArg(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && (year != tt.wantYear || month != tt.wantMonth) {
				t.Errorf("parseMonthArg(%q) = %d, %d; want %d, %d", tt.input, year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestCurrentLang(t *testing.T) {
	defer func() { langFlag = "" }()

	langFlag = "zh"
	if got := currentLang(); got != insight.LangZH {
		t.Errorf("currentLang() = %q, want zh", got)
	}
	langFlag = "en"
	if got := currentLang(); got != insight.LangEN {
		t.Errorf("currentLang() = %q, want en", got)
	}
}

func TestRootHasSubcommands(t *testing.T) {
	want := []string{"add", "show", "edit", "delete", "clear", "month", "week", "stats", "summary", "insight", "mood", "weather", "serve", "mcp"}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
