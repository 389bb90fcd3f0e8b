package insight

import (
	"context"
	"fmt"

	"github.com/threelines/threelines-cli/internal/journal"
)

// MockGenerator is an in-memory fake suitable for deterministic unit tests.
// It records every call and can be made to fail on demand.
type MockGenerator struct {
	SummaryText string
	InsightText string
	Err         error

	SummaryCalls int
	InsightCalls int
	LastEntries  []journal.Entry
	LastLang     Lang
}

// NewMockGenerator creates a mock returning canned texts.
func NewMockGenerator(summary, insight string) *MockGenerator {
	return &MockGenerator{SummaryText: summary, InsightText: insight}
}

func (m *MockGenerator) GenerateWeeklySummary(ctx context.Context, entries []journal.Entry, lang Lang) (string, error) {
	m.SummaryCalls++
	m.LastEntries = entries
	m.LastLang = lang
	if m.Err != nil {
		return "", m.Err
	}
	if m.SummaryText != "" {
		return m.SummaryText, nil
	}
	return fmt.Sprintf("summary of %d entries", len(entries)), nil
}

func (m *MockGenerator) GenerateMoodInsight(ctx context.Context, entries []journal.Entry, lang Lang) (string, error) {
	m.InsightCalls++
	m.LastEntries = entries
	m.LastLang = lang
	if m.Err != nil {
		return "", m.Err
	}
	if m.InsightText != "" {
		return m.InsightText, nil
	}
	return fmt.Sprintf("insight over %d entries", len(entries)), nil
}
