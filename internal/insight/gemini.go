package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/journal"
)

const geminiTimeout = 30 * time.Second

// Image budget per request, to stay clear of token limits.
const (
	maxSummaryImages = 3
	maxInsightImages = 2
)

// GeminiGenerator calls the Gemini generateContent endpoint.
type GeminiGenerator struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	verbose    bool
}

// NewGeminiGenerator creates a generator using the given API key.
func NewGeminiGenerator(apiKey string, verbose bool) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:     apiKey,
		baseURL:    core.GeminiAPIBaseURL,
		model:      core.GeminiModel,
		httpClient: &http.Client{Timeout: geminiTimeout},
		verbose:    verbose,
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is either a text part or an inline image part.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateWeeklySummary asks Gemini for a warm weekly recap of the entries.
func (g *GeminiGenerator) GenerateWeeklySummary(ctx context.Context, entries []journal.Entry, lang Lang) (string, error) {
	sorted := sortByDate(entries)
	images := entryImages(sorted, maxSummaryImages)
	prompt := summaryPrompt(sorted, lang, len(images))
	return g.generate(ctx, prompt, images, geminiGenConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	})
}

// GenerateMoodInsight asks Gemini for a short emotional read of the entries.
func (g *GeminiGenerator) GenerateMoodInsight(ctx context.Context, entries []journal.Entry, lang Lang) (string, error) {
	sorted := sortByDate(entries)
	images := entryImages(sorted, maxInsightImages)
	prompt := moodPrompt(sorted, lang, len(images))
	return g.generate(ctx, prompt, images, geminiGenConfig{
		Temperature:     0.8,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 512,
	})
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt string, images []string, cfg geminiGenConfig) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("missing %s", core.GeminiAPIKeyEnvVar)
	}

	parts := []geminiPart{{Text: prompt}}
	for _, image := range images {
		parts = append(parts, imagePart(image))
	}

	reqBody, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: parts}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	core.Eprint(fmt.Sprintf("[Gemini] request model=%s prompt_len=%d images=%d", g.model, len(prompt), len(images)), g.verbose)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response format")
	}

	return strings.TrimSpace(apiResp.Candidates[0].Content.Parts[0].Text), nil
}

var dataURLRe = regexp.MustCompile(`^data:image/([a-z]+);base64,`)

// imagePart converts a stored image payload (a base64 data URL) into the
// inline-data shape Gemini expects.
func imagePart(image string) geminiPart {
	mime := "image/jpeg"
	if m := dataURLRe.FindStringSubmatch(image); m != nil {
		if m[1] == "png" {
			mime = "image/png"
		}
		image = dataURLRe.ReplaceAllString(image, "")
	}
	return geminiPart{InlineData: &geminiInlineData{MimeType: mime, Data: image}}
}

func sortByDate(entries []journal.Entry) []journal.Entry {
	sorted := make([]journal.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	return sorted
}
