package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/qoweh/knut4/config"

	"go.uber.org/zap"
)

// MenuSuggestion is one candidate menu with its reason, before any filtering.
type MenuSuggestion struct {
	Menu   string
	Reason string
}

// StructuredMenuPlace is a menu candidate with up to two generator-selected
// place names, used only to bias place ordering.
type StructuredMenuPlace struct {
	Menu   string
	Places []string
	Reason string
}

// LlmClient abstracts the text-generation backend. SuggestMenus never fails:
// any backend problem collapses into a deterministic fallback list sized to
// max. SuggestMenusWithPlaces is best effort and may return an error the
// caller is expected to ignore and continue without associations.
type LlmClient interface {
	SuggestMenus(ctx context.Context, moods []string, weather string, budget int, lat, lon float64, nearbyPlaceNames []string, max int) []MenuSuggestion
	SuggestMenusWithPlaces(ctx context.Context, moods []string, weather string, budget int, lat, lon float64, placeSamplesJSON string, menuMax int) ([]StructuredMenuPlace, error)
}

// NewLlmClient selects the generator implementation configured at startup.
func NewLlmClient(cfg *config.AppConfig) LlmClient {
	if cfg.LLMMode == "http" {
		return NewHTTPLlmClient(cfg.LLMBaseURL, cfg.LLMModel)
	}
	return &StubLlmClient{}
}

const (
	simpleTimeout     = 15 * time.Second
	structuredTimeout = 25 * time.Second

	defaultReason = "추천"
	maxMenuRunes  = 40
	maxPlaceNames = 2
)

// HTTPLlmClient talks to an OpenAI-compatible /chat/completions endpoint
// (e.g. a GPT4All sidecar).
type HTTPLlmClient struct {
	client  *http.Client
	baseURL string
	model   string
}

func NewHTTPLlmClient(baseURL, model string) *HTTPLlmClient {
	if model == "" {
		model = "gpt4all"
	}
	return &HTTPLlmClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

func (h *HTTPLlmClient) SuggestMenus(ctx context.Context, moods []string, weather string, budget int, lat, lon float64, nearbyPlaceNames []string, max int) []MenuSuggestion {
	prompt := buildSimplePrompt(moods, weather, budget, lat, lon, nearbyPlaceNames, max)

	content, err := h.complete(ctx, prompt, 256, simpleTimeout)
	if err != nil {
		zap.L().Warn("llm simple completion failed, using fallback", zap.Error(err))
		return fallbackSuggestions(moods, weather, max)
	}

	out := parseMenuLines(content, max)
	if len(out) == 0 {
		return fallbackSuggestions(moods, weather, max)
	}
	return out
}

func (h *HTTPLlmClient) SuggestMenusWithPlaces(ctx context.Context, moods []string, weather string, budget int, lat, lon float64, placeSamplesJSON string, menuMax int) ([]StructuredMenuPlace, error) {
	prompt := buildStructuredPrompt(moods, weather, budget, lat, lon, placeSamplesJSON, menuMax)

	content, err := h.complete(ctx, prompt, 512, structuredTimeout)
	if err != nil {
		return nil, fmt.Errorf("structured completion: %w", err)
	}

	out := parseStructuredContent(content, menuMax)
	if len(out) == 0 {
		return nil, fmt.Errorf("structured completion yielded no usable entries")
	}
	return out, nil
}

func (h *HTTPLlmClient) complete(ctx context.Context, prompt string, maxTokens int, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := chatRequest{
		Model:       h.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm backend returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm response has no choices")
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		content = parsed.Choices[0].Text
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("llm response content empty")
	}
	return content, nil
}

func buildSimplePrompt(moods []string, weather string, budget int, lat, lon float64, nearby []string, max int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a Korean food menu recommender. Return up to %d distinct menu items with a short Korean reason.\n", max)
	sb.WriteString("Output format: one item per line: 메뉴명 | 이유. No numbering.\n")
	fmt.Fprintf(&sb, "Moods: %s\n", strings.Join(moods, ","))
	fmt.Fprintf(&sb, "Weather: %s\n", weather)
	fmt.Fprintf(&sb, "Budget: %d\n", budget)
	fmt.Fprintf(&sb, "Location: %f,%f\n", lat, lon)
	fmt.Fprintf(&sb, "Nearby place cues: %s", strings.Join(nearby, ","))
	return sb.String()
}

func buildStructuredPrompt(moods []string, weather string, budget int, lat, lon float64, placeSamplesJSON string, max int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a Korean food menu recommender. Pick up to %d menus and, for each, up to 2 matching places from the given nearby place list.\n", max)
	sb.WriteString(`Respond with a single JSON array only, no prose, matching: [{"menu":"...","reason":"...","places":[{"name":"..."}]}]` + "\n")
	fmt.Fprintf(&sb, "Moods: %s\n", strings.Join(moods, ","))
	fmt.Fprintf(&sb, "Weather: %s\n", weather)
	fmt.Fprintf(&sb, "Budget: %d\n", budget)
	fmt.Fprintf(&sb, "Location: %f,%f\n", lat, lon)
	fmt.Fprintf(&sb, "Nearby places: %s", placeSamplesJSON)
	return sb.String()
}

var linePrefixPattern = regexp.MustCompile(`^[-*•0-9.)\s]+`)

// parseMenuLines parses "menu | reason"-style lines. Leading bullets and
// numbering are stripped, blank menu names skipped, menu names truncated to 40
// runes. Parsing stops once max items are collected and never panics on
// malformed input.
func parseMenuLines(content string, max int) []MenuSuggestion {
	var out []MenuSuggestion
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		trimmed = linePrefixPattern.ReplaceAllString(trimmed, "")

		segments := strings.Split(trimmed, "|")
		menu := truncateRunes(strings.TrimSpace(segments[0]), maxMenuRunes)
		if menu == "" {
			continue
		}
		reason := defaultReason
		if len(segments) > 1 {
			if r := strings.TrimSpace(segments[len(segments)-1]); r != "" {
				reason = r
			}
		}
		out = append(out, MenuSuggestion{Menu: menu, Reason: reason})
		if len(out) >= max {
			break
		}
	}
	return out
}

type structuredEntry struct {
	Menu   string `json:"menu"`
	Reason string `json:"reason"`
	Places []struct {
		Name string `json:"name"`
	} `json:"places"`
}

// parseStructuredContent extracts a JSON array even when the model wrapped it
// in prose (first '[' to last ']'), then falls back to line-oriented parsing
// when JSON yields nothing usable.
func parseStructuredContent(content string, max int) []StructuredMenuPlace {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		var entries []structuredEntry
		if err := json.Unmarshal([]byte(content[start:end+1]), &entries); err == nil {
			var out []StructuredMenuPlace
			for _, e := range entries {
				menu := strings.TrimSpace(e.Menu)
				if menu == "" {
					continue
				}
				reason := strings.TrimSpace(e.Reason)
				if reason == "" {
					reason = defaultReason
				}
				var places []string
				for _, p := range e.Places {
					name := strings.TrimSpace(p.Name)
					if name == "" {
						continue
					}
					places = append(places, name)
					if len(places) >= maxPlaceNames {
						break
					}
				}
				out = append(out, StructuredMenuPlace{Menu: menu, Places: places, Reason: reason})
				if len(out) >= max {
					break
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return parseMenuPlaceLines(content, max)
}

// parseMenuPlaceLines handles the line fallback for structured mode:
// "menu | placeA,placeB | reason" with both trailing segments optional.
func parseMenuPlaceLines(content string, max int) []StructuredMenuPlace {
	var out []StructuredMenuPlace
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		trimmed = linePrefixPattern.ReplaceAllString(trimmed, "")

		segments := strings.Split(trimmed, "|")
		menu := strings.TrimSpace(segments[0])
		if menu == "" {
			continue
		}
		var places []string
		if len(segments) > 1 {
			for _, name := range strings.Split(segments[1], ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				places = append(places, name)
				if len(places) >= maxPlaceNames {
					break
				}
			}
		}
		reason := defaultReason
		if len(segments) > 2 {
			if r := strings.TrimSpace(segments[2]); r != "" {
				reason = r
			}
		}
		out = append(out, StructuredMenuPlace{Menu: menu, Places: places, Reason: reason})
		if len(out) >= max {
			break
		}
	}
	return out
}

// fallbackSuggestions guarantees a non-empty candidate set when the backend is
// unavailable: the first mood tag (or a generic default) repeated with an
// index suffix.
func fallbackSuggestions(moods []string, weather string, max int) []MenuSuggestion {
	seed := "기본"
	if len(moods) > 0 && strings.TrimSpace(moods[0]) != "" {
		seed = strings.TrimSpace(moods[0])
	}
	out := make([]MenuSuggestion, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, MenuSuggestion{
			Menu:   fmt.Sprintf("%s메뉴%d", seed, i+1),
			Reason: fmt.Sprintf("%s 날씨 기본", weather),
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
