package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/linguachat/linguachat/internal/normalize"
)

const (
	// maxAttempts bounds the retry loop: one initial call plus four retries.
	maxAttempts = 5

	defaultBaseDelay = 1 * time.Second
	jitterWindow     = 100 * time.Millisecond

	defaultModel   = "gemini-2.5-flash-preview-05-20"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	systemPrompt = "You are a helpful translator. Your only job is to provide a JSON response with the requested information."
)

// GeminiConfig configures a GeminiClient. Zero-value fields other than
// APIKey fall back to production defaults; tests override BaseURL,
// BaseDelay and HTTPClient.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	BaseDelay  time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// GeminiClient calls the Gemini generateContent endpoint with a
// structured-response contract so the reply parses deterministically. It
// retries with exponential backoff on any failure and degrades to the
// verbatim input once attempts are exhausted.
type GeminiClient struct {
	apiKey    string
	endpoint  string
	baseDelay time.Duration
	client    *http.Client
	logger    *slog.Logger
}

// NewGeminiClient returns a ready-to-use client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GeminiClient{
		apiKey:    cfg.APIKey,
		endpoint:  fmt.Sprintf("%s/models/%s:generateContent", baseURL, model),
		baseDelay: baseDelay,
		client:    client,
		logger:    logger,
	}
}

// Request/response shapes for the generateContent endpoint. The response
// schema instructs the model to emit exactly the two named string fields.

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type schemaProperty struct {
	Type string `json:"type"`
}

type responseSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   responseSchema `json:"responseSchema"`
}

type generateRequest struct {
	Contents          []generateContent `json:"contents"`
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

type translationPayload struct {
	CommonText     string `json:"commonText"`
	TranslatedText string `json:"translatedText"`
}

// Translate converts text to a common script and translates it into
// targetLang. Rate-limit signals, transport errors and malformed
// responses are all retried the same way, up to maxAttempts total; after
// that the original text is returned verbatim with StatusDegraded so the
// caller's flow always completes.
func (c *GeminiClient) Translate(ctx context.Context, text, targetLang string) Result {
	targetLang = normalize.Lang(targetLang)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if !c.backoff(ctx, attempt) {
				break
			}
		}

		payload, err := c.generate(ctx, text, targetLang)
		if err == nil {
			return Result{
				CommonText:     payload.CommonText,
				TranslatedText: payload.TranslatedText,
				Status:         StatusOK,
			}
		}
		c.logger.WarnContext(ctx, "translation attempt failed",
			"attempt", attempt+1, "target_lang", targetLang, "error", err)
	}

	c.logger.WarnContext(ctx, "translation degraded to verbatim text",
		"target_lang", targetLang)
	return Result{CommonText: text, TranslatedText: text, Status: StatusDegraded}
}

// backoff sleeps baseDelay * 2^(attempt-1) plus up to jitterWindow of
// random jitter. The sleep is a timer local to this request; it never
// blocks other in-flight requests. Returns false when ctx expires first.
func (c *GeminiClient) backoff(ctx context.Context, attempt int) bool {
	delay := c.baseDelay * (1 << (attempt - 1))
	delay += time.Duration(rand.Int63n(int64(jitterWindow)))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// generate issues one request and parses the structured response.
func (c *GeminiClient) generate(ctx context.Context, text, targetLang string) (*translationPayload, error) {
	userPrompt := fmt.Sprintf(`
1. Transliterate the following text into a common script (like English letters).
2. Then, translate the original text into %s.

The text to process is: %q

Provide the response as a JSON object with two fields:
- "commonText": The transliterated text.
- "translatedText": The translated text.
`, targetLang, text)

	reqBody := generateRequest{
		Contents:          []generateContent{{Parts: []generatePart{{Text: userPrompt}}}},
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: systemPrompt}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: responseSchema{
				Type: "OBJECT",
				Properties: map[string]schemaProperty{
					"commonText":     {Type: "STRING"},
					"translatedText": {Type: "STRING"},
				},
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call translation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("translation service rate limited (status %d)", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("response contains no candidates")
	}

	var payload translationPayload
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &payload); err != nil {
		return nil, fmt.Errorf("decode translation payload: %w", err)
	}
	if payload.CommonText == "" || payload.TranslatedText == "" {
		return nil, fmt.Errorf("translation payload missing required fields")
	}

	return &payload, nil
}
