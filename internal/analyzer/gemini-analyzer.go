package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"

	maxResponseBytes = 8 << 20
	maxLoggedBody    = 512
)

type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (*models.LLMAnalysisResult, error)
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
}

type geminiAnalyzer struct {
	apiKey  string
	model   string
	baseURL string
	retry   RetryPolicy
	logger  *utils.Logger
	client  *http.Client
	sleep   Sleeper
}

type Option func(*geminiAnalyzer)

// WithHTTPClient replaces the default client. Its Timeout is left as given.
func WithHTTPClient(c *http.Client) Option {
	return func(a *geminiAnalyzer) { a.client = c }
}

// WithSleeper replaces the wait between retries.
func WithSleeper(s Sleeper) Option {
	return func(a *geminiAnalyzer) { a.sleep = s }
}

type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *Schema `json:"responseSchema"`
}

type GenerateResponse struct {
	Candidates     []Candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type apiErrorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewGeminiAnalyzer(cfg GeminiConfig, logger *utils.Logger, opts ...Option) Analyzer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	a := &geminiAnalyzer{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retry:   cfg.Retry,
		logger:  logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *geminiAnalyzer) Analyze(ctx context.Context, prompt string) (*models.LLMAnalysisResult, error) {
	if strings.TrimSpace(a.apiKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrConfiguration)
	}

	reqBody := GenerateRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: prompt}},
			},
		},
		GenerationConfig: GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ResponseSchema,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := a.send(ctx, payload)
	if err != nil {
		return nil, err
	}

	text, err := responseText(body)
	if err != nil {
		a.logger.Error("Unusable Gemini response", "error", err, "body", truncate(string(body)))
		return nil, err
	}

	result, err := decodeContract(text)
	if err != nil {
		a.logger.Error("Failed to accept LLM response", "error", err, "content", truncate(text))
		return nil, err
	}

	return result, nil
}

// send posts payload, retrying per the policy. It returns the body of the first
// 2xx response.
func (a *geminiAnalyzer) send(ctx context.Context, payload []byte) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", a.baseURL, url.PathEscape(a.model))
	maxAttempts := a.retry.attempts()

	var lastErr *RemoteError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := a.retry.Delay(attempt - 1)
			a.logger.Warn("Retrying Gemini request",
				"attempt", attempt,
				"delay", delay,
				"last_status", lastErr.StatusCode)
			if err := a.sleep(ctx, delay); err != nil {
				return nil, &RemoteError{StatusCode: lastErr.StatusCode, Attempts: attempt - 1, Err: err}
			}
		}

		status, body, err := a.do(ctx, endpoint, payload)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}

		if err != nil {
			lastErr = &RemoteError{Attempts: attempt, Err: err}
			a.logger.Warn("Gemini request failed", "attempt", attempt, "error", err)
		} else {
			lastErr = &RemoteError{StatusCode: status, Message: apiMessage(body), Attempts: attempt}
			a.logger.Error("Gemini API error", "attempt", attempt, "status", status, "body", truncate(string(body)))
		}

		if ctx.Err() != nil || !a.retry.retryable(status, err) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func (a *geminiAnalyzer) do(ctx context.Context, endpoint string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// responseText pulls candidates[0].content.parts[0].text out of a generateContent body.
func responseText(body []byte) (string, error) {
	var resp GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v", ErrMalformedResponse, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrMalformedResponse, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrMalformedResponse)
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || strings.TrimSpace(parts[0].Text) == "" {
		return "", fmt.Errorf("%w: empty candidate text (finish reason %q)", ErrMalformedResponse, resp.Candidates[0].FinishReason)
	}

	return parts[0].Text, nil
}

func apiMessage(body []byte) string {
	var e apiErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error == nil {
		return ""
	}
	return e.Error.Message
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}
