package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-explainer/internal/assess"
	"github.com/park285/chess-explainer/internal/prompt"
	"github.com/park285/chess-explainer/pkg/explaindto"
)

// ErrExplainUnavailable marks a text-service failure. The engine assessment
// is still complete when this is returned; callers decide whether to retry.
var ErrExplainUnavailable = errors.New("explanation service unavailable")

// Client talks to an OpenAI-compatible chat completions endpoint and turns a
// Summary into a short prose explanation.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *fasthttp.Client
	catalog *prompt.Catalog
	logger  *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
	maxTokens      int
	temperature    float64
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

func NewClient(baseURL, apiKey, model string, catalog *prompt.Catalog, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		model:          model,
		http:           &fasthttp.Client{ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second, MaxConnsPerHost: 16},
		catalog:        catalog,
		logger:         logger,
		defaultTimeout: 15 * time.Second,
		retryMax:       3,
		maxTokens:      200,
		temperature:    0.7,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain renders the prompt from the summary and asks the text service for a
// plain-text explanation.
func (c *Client) Explain(ctx context.Context, summary explaindto.Summary) (string, error) {
	system, user, err := c.renderPrompt(summary)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	var resp chatResponse
	if err := c.doJSON(ctx, "/chat/completions", req, &resp); err != nil {
		c.logger.Warn("explanation request failed",
			zap.String("move", summary.MoveSAN),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrExplainUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrExplainUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ping checks that the endpoint answers at all. Used by the enginecheck
// command, not by the analysis pipeline.
func (c *Client) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + "/models")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return fmt.Errorf("%w: %v", ErrExplainUnavailable, err)
	}
	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: status=%d", ErrExplainUnavailable, status)
	}
	return nil
}

func (c *Client) renderPrompt(summary explaindto.Summary) (string, string, error) {
	classification := summary.Classification
	if classification == string(assess.ClassGood) {
		// Sound moves carry no verdict line in the prompt.
		classification = ""
	}
	bestLine := strings.Join(summary.PrincipalLine, " ")
	if bestLine == "" {
		bestLine = "no continuation available"
	}

	data := map[string]any{
		"FEN":            summary.FEN,
		"Side":           summary.SideToMove,
		"MoveSAN":        summary.MoveSAN,
		"EvalBefore":     summary.EvalBeforeCP,
		"EvalAfter":      summary.EvalAfterCP,
		"Loss":           summary.CentipawnLoss,
		"Classification": classification,
		"BestLine":       bestLine,
	}

	system, err := c.catalog.Render("explain.system", nil)
	if err != nil {
		return "", "", err
	}
	user, err := c.catalog.Render("explain.user", data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func (c *Client) doJSON(ctx context.Context, path string, in any, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req.SetBody(payload)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("explain api error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
