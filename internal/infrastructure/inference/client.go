package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrUpstream marks a reply the endpoint may answer differently on retry
	ErrUpstream = errors.New("inference endpoint unavailable")
	// ErrRejected marks a request the endpoint refused outright
	ErrRejected = errors.New("inference request rejected")
	// ErrMalformedReply marks a 200 reply without choices[0].message.content
	ErrMalformedReply = errors.New("inference reply malformed")
)

// maxReplyBytes caps how much of a reply body is read
const maxReplyBytes = 1 << 20

// Config holds endpoint, credentials and pacing for the completion API
type Config struct {
	Endpoint     string
	APIKey       string
	Model        string
	Timeout      time.Duration // per attempt
	Retries      int           // total attempts
	RetryBackoff time.Duration
	RateLimit    float64 // requests per second, 0 disables
	RateBurst    int
}

// Client calls an OpenAI-compatible chat completions endpoint
type Client struct {
	httpClient  *http.Client
	cfg         Config
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a completion client. Retries below one are raised to one.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		// per-attempt deadlines come from the request context
		httpClient:  &http.Client{},
		cfg:         cfg,
		rateLimiter: limiter,
		logger:      logger.Named("inference"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion and returns choices[0].message.content.
// Network failures, 429 and 5xx replies are retried up to cfg.Retries
// attempts in total, each bounded by cfg.Timeout.
func (c *Client) Complete(ctx context.Context, req appmatching.CompletionRequest) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inference", "complete", "model", c.cfg.Model)
	defer span.End()

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.cfg.RetryBackoff*time.Duration(attempt-1)); err != nil {
				return "", err
			}
		}
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter error: %w", err)
			}
		}

		content, err := c.attempt(ctx, body)
		if err == nil {
			telemetry.SetAttributes(span, "attempts", attempt)
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil || !errors.Is(err, ErrUpstream) {
			break
		}
		c.logger.Warn("inference attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.Retries),
			zap.Error(err),
		)
	}

	telemetry.RecordError(span, lastErr)
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(raw))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, snippet(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: no message content", ErrMalformedReply)
	}
	return *parsed.Choices[0].Message.Content, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// Ensure Client implements the interface
var _ appmatching.InferenceClient = (*Client)(nil)
