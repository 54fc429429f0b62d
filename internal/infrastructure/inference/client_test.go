package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:     endpoint,
		APIKey:       "fw-test",
		Model:        "accounts/fireworks/models/kimi-k2-5",
		Timeout:      time.Second,
		Retries:      2,
		RetryBackoff: time.Millisecond,
	}
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

var testRequest = appmatching.CompletionRequest{
	SystemPrompt: "match products",
	UserPrompt:   "Item Number: VN-001",
	Temperature:  0.1,
	MaxTokens:    500,
}

func TestClient_Complete(t *testing.T) {
	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(`{"product_id": null, "confidence": 0, "reasoning": "none"}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	content, err := client.Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Contains(t, content, `"reasoning": "none"`)
	assert.Equal(t, "Bearer fw-test", auth)
	assert.Equal(t, "accounts/fireworks/models/kimi-k2-5", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "match products", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.Equal(t, 500, got.MaxTokens)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completion("ok")))
	}))
	defer server.Close()

	content, err := NewClient(testConfig(server.URL), nil).Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RetriesAreTotalAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retries = 3
	_, err := NewClient(cfg, nil).Complete(context.Background(), testRequest)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryRejections(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL), nil).Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MalformedReplies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway</html>"},
		{"no choices", `{"choices": []}`},
		{"null content", `{"choices": [{"message": {"content": null}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(testConfig(server.URL), nil).Complete(context.Background(), testRequest)
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestClient_PerAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(completion("second try")))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	content, err := NewClient(cfg, nil).Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, "second try", content)
}

func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	cfg := testConfig(server.URL)
	cfg.Retries = 5
	start := time.Now()
	_, err := NewClient(cfg, nil).Complete(ctx, testRequest)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completion("ok")))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	client := NewClient(cfg, nil)

	_, err := client.Complete(context.Background(), testRequest)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, testRequest)
	assert.ErrorContains(t, err, "rate limiter")
}
