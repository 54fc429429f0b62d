package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestBodyLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(16))
	engine.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello", w.Body.String())
	})

	t.Run("declared length over the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 64))))
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	})

	t.Run("undeclared length over the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 64)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

type sampleRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Items []struct {
		URL string `json:"url" binding:"omitempty,url"`
	} `json:"items" binding:"max=1,dive"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	engine := gin.New()
	var details []dto.ValidationDetail
	engine.POST("/v", func(c *gin.Context) {
		var req sampleRequest
		details = ValidationDetails(c.ShouldBindJSON(&req))
		c.Status(http.StatusNoContent)
	})

	body := `{"email":"nope","items":[{"url":"not a url"}]}`
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v", strings.NewReader(body)))

	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", byField["name"])
	assert.Equal(t, "Invalid email format", byField["email"])
	assert.Equal(t, "Invalid URL format", byField["items[0].url"])

	assert.Nil(t, ValidationDetails(io.ErrUnexpectedEOF))
}

func TestTracing(t *testing.T) {
	t.Run("disabled adds nothing", func(t *testing.T) {
		assert.Empty(t, Tracing(TracingConfig{Enabled: false}))
	})

	t.Run("tags the server span", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		prev := otel.GetTracerProvider()
		otel.SetTracerProvider(tp)
		t.Cleanup(func() { otel.SetTracerProvider(prev) })

		engine := gin.New()
		engine.Use(RequestID())
		engine.Use(Tracing(TracingConfig{Enabled: true, ServiceName: "verve-noir"})...)
		engine.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set(RequestIDHeader, "trace-me")
		engine.ServeHTTP(httptest.NewRecorder(), req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		found := false
		for _, kv := range spans[0].Attributes() {
			if string(kv.Key) == "request_id" {
				found = true
				assert.Equal(t, "trace-me", kv.Value.AsString())
			}
		}
		assert.True(t, found, "request_id attribute missing")
	})
}
