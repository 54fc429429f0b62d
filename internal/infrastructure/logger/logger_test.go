package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		l, err := New(&Config{Level: "debug", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "warn", Format: "console", Output: path})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("unwritable file", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.NotNil(t, FromContext(context.Background()))

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))

	FromContext(ctx).Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "abc") })
	r.Use(GinMiddleware(zap.New(core)), Recovery(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("inside").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])
	assert.Equal(t, 1, logs.FilterMessage("HTTP Request").Len())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 10*time.Millisecond)

	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	gl.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	gl.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
