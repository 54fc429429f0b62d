package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	SlowQueryThresh time.Duration
	DBSystem        string // postgresql, sqlite
}

type dbContextKey string

const queryStartTimeKey dbContextKey = "otel_query_start_time"

// RegisterDBTracing installs the otelgorm plugin plus callbacks that flag
// slow statements and mark failed ones on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(cfg.DBSystem),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}
	after := func(db *gorm.DB) { markSlowQuery(db, cfg.SlowQueryThresh) }

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("verve:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("verve:after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("verve:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("verve:after_query", after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("verve:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("verve:after_update", after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func markSlowQuery(db *gorm.DB, threshold time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
