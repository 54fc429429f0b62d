package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Metric attribute keys
var (
	AttrMatchMethod = attribute.Key("match.method")
	AttrMatchStatus = attribute.Key("match.status")
	AttrOutcome     = attribute.Key("outcome")
)

// MatchMetrics tracks the matching cascade. A nil *MatchMetrics is valid and records nothing.
type MatchMetrics struct {
	logger *zap.Logger

	matchTotal        *Counter
	fallbackTotal     *Counter
	inferenceDuration *Histogram
	catalogProducts   *Gauge
	catalogDuplicates *Gauge
}

// MatchMetricsConfig holds configuration for match metrics.
type MatchMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewMatchMetrics creates the instruments.
func NewMatchMetrics(cfg MatchMetricsConfig) (*MatchMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mm := &MatchMetrics{logger: logger}
	var err error

	if mm.matchTotal, err = NewCounter(cfg.Meter,
		"verve_match_total", "Completed match attempts by method and status", "{matches}"); err != nil {
		return nil, err
	}
	if mm.fallbackTotal, err = NewCounter(cfg.Meter,
		"verve_match_fallback_total", "Match attempts that fell back after an inference failure", "{matches}"); err != nil {
		return nil, err
	}
	if mm.inferenceDuration, err = NewHistogram(cfg.Meter,
		"verve_inference_duration_seconds", "Inference call latency", "s",
		0.25, 0.5, 1, 2, 5, 10, 20, 30, 60); err != nil {
		return nil, err
	}
	if mm.catalogProducts, err = NewGauge(cfg.Meter,
		"verve_catalog_products", "Active products in the loaded catalog snapshot", "{products}"); err != nil {
		return nil, err
	}
	if mm.catalogDuplicates, err = NewGauge(cfg.Meter,
		"verve_catalog_duplicate_codes", "Item codes shared by more than one active product", "{codes}"); err != nil {
		return nil, err
	}
	return mm, nil
}

// RecordMatch counts a resolved attempt.
func (m *MatchMetrics) RecordMatch(ctx context.Context, method, status string) {
	if m == nil {
		return
	}
	m.matchTotal.Inc(ctx, AttrMatchMethod.String(method), AttrMatchStatus.String(status))
}

// RecordFallback counts an attempt that degraded to method after inference failed.
func (m *MatchMetrics) RecordFallback(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc(ctx, AttrMatchMethod.String(method))
}

// RecordInference records the latency of one inference call.
func (m *MatchMetrics) RecordInference(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.inferenceDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordCatalogLoad publishes the size of a fresh snapshot.
func (m *MatchMetrics) RecordCatalogLoad(ctx context.Context, products, duplicateCodes int) {
	if m == nil {
		return
	}
	m.catalogProducts.Record(ctx, int64(products))
	m.catalogDuplicates.Record(ctx, int64(duplicateCodes))
}

// MetricsError is returned when an instrument set cannot be built.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewMatchMetrics", Err: "meter cannot be nil"}
