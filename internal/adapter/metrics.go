package adapter

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for document parsing.
var (
	tracer = otel.Tracer("som-lsp.adapter")
	meter  = otel.Meter("som-lsp.adapter")
)

var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter
	parseErrors  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"som_lsp_parse_duration_seconds",
			metric.WithDescription("Duration of document parses"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"som_lsp_parse_total",
			metric.WithDescription("Total number of document parses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseErrors, err = meter.Int64Counter(
			"som_lsp_parse_errors_total",
			metric.WithDescription("Total number of parses that reported a syntax error"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordParseMetrics(ctx context.Context, language string, duration time.Duration, failed bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("language", language))

	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if failed {
		parseErrors.Add(ctx, 1, attrs)
	}
}

// startParseSpan creates a span for a parse. The caller must end it.
func startParseSpan(ctx context.Context, language, uri string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Router.Parse",
		trace.WithAttributes(
			attribute.String("lsp.language", language),
			attribute.String("lsp.uri", uri),
			attribute.Int("lsp.content_size", contentSize),
		),
	)
}

func setParseSpanResult(span trace.Span, diagnosticCount int, failed bool) {
	span.SetAttributes(
		attribute.Int("lsp.diagnostic_count", diagnosticCount),
		attribute.Bool("lsp.failed", failed),
	)
}
