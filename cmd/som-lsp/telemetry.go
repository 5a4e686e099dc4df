package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// setupMetrics installs a meter provider that periodically writes the parse
// metrics to path, or to stderr when path is empty. Stdout carries the
// protocol and is never used.
func setupMetrics(path string) (func(context.Context) error, error) {
	var w io.Writer = os.Stderr
	var file *os.File

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open metrics output: %w", err)
		}
		w, file = f, f
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create stdout metric exporter: %w", err)
	}

	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		err := mp.Shutdown(ctx)
		if file != nil {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}
