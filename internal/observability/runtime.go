package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lionwox/blogging-platform-api/internal/config"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the process-wide telemetry providers and their teardown
// order. Providers register a shutdown hook as they come up; Shutdown
// drains the hooks in reverse so spans flush before the pipeline closes.
type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	shutdowns []func(context.Context) error
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.MeterProvider = mp
	rt.shutdowns = append(rt.shutdowns, mp.Shutdown)

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		rt.Shutdown(ctx)
		return nil, err
	}
	rt.TracerProvider = tp
	rt.shutdowns = append(rt.shutdowns, tp.Shutdown)

	return rt, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.shutdowns) - 1; i >= 0; i-- {
		if err := r.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.shutdowns = nil
	return errors.Join(errs...)
}
