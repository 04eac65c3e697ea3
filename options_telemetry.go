package langsync

import (
	"context"

	"github.com/pitabwire/langsync/config"
	"github.com/pitabwire/langsync/telemetry"
	"github.com/pitabwire/langsync/version"
)

// SetupTelemetry initialises tracing and metrics for cfg. Callers must Shutdown
// the returned manager before exiting so batched data is flushed.
func SetupTelemetry(ctx context.Context, cfg *config.Configuration, opts ...telemetry.Option) (telemetry.Manager, error) {
	extOpts := []telemetry.Option{
		telemetry.WithServiceName(cfg.Name()),
		telemetry.WithServiceVersion(version.Get()),
	}
	extOpts = append(extOpts, opts...)

	m := telemetry.NewManager(ctx, cfg, extOpts...)
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
