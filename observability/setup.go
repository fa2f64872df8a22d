package observability

import (
	"context"

	"github.com/kbukum/minject/errors"
)

// Telemetry owns the providers created by Setup and the observer bound to
// them.
type Telemetry struct {
	Observer *ResolutionObserver

	shutdown []func(context.Context) error
}

// Setup initializes OTLP export when cfg.Enabled is set and returns an
// observer recording to the resulting global providers. With export
// disabled the observer records to whatever providers are installed.
func Setup(ctx context.Context, serviceName, serviceVersion, environment string, cfg Config) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Enabled {
		tp, err := InitTracer(ctx, cfg.TracerConfig(serviceName, serviceVersion, environment))
		if err != nil {
			return nil, err
		}
		t.shutdown = append(t.shutdown, tp.Shutdown)

		mp, err := InitMeter(ctx, cfg.MeterConfig(serviceName, serviceVersion, environment))
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
		t.shutdown = append(t.shutdown, mp.Shutdown)
	}

	obs, err := NewResolutionObserver(nil, nil)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	t.Observer = obs
	return t, nil
}

// Shutdown flushes and stops the providers created by Setup, most recent
// first.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdown) - 1; i >= 0; i-- {
		if err := t.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdown = nil
	return errors.Join(errs...)
}
