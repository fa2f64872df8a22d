// Package observability records dependency resolution with OpenTelemetry.
//
// Setup installs OTLP tracer and meter providers when export is enabled and
// returns a di.Observer that emits one span and one set of measurements per
// provider run:
//
//	tel, err := observability.Setup(ctx, "my-service", "1.0.0", "production", cfg.Observability)
//	defer tel.Shutdown(ctx)
//
//	env := di.NewProviderEnvironment(di.WithObserver(tel.Observer))
//
// Components registered in a container can report their health by
// implementing HealthChecker.
package observability
