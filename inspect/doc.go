// Package inspect exposes the bindings of a di.Container over HTTP with gin.
//
//	h := inspect.NewHandler(container, "orders", "1.4.0", log)
//	srv := inspect.NewServer(cfg.Inspect, h)
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop(ctx)
//
// Routes report every registration with its kind, mode and whether it has
// been built, and the health of built components that implement
// observability.HealthChecker.
package inspect
