// Package config loads the configuration of a service built around a
// container.
//
// Configuration is read with Viper from a config.yml found in standard
// locations, then overridden by environment variables and an optional .env
// file (loaded with godotenv):
//
//	cfg, err := config.Load("orders", config.WithEnvPrefix("ORDERS"))
//
// With a prefix, ORDERS_SERVICE_ENVIRONMENT=production sets
// service.environment. Validation uses struct tags and reports every
// invalid field in one error.
//
// The bindings section declares providers without code. BindingsModule
// turns them into a di.Module:
//
//	env, err := di.NewProviderEnvironment().AddModule(config.BindingsModule(cfg.Bindings))
package config
