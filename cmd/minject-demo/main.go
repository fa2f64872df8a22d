// Command minject-demo wires a small service with the container: bindings
// from configuration, an injected component installed by a module, resolution
// telemetry and the inspect server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/minject/config"
	"github.com/kbukum/minject/di"
	"github.com/kbukum/minject/inspect"
	"github.com/kbukum/minject/logger"
	"github.com/kbukum/minject/observability"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *envFile); err != nil {
		logger.Error("Demo failed", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string) error {
	opts := []config.LoaderOption{config.WithEnvPrefix("MINJECT")}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	cfg, err := config.Load("minject-demo", opts...)
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Log, cfg.Service.Name)
	logger.SetGlobalLogger(log)
	logger.Register("di", log.WithComponent("di"))

	tel, err := observability.Setup(ctx, cfg.Service.Name, cfg.Service.Version, cfg.Service.Environment, cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	container := di.NewContainer(di.WithObserver(tel.Observer), di.WithLogger(logger.Get("di")))
	defer func() {
		if err := container.Close(); err != nil {
			log.Warn("Container close failed", logger.ErrorFields("close", err))
		}
	}()

	if err := container.Install(config.BindingsModule(cfg.Bindings)); err != nil {
		return err
	}
	if err := container.RegisterEager("visits", newVisitStore); err != nil {
		return err
	}
	if err := container.Install(greeterModule{}); err != nil {
		return err
	}

	greeter, err := di.Resolve[*Greeter](container, "greeter")
	if err != nil {
		return err
	}
	msg, err := greeter.Greet()
	if err != nil {
		return err
	}
	log.Info(msg)

	if !cfg.Inspect.Enabled {
		return nil
	}

	srv := inspect.NewServer(cfg.Inspect, inspect.NewHandler(container, cfg.Service.Name, cfg.Service.Version, log))
	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("Waiting for shutdown signal", logger.Fields("bindings", "http://"+srv.Addr()+cfg.Inspect.BasePath+"/bindings"))
	<-ctx.Done()
	return srv.Stop(context.Background())
}
