package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/newsletter/internal/app"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/telemetry"
)

const serviceName = "newsletter"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup so that main exits only after tracing
// has been flushed and the signal handler released.
func run(configPath string) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	logger.Init(serviceName, cfg.Log.Level, cfg.Log.ShouldRedactPII(), os.Stdout)
	log := logger.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("set up tracing (exporter %q): %w", cfg.Tracing.Exporter, err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	application, err := app.Build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	log.Info("listening", "address", cfg.Application.Host, "port", application.Port())

	if err := application.Run(ctx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
