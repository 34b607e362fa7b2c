package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"go.uber.org/fx"

	"safeloop_bot/internal/modules/bootstrap"
	"safeloop_bot/internal/modules/chain"
	"safeloop_bot/internal/modules/config"
	"safeloop_bot/internal/modules/health"
	"safeloop_bot/internal/modules/postgres"
	"safeloop_bot/internal/modules/storage"
	"safeloop_bot/internal/modules/telegram"
	"safeloop_bot/internal/runner"
	"safeloop_bot/pkg/logger"
	"safeloop_bot/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// трейсинг опционален: без JAEGER_HOST спаны уходят в noop-трейсер
	if host := os.Getenv("JAEGER_HOST"); host != "" {
		port := 6831
		if v, err := strconv.Atoi(os.Getenv("JAEGER_PORT")); err == nil && v > 0 {
			port = v
		}
		_, closeTracer, err := tracing.InitTracer(tracing.Config{Host: host, Port: port})
		if err != nil {
			logger.Fatal("init tracer: %v", err)
		}
		defer closeTracer()
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		storage.Module(),
		telegram.Module(),
		chain.Module(),
		health.Module(),
		bootstrap.Module(),
		runner.Module(),
	)
	app.Run()
}
