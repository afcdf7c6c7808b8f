// I-am-poor is a personal finance assistant that lives in Telegram:
// expenses, monthly bills, savings goals and incomes, driven by an LLM
// with tool calling.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pirlo1121/I-am-poor/internal/metrics"
)

func main() {
	loadDotenv(".env")

	cfg, err := loadConfig("config.yaml")
	if err != nil {
		slog.Error("configuration error", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stack, err := buildStack(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer stack.Close()

	slog.Info("bot starting",
		slog.String("provider", cfg.Provider),
		slog.String("db", cfg.DatabasePath),
		slog.String("tz", cfg.Timezone))

	stack.telegram.Start(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stack.runWorker(ctx) })
	g.Go(func() error { return stack.scheduler.Start(ctx) })
	g.Go(func() error { return metrics.Serve(ctx, cfg.MetricsAddr) })

	if err := g.Wait(); err != nil {
		slog.Error("bot stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("bot stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
