package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/riskibarqy/live-sports-hub/internal/app"
	"github.com/riskibarqy/live-sports-hub/internal/config"
	"github.com/riskibarqy/live-sports-hub/internal/observability"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel).With("service", cfg.ServiceName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "export":
		err = runExport(ctx, cfg, logger, args)
	case "import":
		err = runImport(ctx, cfg, logger, args)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() { _ = stopProfiler() }()

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("start pprof: %w", err)
	}
	defer func() { _ = observability.StopPprofServer(pprofServer, logger, shutdownGrace) }()

	hub, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := hub.Close(); err != nil {
			logger.Warn("close app failed", "error", err)
		}
	}()

	return hub.Run(ctx)
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <serve|export|import> [flags]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s serve\n", name)
	fmt.Fprintf(os.Stderr, "  %s export -out live_scores.json -sport soccer\n", name)
	fmt.Fprintf(os.Stderr, "  %s import -in live_scores.json -q madrid\n", name)
}
