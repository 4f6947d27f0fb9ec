// Package main runs the visualization server: session API over HTTP, the
// analysis runner and optional sqlite or redis persistence
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/cmd/viz-server/cli"
	"github.com/bonjohen/chess-metric-analyzer/internal/analysis"
	"github.com/bonjohen/chess-metric-analyzer/internal/config"
	vizhttp "github.com/bonjohen/chess-metric-analyzer/internal/http"
	"github.com/bonjohen/chess-metric-analyzer/internal/logging"
	"github.com/bonjohen/chess-metric-analyzer/internal/processor"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	configLoadTimeout       = time.Second * 10
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		configPath = flag.String("config", "", "Optional server config file (yaml, json or toml)")
		listen     = flag.String("listen", "", "Listen address, overrides config")
		dev        = flag.Bool("dev", false, "Development mode (console logs, relaxed rate limits)")
		pidPath    = flag.String("pid", "", "Optional path to write PID file")
		pidLock    = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	cfg.Dev = cfg.Dev || *dev

	logger, err := logging.New(cfg.Dev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if *pidLock && *pidPath == "" {
		logger.Fatal("-pid-lock flag requires the -pid flag to be set")
	}
	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			logger.Fatalw("Failed to manage PID file", "error", err)
		}
		defer cleanup()
		logger.Infow("PID file created", "path", *pidPath, "lock", *pidLock)
	}

	// 1. Storage backend
	be := openBackend(context.Background(), cfg, logger)
	defer be.close()
	opts := service.Options{Log: logger, Store: be.store, State: be.state}

	// 2. Profiles, piece values and visualization parameters
	model := profile.NewModel()
	loadCtx, loadCancel := context.WithTimeout(context.Background(), configLoadTimeout)
	config.NewLoader(config.Paths{
		Profiles:      cfg.ProfilesPath,
		PieceValues:   cfg.PiecesPath,
		Visualization: cfg.VisualPath,
	}, logger).LoadAll(loadCtx, model)
	loadCancel()
	opts.Profiles = model

	// 3. Evaluator
	var evaluator analysis.Evaluator = analysis.Demo{}
	if cfg.EnginePath != "" {
		uci, err := analysis.NewUCIEvaluator(cfg.EnginePath, cfg.AnalysisDepth, logger)
		if err != nil {
			logger.Fatalw("Failed to start engine", "path", cfg.EnginePath, "error", err)
		}
		defer uci.Close()
		evaluator = uci
		logger.Infow("Engine evaluator enabled", "path", cfg.EnginePath)
	}

	// 4. Service, processor and HTTP app
	svc := service.New(opts)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval, time.Duration(cfg.SessionTTLHours)*time.Hour)

	proc := processor.New(svc, processor.Config{
		Evaluator: evaluator,
		MaxDepth:  cfg.AnalysisDepth,
		Tick:      time.Duration(cfg.AnalysisTickMs) * time.Millisecond,
		Log:       logger,
	})

	app := vizhttp.NewFiberApp(proc, svc, vizhttp.Config{
		DevMode:   cfg.Dev,
		RateLimit: cfg.RateLimit,
	})

	go func() {
		logger.Infow("Visualization API server starting",
			"listen", fmt.Sprintf("http://%s", cfg.Listen),
			"sessions", fmt.Sprintf("http://%s/api/v1/sessions", cfg.Listen),
			"health", fmt.Sprintf("http://%s/health", cfg.Listen),
			"storage", be.name,
			"rate_limit", cfg.RateLimit,
		)
		if err := app.Listen(cfg.Listen); err != nil {
			logger.Errorw("API server listen error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdown(logger, app.ShutdownWithContext, proc, svc, cleanupCancel)
	logger.Info("Server exited")
}

func shutdown(logger *zap.SugaredLogger, stopHTTP func(context.Context) error, proc *processor.Processor, svc *service.Service, cancelCleanup context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := stopHTTP(ctx); err != nil {
		logger.Warnw("Server forced to shutdown", "error", err)
	}

	proc.Close()
	cancelCleanup()

	// Stops analysis runs and wakes long-pollers, then closes sqlite
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		logger.Warnw("Service shutdown error", "error", err)
	}
}
