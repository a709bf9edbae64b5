package app

import (
	"context"
	"fmt"
	"log/slog"

	"NewsAnalyzer/internal/analysis"
	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/infrastructure/ollama"
	"NewsAnalyzer/internal/infrastructure/parser"
	"NewsAnalyzer/internal/infrastructure/scheduler"
	"NewsAnalyzer/internal/infrastructure/storage"
	"NewsAnalyzer/internal/infrastructure/telegram"
	"NewsAnalyzer/internal/logging"
	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/scanner"
	"NewsAnalyzer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
	closeFn   func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.NewConnection(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	version, dirty, err := storage.RunMigrations(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	baseLogger.Info("database ready", "migration_version", version, "dirty", dirty)

	repository := storage.NewPostgresRepository(db)

	generator := ollama.NewClient(cfg.Ollama.URL, cfg.Ollama.Model,
		ollama.WithRequestsPerMinute(cfg.Ollama.RequestsPerMinute))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewJin10Scanner(nil))

	source := parser.NewStrategySource(registry, cfg.Sites, cfg.Scraper.Window(),
		baseLogger.With("component", "source"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:       source,
		Repository:   repository,
		Classifier:   analysis.NewClassifier(generator),
		Analyzer:     analysis.NewFinancialAnalyzer(generator),
		Workers:      cfg.Pipeline.Workers,
		BacklogLimit: cfg.Pipeline.BacklogLimit,
		Classify:     stagePolicy(cfg.Pipeline.Classify),
		Analyze:      stagePolicy(cfg.Pipeline.Analyze),
		Logger:       baseLogger.With("component", "pipeline"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	driver := scheduler.NewTickerScheduler(cfg.Scheduler.Interval())
	runner := usecase.NewScheduler(driver, pipeline, notifier,
		baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		scheduler: runner,
		closeFn:   db.Close,
	}, nil
}

// Run starts recurring pipeline cycles and blocks until the context ends.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx := context.Background()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Error("stop scheduler", "error", err)
	}
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			a.logger.Error("close database", "error", err)
		}
	}

	return nil
}

func stagePolicy(cfg config.StageConfig) usecase.StagePolicy {
	return usecase.StagePolicy{
		Timeout:   cfg.Timeout(),
		Attempts:  cfg.Attempts,
		Reprompts: cfg.Reprompts,
		Backoff:   cfg.Backoff(),
	}
}
