package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"ArxivDigest/internal/config"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/infrastructure/library"
	"ArxivDigest/internal/infrastructure/llm"
	"ArxivDigest/internal/infrastructure/parser"
	"ArxivDigest/internal/infrastructure/scheduler"
	"ArxivDigest/internal/infrastructure/storage"
	"ArxivDigest/internal/infrastructure/telegram"
	"ArxivDigest/internal/logging"
	"ArxivDigest/internal/ports"
	"ArxivDigest/internal/report"
	"ArxivDigest/internal/usecase"
)

// ErrUnknownBackend is returned for a library backend name with no implementation.
var ErrUnknownBackend = errors.New("unknown library backend")

// Library backend names accepted in configuration.
const (
	BackendZoteroSQLite = "zotero-sqlite"
	BackendZoteroWeb    = "zotero-web"
	BackendNone         = "none"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	sweeper  *usecase.Sweeper
	closers  []func() error
}

// New builds every adapter named by cfg. Configuration mistakes (unknown strategy,
// provider or backend) are returned; a library that cannot be opened only degrades.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	source, err := a.buildSource()
	if err != nil {
		return nil, err
	}

	lib, err := a.buildLibrary(ctx)
	if err != nil {
		return nil, err
	}

	var summarizer ports.Summarizer
	if cfg.Summary.Enabled {
		summarizer, err = llm.New(ctx, cfg.Summary)
		if err != nil {
			return nil, fmt.Errorf("summary provider: %w", err)
		}
		baseLogger.Info("ai summary enabled", "provider", summarizer.Name(), "language", cfg.Summary.Language)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	partitioner := report.NewPartitioner(
		report.NewMatcher(lib, baseLogger.With("component", "matcher")),
		report.NewRenderer(summarizer, cfg.Summary.Timeout, baseLogger.With("component", "renderer")),
		baseLogger.With("component", "partitioner"),
	)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Partitioner: partitioner,
		Store:       storage.NewMarkdownStore(cfg.Output.Folder),
		Notifier:    notifier,
		Logger:      baseLogger.With("component", "pipeline"),
	})
	a.sweeper = usecase.NewSweeper(a.pipeline, cfg.Workers, cfg.Scheduler.Location(), baseLogger.With("component", "sweeper"))
	return a, nil
}

func (a *Application) buildSource() (*parser.StrategySource, error) {
	fetch := a.cfg.Fetch
	var limiter *rate.Limiter
	if fetch.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(fetch.RequestInterval), 1)
	}

	registry := parser.NewRegistry(parser.Options{
		Client:    &http.Client{Timeout: fetch.Timeout},
		Limiter:   limiter,
		UserAgent: fetch.UserAgent,
		PageSize:  fetch.PageSize,
		BaseURL:   fetch.BaseURL,
		Logger:    a.logger.With("component", "scanner"),
	})
	source, err := parser.NewStrategySource(registry, fetch.Strategy, a.logger.With("component", "source"))
	if err != nil {
		return nil, fmt.Errorf("fetch strategy: %w", err)
	}
	return source, nil
}

func (a *Application) buildLibrary(ctx context.Context) (ports.LibraryClient, error) {
	cfg := a.cfg.Library
	log := a.logger.With("component", "library", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendZoteroSQLite:
		z, err := library.OpenZoteroSQLite(ctx, cfg.SQLite.Path, log)
		if err != nil {
			log.Warn("library unavailable, every record will be listed as not collected", "error", err)
			return library.Unavailable{Reason: err}, nil
		}
		a.closers = append(a.closers, z.Close)
		return z, nil
	case BackendZoteroWeb:
		z, err := library.NewZoteroWeb(library.WebOptions{
			Endpoint:    cfg.Web.Endpoint,
			LibraryType: cfg.Web.LibraryType,
			LibraryID:   cfg.Web.LibraryID,
			APIKey:      cfg.Web.APIKey,
			RateLimit:   cfg.Web.RateLimit,
			Client:      &http.Client{Timeout: cfg.Timeout},
			Logger:      log,
		})
		if err != nil {
			log.Warn("library unavailable, every record will be listed as not collected", "error", err)
			return library.Unavailable{Reason: err}, nil
		}
		return z, nil
	case BackendNone, "":
		return library.Unavailable{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Categories resolves names against the catalog; no names selects the whole catalog.
// Any unsupported name fails the whole call before a day is processed.
func (a *Application) Categories(names []string) ([]domain.Category, error) {
	if len(names) == 0 {
		names = a.cfg.CategoryNames()
	}
	out := make([]domain.Category, 0, len(names))
	for _, name := range names {
		cat, err := a.cfg.Category(name)
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

// Run processes the time targets in spec for the named categories.
func (a *Application) Run(ctx context.Context, spec string, categoryNames []string, now time.Time) ([]domain.DayResult, error) {
	categories, err := a.Categories(categoryNames)
	if err != nil {
		return nil, err
	}
	targets, err := usecase.ParseTargets(spec, now.In(a.cfg.Scheduler.Location()))
	if err != nil {
		return nil, err
	}

	a.logger.Info("run started", "targets", len(targets), "categories", len(categories), "strategy", a.cfg.Fetch.Strategy)
	return a.sweeper.Run(ctx, categories, targets, now)
}

// Schedule runs the daily job until ctx is cancelled.
func (a *Application) Schedule(ctx context.Context, categoryNames []string) error {
	categories, err := a.Categories(categoryNames)
	if err != nil {
		return err
	}

	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, scheduler.Options{
		Location:   a.cfg.Scheduler.Location(),
		RunOnStart: true,
		Logger:     a.logger.With("component", "scheduler"),
	})
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(driver, a.sweeper, categories, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases resources held by adapters.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
