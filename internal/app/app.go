// Package app assembles the aggregator from its parts.
package app

import (
	"context"
	"fmt"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/config"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/enrich"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/logger"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/scheduler"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/storage"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/trigger"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/publishers"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/server"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/sources"
)

// App owns the long-lived components and their shutdown order.
type App struct {
	cfg   *config.Config
	log   logger.Logger
	store storage.Store
	sched *scheduler.Scheduler
	cron  *trigger.Cron
	srv   *server.Server
}

// New builds the full component graph from configuration.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	log = logger.Ensure(log)

	registry, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	filter := sources.NewFilter(nil, nil)
	ranker := sources.NewRanker(filter, nil)
	fetchers := sources.DefaultFetcherRegistry(nil, sources.FetcherOptions{
		YouTubeAPIKey: cfg.YouTubeAPIKey,
		Filter:        filter,
	})
	enricher := enrich.New(sources.DefaultHTTPClient(), log)

	sched := scheduler.New(registry, fetchers, store, log, scheduler.Options{
		Filter:        filter,
		Ranker:        ranker,
		Enricher:      enricher,
		Fanout:        fanout,
		HistoryLimit:  cfg.HistoryLimit,
		SourceTimeout: cfg.SourceTimeout,
	})

	a := &App{
		cfg:   cfg,
		log:   log,
		store: store,
		sched: sched,
		srv:   server.New(cfg.HTTPPort, sched, registry, log),
	}

	if cfg.CronEnabled {
		cron, err := trigger.New(sched, cfg.CronSchedule, cfg.CronTimezone, log)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("setting up cron trigger: %w", err)
		}
		a.cron = cron
	}

	return a, nil
}

// buildFanout loads downstream publisher configs and instantiates the
// enabled ones. A missing config file means no downstream fanout, which
// is a valid deployment.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	cfgReg, err := publishers.LoadRegistry(path)
	if err != nil {
		log.WarnObj("publishers config unavailable, running without fanout", "publishers", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return publishers.NewFanout(nil), nil
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), cfgReg.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("building publishers: %w", err)
	}
	return publishers.NewFanout(pubs), nil
}

// Run starts the cron trigger (when enabled) and serves HTTP until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.cron != nil {
		a.cron.Start()
		a.log.InfoObj("cron trigger started", "cron", map[string]any{
			"schedule": a.cfg.CronSchedule,
			"timezone": a.cfg.CronTimezone,
		})
	}

	err := a.srv.Run(ctx)

	if a.cron != nil {
		a.cron.Stop()
	}
	if cerr := a.store.Close(); cerr != nil {
		a.log.WarnObj("store close failed", "storage", map[string]any{
			"error": cerr.Error(),
		})
	}
	return err
}

// Scheduler exposes the orchestrator, mainly for one-shot CLI runs.
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }
