// Command ingestor runs the full ingestion/consensus daemon: the scheduled
// scraper cycle, the Position Monitor, and the end-of-cycle portfolio
// snapshot, wired to Postgres, Redis, and the local backtest-replay cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/config"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scheduler"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scraper"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/simulation"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/telemetry"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := telemetry.SetupOTelSDK(ctx, cfg.ServiceName)
	if err != nil {
		log.Errorf("otel setup failed, continuing without tracing", err)
		shutdownOTel = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Errorf("otel shutdown failed", err)
		}
	}()

	db, err := store.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Errorf("database connection failed", err)
		os.Exit(1)
	}
	if err := store.AutoMigrateAll(db); err != nil {
		log.Errorf("automigrate failed", err)
		os.Exit(1)
	}
	s := store.New(db)

	cache := store.NewCache(cfg.RedisAddr)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warnf("redis ping failed, cache and cycle.completed pub/sub degraded", "error", err.Error())
	}

	backtestCache, err := store.OpenBacktestCache(cfg.BacktestCachePath)
	if err != nil {
		log.Errorf("backtest cache open failed", err)
		os.Exit(1)
	}
	defer backtestCache.Close()

	if !cfg.ScraperEnabled {
		log.Infof("scraper disabled, idling until shutdown signal")
		<-ctx.Done()
		return
	}
	if len(cfg.ScraperLeadIDs) == 0 {
		log.Errorf("no lead trader ids configured", fmt.Errorf("SCRAPER_LEAD_IDS is empty"))
		os.Exit(1)
	}

	scraperClient := scraper.New(cfg.ScraperBaseURL, cfg.Timeout(), log.With("scraper"), scraper.WithOrderPageSize(cfg.ScraperOrderPageSize))
	ingestor := scheduler.NewIngestor(s, scraperClient, log.With("ingestor"))

	simEngine := simulation.New(s)
	monitor := simulation.NewMonitor(simEngine, log.With("monitor"))
	portfolioMgr := simulation.NewPortfolioManager(simEngine)

	sched := scheduler.New(ingestor, log.With("scheduler"), cfg.ScraperLeadIDs, cfg.ScraperConcurrency, cfg.Interval(), cfg.Timeout())
	sched.PositionMonitor = monitor.Run
	sched.OnCycleComplete = func(ctx context.Context, cycleID int64, startedAt, finishedAt time.Time, tradersOK, tradersFailed int) {
		if err := snapshotPortfolios(ctx, s, portfolioMgr, finishedAt); err != nil {
			log.Errorf("portfolio snapshot failed", err, "cycleId", cycleID)
		}
		event := store.CycleCompletedEvent{
			CycleID:      fmt.Sprintf("%d", cycleID),
			StartedAt:    startedAt,
			FinishedAt:   finishedAt,
			TradersTried: tradersOK + tradersFailed,
			TradersOK:    tradersOK,
		}
		if err := cache.PublishCycleCompleted(ctx, event); err != nil {
			log.Warnf("cycle.completed publish failed", "cycleId", cycleID, "error", err.Error())
		}
	}

	log.Infof("ingestor starting", "service", cfg.ServiceName, "traders", len(cfg.ScraperLeadIDs), "interval", cfg.Interval().String())
	go sched.Run(ctx)

	<-ctx.Done()
	log.Infof("shutdown signal received, draining in-flight cycle")
	sched.Stop()
	log.Infof("ingestor stopped")
}

// snapshotPortfolios records one equity-curve point and recomputes metrics
// for every tracked portfolio at the end of a cycle (spec §4.M).
func snapshotPortfolios(ctx context.Context, s *store.Store, pm *simulation.PortfolioManager, takenAt time.Time) error {
	portfolios, err := s.ListPortfolios(ctx)
	if err != nil {
		return err
	}
	for _, p := range portfolios {
		if err := pm.Snapshot(ctx, p.ID, takenAt); err != nil {
			return fmt.Errorf("snapshot portfolio %s: %w", p.ID, err)
		}
	}
	return nil
}
