package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/concurrency"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/telemetry"
)

// Scheduler drives a fixed-cadence ingest cycle over every configured
// trader with bounded concurrency, never overlapping cycles (spec §4.B).
type Scheduler struct {
	ingestor    *Ingestor
	log         *logger.Logger
	leadIDs     []string
	concurrency int
	interval    time.Duration
	timeout     time.Duration

	// PositionMonitor runs once after every completed cycle (spec §4.B:
	// "After all traders in the cycle complete, run the Position
	// Monitor once"). Nil is a no-op, so the scheduler can be exercised
	// before the simulation engine is wired in.
	PositionMonitor func(ctx context.Context) error

	// OnCycleComplete fires once per finished cycle, after PositionMonitor.
	// Nil is a no-op. cmd/ingestor wires it to the end-of-cycle portfolio
	// snapshot and a publish on the cycle.completed pub/sub topic, so the
	// scheduler does not import the cache/store types directly.
	OnCycleComplete func(ctx context.Context, cycleID int64, startedAt, finishedAt time.Time, tradersOK, tradersFailed int)

	cycleMu    sync.Mutex
	running    atomic.Bool
	cycleCount atomic.Int64

	breakersMu sync.Mutex
	breakers   map[string]*concurrency.CircuitBreaker

	stopOnce sync.Once
	stopCh   chan struct{}
	drainWg  sync.WaitGroup
}

// New builds a Scheduler. timeout is the per-endpoint scrape deadline
// T_e; the graceful-stop drain budget is 2×timeout per spec §5.
func New(ing *Ingestor, log *logger.Logger, leadIDs []string, concurrency int, interval, timeout time.Duration) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		ingestor:    ing,
		log:         log,
		leadIDs:     leadIDs,
		concurrency: concurrency,
		interval:    interval,
		timeout:     timeout,
		breakers:    make(map[string]*concurrency.CircuitBreaker),
		stopCh:      make(chan struct{}),
	}
}

// breakerFor returns the per-trader circuit breaker, creating it on first
// use. A trader whose endpoint fails three cycles running is skipped for
// ten minutes rather than retried every cycle regardless.
func (s *Scheduler) breakerFor(leadID string) *concurrency.CircuitBreaker {
	s.breakersMu.Lock()
	defer s.breakersMu.Unlock()
	cb, ok := s.breakers[leadID]
	if !ok {
		cb = concurrency.NewCircuitBreaker(concurrency.CircuitBreakerConfig{Name: leadID, FailureThreshold: 3, RecoveryTimeout: 10 * time.Minute})
		s.breakers[leadID] = cb
	}
	return cb
}

// Run starts the ticker loop and blocks until ctx is cancelled or Stop is
// called. It runs one cycle immediately, then every interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.runTick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// Stop signals the loop to exit and waits up to 2×timeout for the
// in-flight cycle, if any, to drain.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	drained := make(chan struct{})
	go func() {
		s.drainWg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(2 * s.timeout):
		s.log.Warnf("stop drain deadline exceeded, exiting with cycle still in flight")
	}
}

// runTick attempts to start a cycle, skipping it (CycleOverlap) if the
// previous one is still running.
func (s *Scheduler) runTick(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		overlap := errs.CycleOverlap("previous cycle still running")
		s.log.Warnf(overlap.Error())
		return
	}
	s.drainWg.Add(1)
	go func() {
		defer s.cycleMu.Unlock()
		defer s.drainWg.Done()
		s.runCycle(ctx)
	}()
}

func (s *Scheduler) runCycle(ctx context.Context) {
	ctx, cycleSpan := telemetry.StartCycle(ctx)
	defer cycleSpan.End()

	cycleID := s.cycleCount.Add(1)
	start := time.Now().UTC()
	s.log.Infof("cycle started", "cycleId", cycleID, "traders", len(s.leadIDs))

	timeRangeEnd := start.UnixMilli()
	timeRangeStart := start.Add(-24 * time.Hour).UnixMilli()

	var ok, failed atomic.Int64
	for _, batch := range batches(s.leadIDs, s.concurrency) {
		var wg sync.WaitGroup
		for _, leadID := range batch {
			wg.Add(1)
			go func(leadID string) {
				defer wg.Done()
				fetchCtx, fetchSpan := telemetry.StartTraderFetch(ctx, leadID)
				err := s.breakerFor(leadID).Call(func() error {
					return s.ingestor.IngestTrader(fetchCtx, leadID, timeRangeStart, timeRangeEnd)
				})
				telemetry.EndWithError(fetchSpan, err)
				if err != nil {
					failed.Add(1)
					s.log.Errorf("trader ingest failed", err, "leadId", leadID, "cycleId", cycleID)
					return
				}
				ok.Add(1)
			}(leadID)
		}
		wg.Wait()
	}

	if err := s.ingestor.RecomputeAggregates(ctx); err != nil {
		s.log.Errorf("symbol aggregate recomputation failed", err, "cycleId", cycleID)
	}

	finished := time.Now().UTC()
	s.log.Infof("cycle finished", "cycleId", cycleID, "ok", ok.Load(), "failed", failed.Load(), "durationMs", time.Since(start).Milliseconds())

	if s.PositionMonitor != nil {
		if err := s.PositionMonitor(ctx); err != nil {
			s.log.Errorf("position monitor failed", err, "cycleId", cycleID)
		}
	}

	if s.OnCycleComplete != nil {
		s.OnCycleComplete(ctx, cycleID, start, finished, int(ok.Load()), int(failed.Load()))
	}
}

// batches splits ids into chunks of at most size, preserving order.
func batches(ids []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var out [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}
