// Package pulse runs the ingestion pipeline on a recurring schedule: one run
// immediately on start, then one per interval. Runs are strictly sequential;
// a slow run delays the next rather than overlapping it.
package pulse

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tecflow/db"
	"github.com/teranos/tecflow/pipeline"
	"github.com/teranos/tecflow/sym"
)

// RunnerConfig contains configuration for the recurring runner
type RunnerConfig struct {
	Interval time.Duration // time between run starts (default: 6 hours)
}

// DefaultRunnerConfig returns sensible defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interval: 6 * time.Hour,
	}
}

// Runner executes pipeline runs on an interval
type Runner struct {
	orchestrator *pipeline.Orchestrator
	opts         pipeline.Options
	interval     time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	logger       *zap.SugaredLogger

	mu        sync.Mutex
	runCount  int64
	lastRunAt time.Time
}

// NewRunner creates a runner with a parent context. opts apply to every run.
func NewRunner(ctx context.Context, o *pipeline.Orchestrator, opts pipeline.Options, cfg RunnerConfig, log *zap.SugaredLogger) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRunnerConfig().Interval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	runnerCtx, cancel := context.WithCancel(ctx)

	return &Runner{
		orchestrator: o,
		opts:         opts,
		interval:     cfg.Interval,
		ctx:          runnerCtx,
		cancel:       cancel,
		logger:       log,
	}
}

// Start begins the run loop. The first run starts immediately.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.loop()
	r.logger.Infow("Recurring ingestion started",
		"symbol", sym.Pulse,
		"interval", r.interval,
	)
}

// Stop cancels the loop and waits for an in-flight run to finish
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.logger.Infow("Recurring ingestion stopped",
		"symbol", sym.Pulse,
		"runs", r.RunCount(),
	)
}

// RunCount returns the number of runs completed so far
func (r *Runner) RunCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runCount
}

// LastRunAt returns when the most recent run started
func (r *Runner) LastRunAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRunAt
}

func (r *Runner) loop() {
	defer r.wg.Done()

	r.runOnce()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.runOnce()
		}
	}
}

// runOnce executes one pipeline run. Run failures are logged, never fatal to
// the loop; the fatal-before-work database error also just waits for the next
// interval, since the database may come back.
func (r *Runner) runOnce() {
	r.mu.Lock()
	r.lastRunAt = time.Now()
	count := r.runCount + 1
	r.mu.Unlock()

	result, err := r.orchestrator.Run(r.ctx, r.opts)
	if err != nil {
		// A closed handle during shutdown is the runner being stopped, not a
		// database outage; keep it out of the error stream.
		if db.IsDatabaseClosed(err) {
			r.logger.Infow("Scheduled run skipped, database closed during shutdown",
				"symbol", sym.Pulse,
				"run", count,
			)
		} else {
			r.logger.Errorw("Scheduled run aborted",
				"symbol", sym.Pulse,
				"run", count,
				"error", err,
			)
		}
	} else {
		r.logger.Infow("Scheduled run complete",
			"symbol", sym.Pulse,
			"run", count,
			"acquired", result.Acquired,
			"loaded", result.Loaded,
			"rows", result.RowsLoaded,
			"failed", len(result.Failed),
			"duration", result.Duration.Round(time.Millisecond),
			"success", result.Success(),
		)
	}

	r.mu.Lock()
	r.runCount = count
	r.mu.Unlock()
}
