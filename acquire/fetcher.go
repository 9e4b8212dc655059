// Package acquire walks the sliding (gas day × cycle) window and pulls
// capacity-nomination artifacts from the operator, classifying every slot as
// acquired, not-posted, or failed. One slot's failure never aborts the batch.
package acquire

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/feed"
	"github.com/teranos/tecflow/internal/httpclient"
	"github.com/teranos/tecflow/sym"
)

// Sentinel is the literal token a real CSV body starts with. When a cycle has
// not posted yet the operator answers 200 with an HTML page instead; the
// sentinel is the only reliable discriminator.
const Sentinel = `"Loc"`

// Outcome classifies one (gas day, cycle) fetch slot
type Outcome int

const (
	// OutcomeAcquired means a sentinel-matching artifact was persisted
	OutcomeAcquired Outcome = iota
	// OutcomeNoData means the slot has no posted data. Expected, not an error.
	OutcomeNoData
	// OutcomeFailed means the fetch could not complete (transport failure,
	// non-2xx). Retried only on the next scheduled run.
	OutcomeFailed
)

// SlotResult is the classification of one fetch slot
type SlotResult struct {
	Identity feed.ArtifactIdentity
	Outcome  Outcome
	Path     string // set when Outcome is OutcomeAcquired
	Err      error  // the failure for OutcomeFailed; errors.ErrNoData for OutcomeNoData
}

// Config tunes a Fetcher
type Config struct {
	Timeout              time.Duration // per-attempt timeout (default 30s)
	MaxRequestsPerMinute int           // polite pacing toward the operator; 0 disables
	Client               *httpclient.Client
}

// DefaultConfig returns the fetch settings the original service shipped with
func DefaultConfig() Config {
	return Config{
		Timeout:              30 * time.Second,
		MaxRequestsPerMinute: 60,
	}
}

// Fetcher downloads artifacts into a local data directory
type Fetcher struct {
	client  *httpclient.Client
	dataDir string
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewFetcher creates a fetcher writing into dataDir, creating the directory
// if needed. cfg.Client overrides the default transport (tests use
// httpclient.WrapClient around an httptest server).
func NewFetcher(dataDir string, cfg Config, log *zap.SugaredLogger) (*Fetcher, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data directory %s", dataDir)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = httpclient.New(timeout)
	}

	var limiter *rate.Limiter
	if cfg.MaxRequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.MaxRequestsPerMinute)/60.0), 1)
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Fetcher{
		client:  client,
		dataDir: dataDir,
		limiter: limiter,
		logger:  log,
	}, nil
}

// DataDir returns the directory artifacts are written into
func (f *Fetcher) DataDir() string {
	return f.dataDir
}

// AcquireWindow fetches every slot of the last daysBack gas days (today
// inclusive, walking backward) × the given cycles, in that fixed order.
// Cancellation is honored between slots, never mid-call. The returned slice
// has one entry per slot, in iteration order.
func (f *Fetcher) AcquireWindow(ctx context.Context, daysBack int, cycles []feed.CycleDefinition, now time.Time) []SlotResult {
	results := make([]SlotResult, 0, daysBack*len(cycles))

	for i := 0; i < daysBack; i++ {
		day := now.AddDate(0, 0, -i)
		for _, cycle := range cycles {
			if ctx.Err() != nil {
				return results
			}
			results = append(results, f.fetchSlot(ctx, day, cycle))
		}
	}

	acquired, noData, failed := 0, 0, 0
	for _, r := range results {
		switch r.Outcome {
		case OutcomeAcquired:
			acquired++
		case OutcomeNoData:
			noData++
		case OutcomeFailed:
			failed++
		}
	}
	f.logger.Infow("Acquisition window complete",
		"symbol", sym.Fetch,
		"days_back", daysBack,
		"slots", len(results),
		"acquired", acquired,
		"no_data", noData,
		"failed", failed,
	)

	return results
}

// fetchSlot issues one fetch attempt and classifies the response
func (f *Fetcher) fetchSlot(ctx context.Context, day time.Time, cycle feed.CycleDefinition) SlotResult {
	identity := feed.ArtifactIdentity{GasDay: day, Cycle: cycle}
	result := SlotResult{Identity: identity}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			result.Outcome = OutcomeFailed
			result.Err = errors.Wrap(err, "rate limiter")
			return result
		}
	}

	url, filename := feed.Locate(day, cycle)

	resp, err := f.client.Get(url)
	if err != nil {
		f.logger.Warnw("Fetch failed",
			"symbol", sym.Fetch,
			"gas_day", day.Format("2006-01-02"),
			"cycle", cycle.String(),
			"error", err,
		)
		result.Outcome = OutcomeFailed
		result.Err = errors.Wrapf(err, "fetch %s", identity)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warnw("Fetch returned non-2xx",
			"symbol", sym.Fetch,
			"gas_day", day.Format("2006-01-02"),
			"cycle", cycle.String(),
			"status", resp.StatusCode,
		)
		result.Outcome = OutcomeFailed
		result.Err = errors.Wrapf(errors.Newf("status %d", resp.StatusCode), "fetch %s", identity)
		return result
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = errors.Wrapf(err, "read body for %s", identity)
		return result
	}

	if !strings.HasPrefix(string(body), Sentinel) {
		// The operator answers with an HTML page when the cycle has not
		// posted yet. Expected absence, nothing to write.
		f.logger.Debugw("No data posted for slot",
			"symbol", sym.Fetch,
			"gas_day", day.Format("2006-01-02"),
			"cycle", cycle.String(),
		)
		result.Outcome = OutcomeNoData
		result.Err = errors.Wrapf(errors.ErrNoData, "%s", identity)
		return result
	}

	path := filepath.Join(f.dataDir, filename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = errors.Wrapf(err, "persist %s", identity)
		return result
	}

	f.logger.Infow("Artifact acquired",
		"symbol", sym.Fetch,
		"gas_day", day.Format("2006-01-02"),
		"cycle", cycle.String(),
		"path", path,
		"bytes", len(body),
	)
	result.Outcome = OutcomeAcquired
	result.Path = path
	return result
}

// Written returns the storage paths of the acquired slots, in slot order
func Written(results []SlotResult) []string {
	var paths []string
	for _, r := range results {
		if r.Outcome == OutcomeAcquired {
			paths = append(paths, r.Path)
		}
	}
	return paths
}
