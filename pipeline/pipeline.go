// Package pipeline orchestrates one ingestion run: acquire the artifact
// window, validate each artifact structurally, load the survivors. Artifact
// failures are collected, never raised; only an unreachable database before
// any work begins aborts a run.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tecflow/acquire"
	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/feed"
	"github.com/teranos/tecflow/schema"
	"github.com/teranos/tecflow/store"
	"github.com/teranos/tecflow/sym"
)

// State is the phase an orchestrator run is in
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateValidating
	StateLoading
	StateSummarized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateValidating:
		return "validating"
	case StateLoading:
		return "loading"
	case StateSummarized:
		return "summarized"
	default:
		return "unknown"
	}
}

// Options selects what one run does
type Options struct {
	DaysBack    int  // sliding window size, today inclusive
	SkipAcquire bool // reuse canonical files already in the data directory
	SkipLoad    bool // validate only, touch no database
}

// Failure records one artifact that did not make it through the run
type Failure struct {
	Artifact string
	Reason   string
}

// RunResult is the summary of one run. Failures are data, not errors.
type RunResult struct {
	Acquired    int
	Validated   int
	Loaded      int
	RowsLoaded  int
	Failed      []Failure
	Warnings    []string
	LoadSkipped bool
	Started     time.Time
	Duration    time.Duration
}

// Success reports whether at least one artifact made it all the way through
// (or through validation, when loading was skipped).
func (r *RunResult) Success() bool {
	if r.LoadSkipped {
		return r.Validated > 0
	}
	return r.Loaded > 0
}

// Orchestrator drives acquire, schema and store through the run states
type Orchestrator struct {
	fetcher *acquire.Fetcher
	store   *store.Store
	db      *sql.DB
	logger  *zap.SugaredLogger

	state State
}

// New builds an orchestrator. st and database may be nil when every run will
// skip loading.
func New(fetcher *acquire.Fetcher, st *store.Store, database *sql.DB, log *zap.SugaredLogger) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		fetcher: fetcher,
		store:   st,
		db:      database,
		logger:  log,
		state:   StateIdle,
	}
}

// State returns the current run phase
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes one pipeline pass. The returned error is non-nil only for the
// fatal-before-work case: loading enabled but the database unreachable. Every
// other failure lands in the result's Failed list.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*RunResult, error) {
	result := &RunResult{
		LoadSkipped: opts.SkipLoad,
		Started:     time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.Started)
		o.state = StateSummarized
	}()

	if !opts.SkipLoad {
		if o.db == nil {
			return nil, errors.WithStack(errors.ErrDatabaseUnavailable)
		}
		if err := o.db.PingContext(ctx); err != nil {
			return nil, errors.Wrap(
				errors.Wrap(errors.ErrDatabaseUnavailable, err.Error()),
				"database unreachable before run")
		}
		if err := o.store.EnsureTable(ctx); err != nil {
			return nil, errors.Wrap(err, "prepare target relation")
		}
	}

	// Acquiring
	o.state = StateAcquiring
	paths, fetchFailures, err := o.collectArtifacts(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Acquired = len(paths)
	result.Failed = append(result.Failed, fetchFailures...)

	if len(paths) == 0 {
		o.logger.Warnw("No artifacts in window, nothing to do",
			"symbol", sym.Feed,
			"days_back", opts.DaysBack,
		)
		o.logSummary(result)
		return result, nil
	}

	// Validating
	o.state = StateValidating
	var valid []string
	for _, path := range paths {
		if err := o.validateArtifact(path); err != nil {
			o.logger.Warnw("Artifact rejected",
				"symbol", sym.Check,
				"path", path,
				"error", err,
			)
			result.Failed = append(result.Failed, Failure{
				Artifact: filepath.Base(path),
				Reason:   err.Error(),
			})
			continue
		}
		valid = append(valid, path)
	}
	result.Validated = len(valid)

	if len(valid) == 0 || opts.SkipLoad {
		o.logSummary(result)
		return result, nil
	}

	// Loading
	o.state = StateLoading
	for _, path := range valid {
		rows, warnings, err := o.store.LoadFile(ctx, path)
		result.RowsLoaded += rows
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			o.logger.Errorw("Artifact load failed",
				"symbol", sym.Load,
				"path", path,
				"rows_committed", rows,
				"error", err,
			)
			result.Failed = append(result.Failed, Failure{
				Artifact: filepath.Base(path),
				Reason:   err.Error(),
			})
			continue
		}
		result.Loaded++
	}

	o.logSummary(result)
	return result, nil
}

// collectArtifacts yields artifact paths for this run, either by fetching the
// window or by scanning the data directory for canonical filenames. Slots
// whose fetch failed come back as failures so the run summary reports them;
// empty slots are expected absence and stay out of the failure set.
func (o *Orchestrator) collectArtifacts(ctx context.Context, opts Options) ([]string, []Failure, error) {
	if opts.SkipAcquire {
		paths, err := o.scanDataDir()
		return paths, nil, err
	}

	results := o.fetcher.AcquireWindow(ctx, opts.DaysBack, feed.Catalog, time.Now())

	var failures []Failure
	for _, r := range results {
		if r.Outcome == acquire.OutcomeFailed {
			failures = append(failures, Failure{
				Artifact: r.Identity.String(),
				Reason:   r.Err.Error(),
			})
		}
	}
	return acquire.Written(results), failures, nil
}

// scanDataDir lists files in the data directory whose names parse as
// canonical artifact names, sorted for deterministic processing order.
func (o *Orchestrator) scanDataDir() ([]string, error) {
	dir := o.fetcher.DataDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "scan data directory %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := feed.ParseFilename(entry.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// validateArtifact runs the cheap structural check. The loader re-runs the
// full coercion pass on its own.
func (o *Orchestrator) validateArtifact(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	return schema.Validate(records)
}

func (o *Orchestrator) logSummary(result *RunResult) {
	o.logger.Infow("Run summarized",
		"symbol", sym.Feed,
		"acquired", result.Acquired,
		"validated", result.Validated,
		"loaded", result.Loaded,
		"rows", result.RowsLoaded,
		"failed", len(result.Failed),
		"warnings", len(result.Warnings),
		"success", result.Success(),
	)
}
