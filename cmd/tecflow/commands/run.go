package commands

import (
	"database/sql"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tecflow/acquire"
	"github.com/teranos/tecflow/config"
	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/logger"
	"github.com/teranos/tecflow/pipeline"
	"github.com/teranos/tecflow/store"
	"github.com/teranos/tecflow/sym"
)

// RunCmd executes one ingestion pass: fetch the artifact window, validate,
// load into Postgres.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: sym.Feed + " Run one ingestion pass",
	Long: sym.Feed + ` run — fetch, validate and load capacity-nomination artifacts.

Walks the last N gas days (today inclusive) across all posting cycles,
downloads the artifacts the operator has published, validates them against
the target schema and loads the rows into the tec_data table.

Exit code 0 when at least one artifact made it through, 1 otherwise.

Examples:
  tecflow run                    # Full pass over the default 3-day window
  tecflow run --days 7           # Wider window
  tecflow run --skip-fetch       # Reuse files already in the data directory
  tecflow run --skip-load        # Validate only, touch no database`,
	RunE: runPipeline,
}

var (
	runDaysFlag      int
	runDataDirFlag   string
	runSkipFetchFlag bool
	runSkipLoadFlag  bool
)

func init() {
	RunCmd.Flags().IntVar(&runDaysFlag, "days", 0, "Gas days to fetch, today inclusive (default from config: 3)")
	RunCmd.Flags().StringVar(&runDataDirFlag, "data-dir", "", "Directory for fetched artifacts (default from config: data)")
	RunCmd.Flags().BoolVar(&runSkipFetchFlag, "skip-fetch", false, "Skip acquisition, reuse files already in the data directory")
	RunCmd.Flags().BoolVar(&runSkipLoadFlag, "skip-load", false, "Skip loading, validate artifacts only")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if runDaysFlag > 0 {
		cfg.Pipeline.DaysBack = runDaysFlag
	}
	if runDataDirFlag != "" {
		cfg.Pipeline.DataDir = runDataDirFlag
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if !jsonOutput {
		pterm.DefaultHeader.WithFullWidth().Printf("TEC Capacity Ingestion")
		pterm.Println()
		pterm.Info.Printf("Window: %d day(s), data directory: %s", cfg.Pipeline.DaysBack, cfg.Pipeline.DataDir)
		if runSkipFetchFlag {
			pterm.Warning.Println("Acquisition skipped: reusing local artifacts")
		}
		if runSkipLoadFlag {
			pterm.Warning.Println("Loading skipped: validate-only pass")
		}
		pterm.Println()
	}

	o, database, err := buildOrchestrator(cfg, runSkipLoadFlag)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	result, err := o.Run(cmd.Context(), pipeline.Options{
		DaysBack:    cfg.Pipeline.DaysBack,
		SkipAcquire: runSkipFetchFlag,
		SkipLoad:    runSkipLoadFlag,
	})
	if err != nil {
		return err
	}

	if !jsonOutput {
		printRunSummary(result)
	}

	if !result.Success() {
		return errors.New("no artifact made it through the run")
	}
	return nil
}

// buildOrchestrator wires fetcher, store and database per the configuration.
// The database stays closed in skip-load mode.
func buildOrchestrator(cfg *config.Config, skipLoad bool) (*pipeline.Orchestrator, *sql.DB, error) {
	fetchCfg := acquire.Config{
		Timeout:              time.Duration(cfg.Pipeline.FetchTimeoutSeconds) * time.Second,
		MaxRequestsPerMinute: cfg.Pulse.HTTPMaxRequestsPerMinute,
	}
	fetcher, err := acquire.NewFetcher(cfg.Pipeline.DataDir, fetchCfg, logger.Logger)
	if err != nil {
		return nil, nil, err
	}

	if skipLoad {
		return pipeline.New(fetcher, nil, nil, logger.Logger), nil, nil
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(database, cfg.Pipeline.BatchSize, logger.Logger)
	return pipeline.New(fetcher, st, database, logger.Logger), database, nil
}

func printRunSummary(result *pipeline.RunResult) {
	pterm.Println()
	if result.Success() {
		pterm.Success.Printf("Run complete in %v", result.Duration.Round(time.Millisecond))
	} else {
		pterm.Error.Printf("Run failed in %v", result.Duration.Round(time.Millisecond))
	}
	pterm.Println()

	pterm.Info.Printf("Summary:")
	pterm.Printf("  Artifacts acquired:  %d\n", result.Acquired)
	pterm.Printf("  Artifacts validated: %d\n", result.Validated)
	if !result.LoadSkipped {
		pterm.Printf("  Artifacts loaded:    %d\n", result.Loaded)
		pterm.Printf("  Rows inserted:       %d\n", result.RowsLoaded)
	}
	pterm.Printf("  Failures:            %d\n", len(result.Failed))

	for _, f := range result.Failed {
		pterm.Warning.Printf("  %s: %s", f.Artifact, f.Reason)
	}
	if n := len(result.Warnings); n > 0 {
		pterm.Println()
		pterm.Info.Printf("%d data-quality warning(s); rerun with -v for details", n)
	}
}
