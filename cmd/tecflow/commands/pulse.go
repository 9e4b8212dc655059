package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/tecflow/config"
	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/logger"
	"github.com/teranos/tecflow/pipeline"
	"github.com/teranos/tecflow/pulse"
	"github.com/teranos/tecflow/sym"
)

// PulseCmd groups the recurring-ingestion commands
var PulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: sym.Pulse + " Manage recurring ingestion",
	Long: sym.Pulse + ` pulse — recurring capacity-nomination ingestion.

Runs the full ingestion pipeline immediately and then once per interval,
sequentially, until interrupted. A failed run waits for the next interval
rather than stopping the loop.

Example:
  tecflow pulse start               # Run every 6 hours in foreground
  tecflow pulse start --interval 1  # Run hourly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// PulseStartCmd starts the recurring runner in the foreground
var PulseStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recurring ingestion in foreground",
	Long: `Start the recurring ingestion loop in foreground mode.

The loop runs one full pipeline pass immediately, then one per interval,
and shuts down cleanly on Ctrl+C or SIGTERM, letting an in-flight run
finish first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		intervalHours, _ := cmd.Flags().GetInt("interval")
		if intervalHours <= 0 {
			intervalHours = cfg.Pulse.IntervalHours
		}
		interval := time.Duration(intervalHours) * time.Hour

		o, database, err := buildOrchestrator(cfg, false)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		runner := pulse.NewRunner(ctx, o, pipeline.Options{
			DaysBack: cfg.Pipeline.DaysBack,
		}, pulse.RunnerConfig{Interval: interval}, logger.Logger)
		runner.Start()

		fmt.Printf("%s Recurring ingestion started\n", sym.Pulse)
		fmt.Printf("  Interval: %v\n", interval)
		fmt.Printf("  Window: %d day(s)\n", cfg.Pipeline.DaysBack)
		fmt.Printf("  Data directory: %s\n", cfg.Pipeline.DataDir)
		fmt.Printf("\n%s Press Ctrl+C for graceful shutdown\n\n", sym.Pulse)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Printf("\n%s Shutting down after current run...\n", sym.Pulse)
		runner.Stop()

		fmt.Printf("%s Stopped after %d run(s)\n", sym.Pulse, runner.RunCount())
		return nil
	},
}

func init() {
	PulseStartCmd.Flags().Int("interval", 0, "Hours between runs (default from config: 6)")
	PulseCmd.AddCommand(PulseStartCmd)
}
