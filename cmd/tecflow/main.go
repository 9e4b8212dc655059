package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teranos/tecflow/cmd/tecflow/commands"
	"github.com/teranos/tecflow/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tecflow",
	Short: "tecflow - TEC capacity-nomination ingestion service",
	Long: `tecflow - Pipeline operationally-available capacity data into Postgres.

tecflow fetches capacity-nomination CSV artifacts from the pipeline
operator's posting site, validates them against a fixed target schema and
loads the normalized rows into the tec_data table.

Available commands:
  run    - Run one ingestion pass (fetch, validate, load)
  pulse  - Recurring ingestion (run every N hours until interrupted)
  db     - Database operations (migrate, stats)

Examples:
  tecflow run                   # One full pass over the last 3 gas days
  tecflow run --skip-load       # Validate artifacts without a database
  tecflow pulse start           # Keep ingesting every 6 hours
  tecflow db stats              # Row counts of loaded data`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Credentials commonly arrive via a local .env file in deployments;
		// a missing file is fine.
		_ = godotenv.Load()

		jsonOutput, _ := cmd.Flags().GetBool("json")
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Machine-readable output and JSON logs")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.PulseCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
