package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/tecflow/config"
	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/feed"
	"github.com/teranos/tecflow/store"
	"github.com/teranos/tecflow/sym"
)

// DbCmd groups database operations
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the tecflow database",
	Long: sym.DB + ` db — Manage the target Postgres database.

Examples:
  tecflow db migrate              # Apply pending schema migrations
  tecflow db stats                # Show row counts for loaded data`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  "Connect to the configured Postgres database and apply any schema migrations that have not run yet.",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show loaded-data statistics",
	Long:  "Display total and per-cycle row counts of the tec_data table.",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	// openDatabase migrates as part of opening
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("%s Migrations applied to %s on %s:%d\n",
		sym.DB, cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	st, err := store.New(database, 0, nil).ReadStats(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to read statistics")
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database:   %s on %s:%d\n", cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)
	fmt.Printf("Total rows: %d\n\n", st.TotalRows)

	if len(st.PerCycle) == 0 {
		fmt.Println("No data loaded yet.")
		return nil
	}

	fmt.Println("Rows per cycle:")
	for _, code := range st.CycleCodes() {
		name := fmt.Sprintf("cycle_%d", code)
		if cycle, ok := feed.CycleByCode(code); ok {
			name = cycle.Name
		}
		fmt.Printf("  %-12s (code %d): %d\n", name, code, st.PerCycle[code])
	}
	return nil
}
