package commands

import (
	"database/sql"

	"github.com/teranos/tecflow/config"
	"github.com/teranos/tecflow/db"
	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/logger"
)

// openDatabase opens the configured Postgres database and applies pending
// migrations. Uses logger.Logger for db operations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	database, err := db.Open(cfg.Database, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s on %s:%d",
			cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return database, nil
}
