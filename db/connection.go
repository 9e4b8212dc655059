package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/teranos/tecflow/config"
	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/sym"
)

// PingTimeout bounds the reachability check in Open. An unreachable database
// is the one fatal configuration failure, so it must surface quickly and
// before any pipeline work begins.
const PingTimeout = 5 * time.Second

// Open opens the target Postgres database and verifies it is reachable.
// If logger is provided, logs database operations; otherwise operates silently.
func Open(cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database",
			"host", cfg.Host,
			"port", cfg.Port,
			"name", cfg.Name,
			"symbol", sym.DB,
		)
	}

	database, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	database.SetMaxOpenConns(4)
	database.SetMaxIdleConns(2)
	database.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrDatabaseUnavailable, "ping %s:%d/%s: %v", cfg.Host, cfg.Port, cfg.Name, err),
			"check DB_HOST/DB_PORT/DB_USER/DB_PASSWORD, or run with --skip-load")
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"host", cfg.Host,
			"name", cfg.Name,
			"symbol", sym.DB,
		)
	}

	return database, nil
}
