package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"barangay-events/internal/config"
	"barangay-events/internal/logger"
	"barangay-events/internal/models"
)

const retryDelay = 2 * time.Second

// IsPostgres reports whether cfg selects the Postgres driver.
func IsPostgres(cfg config.DatabaseConfig) bool {
	return cfg.Driver == "postgres" || cfg.Driver == "postgresql"
}

// Open builds a bun.DB for the configured driver without touching the network.
func Open(cfg config.DatabaseConfig) (*bun.DB, error) {
	var db *bun.DB

	switch cfg.Driver {
	case "sqlite", "sqlite3":
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite serializes writers, and an in-memory database lives only as
		// long as its single connection.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetConnMaxLifetime(0)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case "postgres", "postgresql":
		sqldb, err := sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return db, nil
}

// Connect opens the database and pings it, retrying up to cfg.ConnectRetries times.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to %s (attempt %d/%d)", cfg.Driver, i+1, attempts))

		if err = db.PingContext(ctx); err == nil {
			log.Info("DATABASE", fmt.Sprintf("✅ %s connection successful", cfg.Driver))
			return db, nil
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s: %v", cfg.Driver, err))

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				db.Close()
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	db.Close()
	return nil, fmt.Errorf("connect to %s after %d attempts: %w", cfg.Driver, attempts, err)
}

// SQLite only guarantees ids are never reused with AUTOINCREMENT.
const sqliteEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(200) NOT NULL,
	description VARCHAR(1000) NOT NULL,
	event_date TIMESTAMP NOT NULL,
	location VARCHAR(200) NOT NULL,
	organizer VARCHAR(100) NOT NULL,
	contact_info VARCHAR(100),
	is_public BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// EnsureSchema creates the events table and its date index if missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	var err error
	if db.Dialect().Name() == dialect.SQLite {
		_, err = db.ExecContext(ctx, sqliteEventsTable)
	} else {
		_, err = db.NewCreateTable().
			Model((*models.Event)(nil)).
			IfNotExists().
			Exec(ctx)
	}
	if err != nil {
		return fmt.Errorf("create events table: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_events_event_date ON events (event_date)`)
	if err != nil {
		return fmt.Errorf("create events index: %w", err)
	}
	return nil
}
