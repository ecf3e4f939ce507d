package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/bookstore/internal/config"
)

// ErrNotFound is returned by updates and deletes that matched no row.
var ErrNotFound = errors.New("not found")

type Database struct {
	Conn   *sqlx.DB
	Driver string
}

// Open connects to the configured database. It does not run migrations.
func Open(cfg config.DatabaseConfig, logger zerolog.Logger) (*Database, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresDB(cfg.PostgresDSN(), logger)
	case config.DriverSQLite:
		return NewSQLiteDB(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewPostgresDB(dsn string, logger zerolog.Logger) (*Database, error) {
	conn, err := sqlx.Open(config.DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("✅ Connected to PostgreSQL")
	return &Database{Conn: conn, Driver: config.DriverPostgres}, nil
}

// NewSQLiteDB opens a file-backed SQLite database with foreign keys on and
// IMMEDIATE transactions, limited to a single connection.
func NewSQLiteDB(path string, logger zerolog.Logger) (*Database, error) {
	conn, err := sqlx.Open(config.DriverSQLite, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite allows one writer at a time
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	logger.Info().Str("path", path).Msg("✅ Connected to SQLite")
	return &Database{Conn: conn, Driver: config.DriverSQLite}, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL", path)
}

// txOptions returns the isolation used for order placement.
func (d *Database) txOptions() *sql.TxOptions {
	if d.Driver == config.DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	}
	return nil
}

func (d *Database) Close() error {
	return d.Conn.Close()
}
