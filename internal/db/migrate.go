package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/prudhivi99/bookstore/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrateUp applies all pending migrations on a dedicated connection.
// It returns false when the schema was already current.
func MigrateUp(cfg config.DatabaseConfig) (bool, error) {
	return runMigration(cfg, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown reverts every migration.
func MigrateDown(cfg config.DatabaseConfig) (bool, error) {
	return runMigration(cfg, func(m *migrate.Migrate) error { return m.Down() })
}

func runMigration(cfg config.DatabaseConfig, step func(*migrate.Migrate) error) (bool, error) {
	m, err := newMigrate(cfg)
	if err != nil {
		return false, err
	}
	defer m.Close()

	err = step(m)
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to migrate: %w", err)
	}
	return true, nil
}

func newMigrate(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var (
		conn   *sql.DB
		driver database.Driver
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		conn, err = sql.Open(config.DriverPostgres, cfg.PostgresDSN())
		if err == nil {
			driver, err = migratepg.WithInstance(conn, &migratepg.Config{})
		}
	case config.DriverSQLite:
		conn, err = sql.Open(config.DriverSQLite, sqliteDSN(cfg.SQLitePath))
		if err == nil {
			driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
