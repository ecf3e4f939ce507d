// Package testutil holds helpers shared by package tests: a migrated SQLite
// database per test and a fixed clock.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/bookstore/internal/config"
	"github.com/prudhivi99/bookstore/internal/db"
	"github.com/prudhivi99/bookstore/internal/models"
)

// NewDatabase creates a migrated SQLite database in t.TempDir().
func NewDatabase(t *testing.T) *db.Database {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "bookstore.db"),
	}

	_, err := db.MigrateUp(cfg)
	require.NoError(t, err, "migrate up")

	database, err := db.NewSQLiteDB(cfg.SQLitePath, zerolog.Nop())
	require.NoError(t, err, "open database")
	t.Cleanup(func() { database.Close() })

	return database
}

// AddBook inserts a book priced from a decimal string and returns its ID.
func AddBook(t *testing.T, database *db.Database, title, price string) int {
	t.Helper()

	book := models.Book{
		Title:  title,
		Author: title + " Author",
		Price:  decimal.RequireFromString(price),
		Stock:  3,
	}
	require.NoError(t, db.NewBookRepository(database).Create(context.Background(), &book))
	return book.ID
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, database *db.Database, table string) int {
	t.Helper()

	var n int
	require.NoError(t, database.Conn.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

// FixedClock returns a clock that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// RequireDecimal fails the test unless got equals the decimal written as want.
func RequireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
