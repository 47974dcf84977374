// Package jobs is the export job ledger. The platform runs exports remotely
// and only hands back an operation name; the ledger keeps those handles so
// the user can find them again after the browser tab is gone.
package jobs

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Repository provides access to the export job ledger
type Repository struct {
	dbConn *sqlx.DB
}

// NewRepository wraps an open ledger connection
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{dbConn: db}
}

// Close terminates the ledger connection
func (repo *Repository) Close() error {
	if err := repo.dbConn.Close(); err != nil {
		return fmt.Errorf("closing job ledger: %w", err)
	}
	return nil
}

// New opens the SQLite ledger at the given path and applies all pending
// migrations. A single connection is enough for a single-user tool.
func New(name string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000", name))
	if err != nil {
		return nil, fmt.Errorf("connecting to job ledger: %w", err)
	}

	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return nil, fmt.Errorf("setting dialect for migrations: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	return db, nil
}
