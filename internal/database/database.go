package database

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"multipost-bot/internal/database/migrations"
)

// ErrNotFound is returned by repositories when the requested row does not
// exist. Callers must check with errors.Is.
var ErrNotFound = errors.New("database: not found")

// Store wraps the sqlite connection and implements all repository
// interfaces with parameterized queries.
type Store struct {
	db *sqlx.DB
}

// Connect opens the sqlite database at path, applies migrations and returns
// a ready Store.
func Connect(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under the bot's concurrent update handlers.
	db.SetMaxOpenConns(1)

	if err := migrations.Run(db.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already opened connection. Used by tests.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
