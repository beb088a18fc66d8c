package db

import (
	"database/sql"
	"errors"

	"github.com/0xPolygon/msgrelayer/db/types"
)

const (
	UniqueConstrain = 1555
)

var (
	ErrNotFound = errors.New("not found")
)

// NewSQLiteDB creates a new SQLite DB
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		pragma journal_mode = WAL;
		pragma synchronous = normal;
		pragma journal_size_limit  = 6144000;
	`)
	return db, err
}

// ReturnErrNotFound translates sql.ErrNoRows into ErrNotFound
func ReturnErrNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// NewSQLiteDBWithMigrations runs the pending migrations on dbPath and opens it
func NewSQLiteDBWithMigrations(dbPath string, migrations []types.Migration) (*sql.DB, error) {
	if err := RunMigrations(dbPath, migrations); err != nil {
		return nil, err
	}
	return NewSQLiteDB(dbPath)
}
