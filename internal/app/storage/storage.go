// Package storage contains the logic for storing the configuration in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mattn/go-sqlite3"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/migrate"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is a SQLite backed [app.ConfigStore].
type Storage struct {
	dbRO *sql.DB
	dbRW *sql.DB
}

// New returns a new storage object.
func New(dbRW *sql.DB, dbRO *sql.DB) *Storage {
	st := &Storage{dbRO: dbRO, dbRW: dbRW}
	return st
}

// InitDB initializes the database and returns a connection for writing and one for reading.
func InitDB(dsn string) (dbRW *sql.DB, dbRO *sql.DB, err error) {
	v := url.Values{}
	v.Add("_fk", "on")
	v.Add("_journal_mode", "WAL")
	v.Add("_synchronous", "normal")
	v.Add("_busy_timeout", "5000")
	dsnRW := fmt.Sprintf("%s?%s", dsn, v.Encode())
	slog.Debug("Connecting to sqlite for read-write", "dsn", dsnRW)
	dbRW, err = sql.Open("sqlite3", dsnRW)
	if err != nil {
		return nil, nil, fmt.Errorf("open DB for rw: %w", err)
	}
	dbRW.SetMaxOpenConns(1)
	if err := ApplyMigrations(dbRW); err != nil {
		dbRW.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	v.Add("mode", "ro")
	dsnRO := fmt.Sprintf("%s?%s", dsn, v.Encode())
	slog.Debug("Connecting to sqlite for read-only", "dsn", dsnRO)
	dbRO, err = sql.Open("sqlite3", dsnRO)
	if err != nil {
		dbRW.Close()
		return nil, nil, fmt.Errorf("open DB for ro: %w", err)
	}
	slog.Info("Connected to database")
	return dbRW, dbRO, nil
}

// ApplyMigrations applies all pending migrations to a database.
func ApplyMigrations(db *sql.DB) error {
	return migrate.Run(db, embedMigrations)
}

// convertGetError converts the error returned when fetching a single object into a domain error.
func convertGetError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return app.ErrNotFound
	}
	return err
}

// convertWriteError converts constraint violations into domain errors.
func convertWriteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return app.ErrDuplicateName
	}
	return err
}

func (st *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := st.dbRW.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
