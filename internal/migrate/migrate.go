// Package migrate provides a simple mechanism for dealing with migrations of a SQLite database.
package migrate

import (
	"cmp"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ErikKalkoken/go-set"
	_ "github.com/mattn/go-sqlite3"
)

// MigrateFS is a filesystem which contains the SQL files in a folder called "migrations".
type MigrateFS interface {
	fs.ReadDirFS
	fs.ReadFileFS
}

// Run applies all unapplied migrations.
func Run(db *sql.DB, migrations MigrateFS) error {
	if _, err := db.Exec(createMigrationTrackingSQL); err != nil {
		return fmt.Errorf("create migration tracking: %w", err)
	}
	return applyNewMigrations(db, migrations)
}

var createMigrationTrackingSQL = `
CREATE TABLE IF NOT EXISTS migrations(
    id INTEGER PRIMARY KEY NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    name TEXT NOT NULL,
    UNIQUE (name)
);`

func listMigrationNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM migrations ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

type migration struct {
	name     string
	filename string
}

// applyNewMigrations applies any new migrations in alphabetical order.
// Each migration is applied and recorded in it's own transaction.
func applyNewMigrations(db *sql.DB, migrations MigrateFS) error {
	names, err := listMigrationNames(db)
	if err != nil {
		return err
	}
	applied := set.Of(names...)
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	var unapplied []migration
	for _, entry := range entries {
		fn := entry.Name()
		ext := filepath.Ext(fn)
		if ext != ".sql" {
			continue
		}
		name := strings.TrimSuffix(fn, ext)
		if applied.Contains(name) {
			continue
		}
		unapplied = append(unapplied, migration{name: name, filename: fn})
	}
	if len(unapplied) == 0 {
		slog.Debug("No new migrations to apply")
		return nil
	}
	slices.SortFunc(unapplied, func(a migration, b migration) int {
		return cmp.Compare(a.name, b.name)
	})
	for _, m := range unapplied {
		data, err := migrations.ReadFile("migrations/" + m.filename) // FS uses slashes on all platforms
		if err != nil {
			return err
		}
		if err := applyMigration(db, m.name, string(data)); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		slog.Info("Applied migration", "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, name, query string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(query); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO migrations(name) VALUES(?);`, name); err != nil {
		return err
	}
	return tx.Commit()
}

// ListTableNames returns the names of all tables in a database.
func ListTableNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
