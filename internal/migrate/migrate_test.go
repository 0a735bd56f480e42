package migrate_test

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/ErikKalkoken/go-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/mountroulette/internal/migrate"
)

func newDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestMigrate(t *testing.T) {
	migrations := fstest.MapFS{
		"migrations/0001_alpha.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE alpha(id INTEGER NOT NULL);"),
		},
		"migrations/0002_bravo.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE bravo(id INTEGER NOT NULL);"),
		},
		"migrations/README.md": &fstest.MapFile{
			Data: []byte("not a migration"),
		},
	}
	t.Run("should run all migrations when new", func(t *testing.T) {
		// given
		db := newDB(t)
		// when
		err := migrate.Run(db, migrations)
		// then
		if assert.NoError(t, err) {
			tables, err := migrate.ListTableNames(db)
			if assert.NoError(t, err) {
				names := set.Of(tables...)
				assert.True(t, names.Contains("alpha"))
				assert.True(t, names.Contains("bravo"))
			}
		}
	})
	t.Run("should only apply new migrations", func(t *testing.T) {
		// given
		db := newDB(t)
		err := migrate.Run(db, fstest.MapFS{"migrations/0001_alpha.sql": migrations["migrations/0001_alpha.sql"]})
		require.NoError(t, err)
		// when
		err = migrate.Run(db, migrations)
		// then
		if assert.NoError(t, err) {
			tables, err := migrate.ListTableNames(db)
			if assert.NoError(t, err) {
				assert.Equal(t, []string{"alpha", "bravo", "migrations"}, tables)
			}
		}
	})
	t.Run("should report broken migrations", func(t *testing.T) {
		db := newDB(t)
		broken := fstest.MapFS{
			"migrations/0001_broken.sql": &fstest.MapFile{Data: []byte("CREATE TABL x;")},
		}
		err := migrate.Run(db, broken)
		assert.Error(t, err)
	})
}
