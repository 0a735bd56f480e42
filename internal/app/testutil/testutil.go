// Package testutil contains utilities for writing tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/catalog"
	"github.com/ErikKalkoken/mountroulette/internal/app/storage"
)

// NewDBInMemory creates and returns a database in memory for tests.
// Important: This variant is not suitable for DB code that runs in goroutines.
func NewDBInMemory() (*sql.DB, *storage.Storage, Factory) {
	// in-memory DB for faster running tests
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	// every connection to an in-memory DB opens a new database
	db.SetMaxOpenConns(1)
	if err := storage.ApplyMigrations(db); err != nil {
		panic(err)
	}
	st := storage.New(db, db)
	return db, st, NewFactory(st)
}

// NewDBOnDisk creates and returns a new temporary database on disk for tests.
// The database is automatically removed once the tests have concluded.
func NewDBOnDisk(t testing.TB) (*sql.DB, *storage.Storage, Factory) {
	p := filepath.Join(t.TempDir(), "mountroulette_test.sqlite")
	dbRW, dbRO, err := storage.InitDB("file:" + p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		dbRO.Close()
		dbRW.Close()
	})
	st := storage.New(dbRW, dbRO)
	return dbRW, st, NewFactory(st)
}

// NewCatalog returns a catalog with the mounts 1 to total, where the first unlocked mounts are unlocked.
func NewCatalog(total, unlocked int) *catalog.Catalog {
	mm := make([]catalog.Mount, 0, total)
	for i := 1; i <= total; i++ {
		mm = append(mm, catalog.Mount{
			ID:       app.ItemID(i),
			Name:     fmt.Sprintf("Mount #%d", i),
			Unlocked: i <= unlocked,
		})
	}
	return catalog.New(mm)
}

// ConfigStoreFake is an in-memory [app.ConfigStore] which records saves.
type ConfigStoreFake struct {
	// Err is returned by all operations when set.
	Err error

	mu    sync.Mutex
	cfg   *app.Configuration
	saves int
}

func (s *ConfigStoreFake) LoadConfig(ctx context.Context) (*app.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.cfg == nil {
		return app.NewConfiguration(), nil
	}
	return cloneConfig(s.cfg), nil
}

func (s *ConfigStoreFake) SaveConfig(ctx context.Context, cfg *app.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.cfg = cloneConfig(cfg)
	s.saves++
	return nil
}

// Saves returns how often the configuration was saved.
func (s *ConfigStoreFake) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Saved returns a copy of the last saved configuration or nil if nothing was saved.
func (s *ConfigStoreFake) Saved() *app.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return nil
	}
	return cloneConfig(s.cfg)
}

func cloneConfig(cfg *app.Configuration) *app.Configuration {
	c := &app.Configuration{Settings: cfg.Settings.Clone()}
	for _, x := range cfg.Characters {
		c.Characters = append(c.Characters, x.Clone())
	}
	return c
}
