package configfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ErikKalkoken/mountroulette/internal/app"
)

// Store is a [app.ConfigStore] which keeps the configuration in a YAML file.
// It is safe for concurrent use.
type Store struct {
	path string

	mu sync.Mutex
}

var _ app.ConfigStore = (*Store)(nil)

// NewStore returns a new store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the path of the file.
func (s *Store) Path() string {
	return s.path
}

// LoadConfig loads the configuration from the file.
// It returns a new configuration when the file does not exist.
func (s *Store) LoadConfig(ctx context.Context) (*app.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return app.NewConfiguration(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Decode(data)
}

// SaveConfig writes the configuration to the file.
// The file is replaced atomically, so a failed save keeps the previous file.
func (s *Store) SaveConfig(ctx context.Context, cfg *app.Configuration) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
