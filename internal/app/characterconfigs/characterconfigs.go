// Package characterconfigs manages the configurations of characters,
// which override the global configuration.
//
// Each character config is an independent copy of the group settings.
// Changes to the global settings are never cascaded into character configs.
package characterconfigs

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
)

// Store manages the character configs of a configuration.
// A store is not safe for concurrent use.
type Store struct {
	cfg      *app.Configuration
	selected optional.Optional[uint64]
	store    app.ConfigStore
}

// New returns a new store for the character configs in cfg.
// The complete configuration is saved to store after every change.
// store can be nil, in which case nothing is saved.
func New(cfg *app.Configuration, store app.ConfigStore) *Store {
	return &Store{cfg: cfg, store: store}
}

// List returns all character configs ordered by character ID.
func (s *Store) List() []*app.CharacterConfig {
	cc := slices.Clone(s.cfg.Characters)
	slices.SortFunc(cc, func(a, b *app.CharacterConfig) int {
		return cmp.Compare(a.CharacterID, b.CharacterID)
	})
	return cc
}

// Get returns the config of a character.
func (s *Store) Get(characterID uint64) (*app.CharacterConfig, error) {
	i := s.index(characterID)
	if i == -1 {
		return nil, fmt.Errorf("character %d: %w", characterID, app.ErrNotFound)
	}
	return s.cfg.Characters[i], nil
}

func (s *Store) index(characterID uint64) int {
	return slices.IndexFunc(s.cfg.Characters, func(c *app.CharacterConfig) bool {
		return c.CharacterID == characterID
	})
}

// Exists reports whether a config exists for a character.
func (s *Store) Exists(characterID uint64) bool {
	return s.index(characterID) != -1
}

// Ensure returns the config of a character and creates it when it does not exist yet.
// A new config starts as a copy of the global settings.
// The name and world of an existing config are updated.
func (s *Store) Ensure(ctx context.Context, characterID uint64, name, world string) (*app.CharacterConfig, error) {
	if characterID == 0 {
		return nil, fmt.Errorf("ensure character config: ID missing: %w", app.ErrInvalid)
	}
	if c, err := s.Get(characterID); err == nil {
		if c.CharacterName == name && c.CharacterWorld == world {
			return c, nil
		}
		c.CharacterName = name
		c.CharacterWorld = world
		s.save(ctx)
		return c, nil
	}
	c := &app.CharacterConfig{
		CharacterID:    characterID,
		CharacterName:  name,
		CharacterWorld: world,
		Settings:       s.cfg.Settings.Clone(),
	}
	s.cfg.Characters = append(s.cfg.Characters, c)
	slog.Info("Character config created", "characterID", characterID, "name", c.DisplayName())
	s.save(ctx)
	return c, nil
}

// ImportFrom replaces the settings of the target character with a copy of the settings of the source character.
// The settings of the target are always replaced, even when source and target are the same character.
func (s *Store) ImportFrom(ctx context.Context, targetID, sourceID uint64) error {
	source, err := s.Get(sourceID)
	if err != nil {
		return fmt.Errorf("import from source: %w", err)
	}
	target, err := s.Get(targetID)
	if err != nil {
		return fmt.Errorf("import into target: %w", err)
	}
	target.Settings = source.Settings.Clone()
	slog.Info("Character config imported", "target", targetID, "source", sourceID)
	s.save(ctx)
	return nil
}

// Delete deletes the config of a character.
func (s *Store) Delete(ctx context.Context, characterID uint64) error {
	i := s.index(characterID)
	if i == -1 {
		return fmt.Errorf("delete character %d: %w", characterID, app.ErrNotFound)
	}
	s.cfg.Characters = slices.Delete(s.cfg.Characters, i, i+1)
	if s.selected.Is(characterID) {
		s.selected.Clear()
	}
	slog.Info("Character config deleted", "characterID", characterID)
	s.save(ctx)
	return nil
}

// Toggle selects a character. Toggling the selected character unselects it.
func (s *Store) Toggle(characterID uint64) error {
	if s.selected.Is(characterID) {
		s.selected.Clear()
		return nil
	}
	if !s.Exists(characterID) {
		return fmt.Errorf("select character %d: %w", characterID, app.ErrNotFound)
	}
	s.selected = optional.New(characterID)
	return nil
}

// Selected returns the ID of the selected character, if any.
func (s *Store) Selected() optional.Optional[uint64] {
	return s.selected
}

func (s *Store) save(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveConfig(ctx, s.cfg); err != nil {
		slog.Error("Failed to save configuration", "err", err)
	}
}
