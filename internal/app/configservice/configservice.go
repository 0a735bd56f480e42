// Package configservice provides the service for editing the mount configuration.
//
// It combines the group registry, the character configs and the confirmation gate
// into a single entry point for user interfaces.
package configservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/bulkselection"
	"github.com/ErikKalkoken/mountroulette/internal/app/characterconfigs"
	"github.com/ErikKalkoken/mountroulette/internal/app/confirmation"
	"github.com/ErikKalkoken/mountroulette/internal/app/groupregistry"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
)

// Service is a service for editing the mount configuration.
// It must be initialized with [Service.Init] before use.
// A service is not safe for concurrent use.
type Service struct {
	// PageSize is the page size used for selecting mounts.
	PageSize int

	active     optional.Optional[uint64]
	catalog    app.ItemCatalog
	cfg        *app.Configuration
	characters *characterconfigs.Store
	gate       *confirmation.Gate
	registry   *groupregistry.Registry
	store      app.ConfigStore
}

// New returns a new service.
// Destructive operations are confirmed by the user through dialog.
func New(store app.ConfigStore, catalog app.ItemCatalog, dialog confirmation.Dialog) *Service {
	return &Service{
		PageSize: app.DefaultPageSize,
		catalog:  catalog,
		gate:     confirmation.New(dialog),
		store:    store,
	}
}

// Init loads the configuration and opens the global settings for editing.
func (s *Service) Init(ctx context.Context) error {
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("init config service: %w", err)
	}
	s.cfg = cfg
	s.characters = characterconfigs.New(cfg, s.store)
	if err := s.openRegistry(ctx, cfg.Settings); err != nil {
		return fmt.Errorf("init config service: %w", err)
	}
	slog.Info("Configuration loaded", "groups", len(cfg.Settings.Groups), "characters", len(cfg.Characters))
	return nil
}

// openRegistry replaces the current registry with a new one for settings and opens it.
func (s *Service) openRegistry(ctx context.Context, settings *app.GroupSettings) error {
	if s.registry != nil {
		s.registry.Close()
	}
	s.registry = groupregistry.New(s.cfg, settings, s.catalog, s.store)
	s.registry.PageSize = s.PageSize
	return s.registry.Open(ctx)
}

// Close frees all resources of the service.
func (s *Service) Close() {
	if s.registry != nil {
		s.registry.Close()
		s.registry = nil
	}
}

// Config returns the complete configuration.
func (s *Service) Config() *app.Configuration {
	return s.cfg
}

// Registry returns the registry for the settings currently being edited.
// These are the settings of the active character or the global settings when no character is active.
func (s *Service) Registry() *groupregistry.Registry {
	return s.registry
}

// Characters returns the store of character configs.
func (s *Service) Characters() *characterconfigs.Store {
	return s.characters
}

// Gate returns the confirmation gate. Pending requests are resolved through it.
func (s *Service) Gate() *confirmation.Gate {
	return s.gate
}

// ActiveCharacter returns the ID of the active character, if any.
func (s *Service) ActiveCharacter() optional.Optional[uint64] {
	return s.active
}

// SetActiveCharacter makes a character active and opens its settings for editing.
// The config of the character is created when it does not exist yet.
func (s *Service) SetActiveCharacter(ctx context.Context, characterID uint64, name, world string) error {
	c, err := s.characters.Ensure(ctx, characterID, name, world)
	if err != nil {
		return fmt.Errorf("set active character: %w", err)
	}
	s.active = optional.New(characterID)
	if err := s.openRegistry(ctx, c.Settings); err != nil {
		return fmt.Errorf("set active character: %w", err)
	}
	slog.Info("Active character changed", "character", c.DisplayName())
	return nil
}

// ClearActiveCharacter opens the global settings for editing.
func (s *Service) ClearActiveCharacter(ctx context.Context) error {
	if s.active.IsEmpty() {
		return nil
	}
	s.active.Clear()
	if err := s.openRegistry(ctx, s.cfg.Settings); err != nil {
		return fmt.Errorf("clear active character: %w", err)
	}
	return nil
}

// RequestDeleteGroup requests to delete a group.
func (s *Service) RequestDeleteGroup(id app.GroupID) error {
	g, err := s.registry.Group(id)
	if err != nil {
		return fmt.Errorf("request delete group: %w", err)
	}
	r := s.registry
	s.gate.Request(
		"Confirm deletion of mount group",
		fmt.Sprintf("Are you sure you want to delete %s?\nThis action can NOT be undone.", g.Name),
		func(ctx context.Context) error {
			return r.Delete(ctx, id)
		},
	)
	return nil
}

// RequestBulkUpdate requests to select or unselect the mounts of a group within scope.
// It returns the number of mounts the update would change.
// No request is made when nothing would change.
func (s *Service) RequestBulkUpdate(id app.GroupID, selected bool, scope bulkselection.Scope) (int, error) {
	e, err := s.registry.Engine(id)
	if err != nil {
		return 0, fmt.Errorf("request bulk update: %w", err)
	}
	n, err := e.Count(selected, scope)
	if err != nil {
		return 0, fmt.Errorf("request bulk update: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	verb := "unselect"
	if selected {
		verb = "select"
	}
	r := s.registry
	s.gate.Request(
		"Are you sure?",
		fmt.Sprintf("Do you really want to %s %s %s in %s?", verb, humanize.Comma(int64(n)), scope.Description(), e.Group().Name),
		func(ctx context.Context) error {
			_, err := r.BulkUpdate(ctx, id, selected, scope)
			return err
		},
	)
	return n, nil
}

// RequestImportCharacter requests to replace the settings of a character with the settings of another character.
// The active character can be the target, but not the source.
// When the target is the active character its new settings are opened for editing.
func (s *Service) RequestImportCharacter(targetID, sourceID uint64) error {
	if s.active.Is(sourceID) {
		return fmt.Errorf("request import: character %d is active: %w", sourceID, app.ErrInvalid)
	}
	target, err := s.characters.Get(targetID)
	if err != nil {
		return fmt.Errorf("request import: %w", err)
	}
	source, err := s.characters.Get(sourceID)
	if err != nil {
		return fmt.Errorf("request import: %w", err)
	}
	c := s.characters
	s.gate.Request(
		"Import settings?",
		fmt.Sprintf("Import settings from %s into %s? This will overwrite all settings for this character!", source.DisplayName(), target.DisplayName()),
		func(ctx context.Context) error {
			if err := c.ImportFrom(ctx, targetID, sourceID); err != nil {
				return err
			}
			if !s.active.Is(targetID) {
				return nil
			}
			x, err := c.Get(targetID)
			if err != nil {
				return err
			}
			return s.openRegistry(ctx, x.Settings)
		},
	)
	return nil
}

// RequestDeleteCharacter requests to delete the config of a character.
// The config of the active character can not be deleted.
func (s *Service) RequestDeleteCharacter(characterID uint64) error {
	if s.active.Is(characterID) {
		return fmt.Errorf("request delete: character %d is active: %w", characterID, app.ErrInvalid)
	}
	c, err := s.characters.Get(characterID)
	if err != nil {
		return fmt.Errorf("request delete: %w", err)
	}
	characters := s.characters
	s.gate.Request(
		"Delete settings?",
		fmt.Sprintf("Delete settings for %s? This action cannot be undone!", c.DisplayName()),
		func(ctx context.Context) error {
			return characters.Delete(ctx, characterID)
		},
	)
	return nil
}

// Confirm executes the pending request.
func (s *Service) Confirm(ctx context.Context) error {
	return s.gate.Resolve(ctx, true)
}

// Cancel drops the pending request.
func (s *Service) Cancel(ctx context.Context) error {
	return s.gate.Resolve(ctx, false)
}
