// Package groupregistry manages the mount groups of a configuration scope.
//
// Groups are identified by stable IDs. All references to groups, i.e. the roulettes,
// the current group and the cache of selection engines, are kept by ID.
// Renaming a group therefore never requires updating references,
// while deleting a group repairs all references before returning.
//
// A registry is not safe for concurrent use.
package groupregistry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/bulkselection"
	"github.com/ErikKalkoken/mountroulette/internal/memcache"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
	"github.com/ErikKalkoken/mountroulette/internal/xstrings"
)

// Registry manages the groups and roulettes of one [app.GroupSettings].
type Registry struct {
	// PageSize is the page size for the selection engines of groups.
	// Changes only affect engines which have not been created yet.
	PageSize int

	catalog     app.ItemCatalog
	cfg         *app.Configuration
	current     optional.Optional[app.GroupID]
	engines     *memcache.Cache[app.GroupID, *bulkselection.Engine]
	listenerKey string
	settings    *app.GroupSettings
	store       app.ConfigStore
}

// New returns a new registry for settings, which must be part of cfg.
// The complete configuration cfg is saved to store after every change.
// store can be nil, in which case nothing is saved.
func New(cfg *app.Configuration, settings *app.GroupSettings, catalog app.ItemCatalog, store app.ConfigStore) *Registry {
	r := &Registry{
		PageSize: app.DefaultPageSize,
		catalog:  catalog,
		cfg:      cfg,
		engines:  memcache.New[app.GroupID, *bulkselection.Engine](),
		settings: settings,
		store:    store,
	}
	if n, ok := catalog.(app.UnlockNotifier); ok {
		r.listenerKey = fmt.Sprintf("groupregistry-%p", r)
		n.OnNewlyUnlocked(r.listenerKey, r.handleNewlyUnlocked)
	}
	return r
}

// Close frees all resources of the registry. It must not be used afterwards.
func (r *Registry) Close() {
	if n, ok := r.catalog.(app.UnlockNotifier); ok && r.listenerKey != "" {
		n.RemoveNewlyUnlocked(r.listenerKey)
	}
	r.engines.Clear()
}

// Settings returns the settings managed by this registry.
func (r *Registry) Settings() *app.GroupSettings {
	return r.settings
}

// Groups returns all groups in insertion order.
func (r *Registry) Groups() []*app.MountGroup {
	return slices.Clone(r.settings.Groups)
}

// Default returns the default group.
func (r *Registry) Default() *app.MountGroup {
	return r.settings.Default()
}

// Group returns a group by ID.
func (r *Registry) Group(id app.GroupID) (*app.MountGroup, error) {
	g, ok := r.settings.Group(id)
	if !ok {
		return nil, fmt.Errorf("group %d: %w", id, app.ErrNotFound)
	}
	return g, nil
}

// GroupByName returns a group by name. Names are matched ignoring case.
func (r *Registry) GroupByName(name string) (*app.MountGroup, error) {
	g, ok := r.settings.GroupByName(xstrings.NormalizeWhitespace(name))
	if !ok {
		return nil, fmt.Errorf("group %q: %w", name, app.ErrNotFound)
	}
	return g, nil
}

// ValidateName reports whether name can be used for a new group
// or for renaming the group with the ID exclude.
// It returns the normalized name.
func (r *Registry) ValidateName(name string, exclude optional.Optional[app.GroupID]) (string, error) {
	name = xstrings.NormalizeWhitespace(name)
	if name == "" {
		return "", fmt.Errorf("group name can not be empty: %w", app.ErrInvalid)
	}
	for _, g := range r.settings.Groups {
		if exclude.Is(g.ID) {
			continue
		}
		if xstrings.EqualFold(g.Name, name) {
			return "", fmt.Errorf("a group named %q already exists: %w", g.Name, app.ErrDuplicateName)
		}
	}
	return name, nil
}

// Add creates a new empty group and makes it the current group.
func (r *Registry) Add(ctx context.Context, name string) (*app.MountGroup, error) {
	name, err := r.ValidateName(name, optional.Optional[app.GroupID]{})
	if err != nil {
		return nil, fmt.Errorf("add group: %w", err)
	}
	g := app.NewMountGroup(r.settings.NewGroupID(), name)
	r.settings.Groups = append(r.settings.Groups, g)
	r.current = optional.New(g.ID)
	slog.Info("Group added", "group", g)
	r.save(ctx)
	return g, nil
}

// Rename gives a group a new name.
func (r *Registry) Rename(ctx context.Context, id app.GroupID, name string) error {
	g, err := r.Group(id)
	if err != nil {
		return fmt.Errorf("rename group: %w", err)
	}
	name, err = r.ValidateName(name, optional.New(id))
	if err != nil {
		return fmt.Errorf("rename group %s: %w", g, err)
	}
	old := g.Name
	g.Name = name
	slog.Info("Group renamed", "id", id, "old", old, "new", name)
	r.save(ctx)
	return nil
}

// Delete deletes a group.
//
// The last remaining group can not be deleted.
// When the default group is deleted, the first remaining group becomes the new default.
// Roulettes which pointed to the deleted group are set to the default group.
func (r *Registry) Delete(ctx context.Context, id app.GroupID) error {
	i := slices.IndexFunc(r.settings.Groups, func(g *app.MountGroup) bool {
		return g.ID == id
	})
	if i == -1 {
		return fmt.Errorf("delete group %d: %w", id, app.ErrNotFound)
	}
	if len(r.settings.Groups) == 1 {
		return fmt.Errorf("delete group %s: %w", r.settings.Groups[i], app.ErrLastGroup)
	}
	g := r.settings.Groups[i]
	r.settings.Groups = slices.Delete(r.settings.Groups, i, i+1)
	if g.IsDefault {
		g.IsDefault = false
		r.settings.Groups[0].IsDefault = true
		slog.Info("Default group changed", "group", r.settings.Groups[0])
	}
	defaultID := r.settings.Default().ID
	for _, x := range app.Roulettes() {
		if r.settings.Roulette(x).Is(id) {
			r.settings.SetRoulette(x, optional.New(defaultID))
		}
	}
	if r.current.Is(id) {
		r.current.Clear()
	}
	r.engines.Delete(id)
	slog.Info("Group deleted", "group", g)
	r.save(ctx)
	return nil
}

// Current returns the current group. This is the default group, when no current group is set.
func (r *Registry) Current() (*app.MountGroup, error) {
	id, err := r.current.Value()
	if err != nil {
		return r.settings.Default(), nil
	}
	g, ok := r.settings.Group(id)
	if !ok {
		return nil, fmt.Errorf("current group %d: %w", id, app.ErrUnresolvedReference)
	}
	return g, nil
}

// SetCurrent sets the current group.
func (r *Registry) SetCurrent(id app.GroupID) error {
	if _, err := r.Group(id); err != nil {
		return err
	}
	r.current = optional.New(id)
	return nil
}

// ClearCurrent resets the current group to the default group.
func (r *Registry) ClearCurrent() {
	r.current.Clear()
}

func (r *Registry) save(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveConfig(ctx, r.cfg); err != nil {
		slog.Error("Failed to save configuration", "err", err)
	}
}
