package groupregistry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/bulkselection"
)

// Engine returns the selection engine for a group.
// Engines are created on first use and cached by group ID.
func (r *Registry) Engine(id app.GroupID) (*bulkselection.Engine, error) {
	g, err := r.Group(id)
	if err != nil {
		return nil, err
	}
	e := r.engines.GetOrCreate(id, func() *bulkselection.Engine {
		return bulkselection.New(g, r.catalog, r.PageSize)
	})
	return e, nil
}

// Open refreshes the catalog and all selection engines.
// It should be called whenever the groups are (re)opened for editing.
//
// Mounts which were unlocked since the settings were last opened are handled like newly unlocked mounts.
// The first time settings are opened the currently unlocked mounts are only recorded.
func (r *Registry) Open(ctx context.Context) error {
	if err := r.catalog.Refresh(ctx); err != nil {
		return err
	}
	for _, g := range r.settings.Groups {
		if e, ok := r.engines.Get(g.ID); ok {
			e.Rescan()
		}
	}
	r.reconcileUnlocked(ctx)
	return nil
}

// reconcileUnlocked compares the unlocked mounts of the catalog with the ones recorded in the settings.
func (r *Registry) reconcileUnlocked(ctx context.Context) {
	s := r.settings
	var unlocked []app.ItemID
	for _, id := range r.catalog.AllItems() {
		if r.catalog.IsUnlocked(id) {
			unlocked = append(unlocked, id)
		}
	}
	if !s.UnlockedRecorded {
		s.KnownUnlocked = set.Of(unlocked...)
		s.UnlockedRecorded = true
		slog.Info("Recorded unlocked mounts", "mounts", len(unlocked))
		r.save(ctx)
		return
	}
	var newly []app.ItemID
	for _, id := range unlocked {
		if !s.KnownUnlocked.Contains(id) {
			newly = append(newly, id)
		}
	}
	if len(newly) == 0 {
		return
	}
	total := r.applyNewlyUnlocked(newly)
	slog.Info("Applied mounts unlocked since last time", "mounts", len(newly), "selected", total)
	r.save(ctx)
}

// BulkUpdate selects or unselects the mounts of a group within scope and saves the result.
// It returns the number of changed mounts.
func (r *Registry) BulkUpdate(ctx context.Context, id app.GroupID, selected bool, scope bulkselection.Scope) (int, error) {
	e, err := r.Engine(id)
	if err != nil {
		return 0, fmt.Errorf("bulk update: %w", err)
	}
	n, err := e.Update(selected, scope)
	if err != nil {
		return 0, fmt.Errorf("bulk update for group %d: %w", id, err)
	}
	r.save(ctx)
	return n, nil
}

// ToggleItem selects or unselects a single mount of a group and saves the result.
func (r *Registry) ToggleItem(ctx context.Context, id app.GroupID, item app.ItemID, selected bool) error {
	e, err := r.Engine(id)
	if err != nil {
		return err
	}
	if err := e.Toggle(item, selected); err != nil {
		return err
	}
	r.save(ctx)
	return nil
}

// SetIncludeNewItems sets the policy for including newly unlocked mounts of a group and saves the result.
// It returns the number of mounts which were selected retroactively.
func (r *Registry) SetIncludeNewItems(ctx context.Context, id app.GroupID, v bool) (int, error) {
	e, err := r.Engine(id)
	if err != nil {
		return 0, err
	}
	n := e.UpdateUnlocked(v)
	r.save(ctx)
	return n, nil
}

func (r *Registry) handleNewlyUnlocked(ctx context.Context, ids []app.ItemID) {
	if len(ids) == 0 {
		return
	}
	total := r.applyNewlyUnlocked(ids)
	slog.Info("Applied newly unlocked mounts", "mounts", len(ids), "selected", total)
	r.save(ctx)
}

// applyNewlyUnlocked applies the inclusion policy of all groups to mounts
// and records them as known. It returns the number of selected mounts.
func (r *Registry) applyNewlyUnlocked(ids []app.ItemID) int {
	var total int
	for _, g := range r.settings.Groups {
		e, err := r.Engine(g.ID)
		if err != nil {
			slog.Error("newly unlocked: no engine", "group", g, "err", err)
			continue
		}
		total += e.HandleNewlyUnlocked(ids)
	}
	for _, id := range ids {
		r.settings.KnownUnlocked.Add(id)
	}
	return total
}
