// Package bulkselection implements a paginated view on the mounts of a group
// and bulk updates for selecting and unselecting many mounts at once.
package bulkselection

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/mountroulette/internal/app"
)

// Engine provides pagination and bulk updates for the enabled mounts of one group.
//
// Only unlocked mounts are shown on pages and can be selected.
// Updates are applied while holding a lock, so readers never see a partial update.
// The engine never persists changes. This is the responsibility of the caller.
type Engine struct {
	catalog  app.ItemCatalog
	pageSize int

	mu       sync.Mutex
	group    *app.MountGroup
	unlocked []app.ItemID // unlocked mounts in catalog order
}

// New returns a new engine for a group. A page size below 1 means the default page size.
func New(group *app.MountGroup, catalog app.ItemCatalog, pageSize int) *Engine {
	if pageSize < 1 {
		pageSize = app.DefaultPageSize
	}
	e := &Engine{
		catalog:  catalog,
		group:    group,
		pageSize: pageSize,
	}
	e.Rescan()
	return e
}

// Rescan updates the list of unlocked mounts from the catalog.
func (e *Engine) Rescan() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rescan()
}

func (e *Engine) rescan() {
	var ids []app.ItemID
	for _, id := range e.catalog.AllItems() {
		if e.catalog.IsUnlocked(id) {
			ids = append(ids, id)
		}
	}
	e.unlocked = ids
}

// Group returns the group of this engine.
func (e *Engine) Group() *app.MountGroup {
	return e.group
}

// PageSize returns the page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// PageCount returns the number of pages. It is 0 when no mount is unlocked.
func (e *Engine) PageCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageCount()
}

func (e *Engine) pageCount() int {
	return (len(e.unlocked) + e.pageSize - 1) / e.pageSize
}

// PageItems returns the mounts on page n.
func (e *Engine) PageItems(n int) ([]app.ItemID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	items, err := e.pageItems(n)
	if err != nil {
		return nil, err
	}
	return append([]app.ItemID{}, items...), nil
}

func (e *Engine) pageItems(n int) ([]app.ItemID, error) {
	if n < 1 || n > e.pageCount() {
		return nil, fmt.Errorf("page %d of %d: %w", n, e.pageCount(), app.ErrInvalid)
	}
	start := (n - 1) * e.pageSize
	end := min(start+e.pageSize, len(e.unlocked))
	return e.unlocked[start:end], nil
}

// UnlockedCount returns the number of unlocked mounts.
func (e *Engine) UnlockedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.unlocked)
}

// Count returns how many mounts an update would change.
func (e *Engine) Count(selected bool, scope Scope) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids, err := e.candidates(selected, scope)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Update selects or unselects all mounts within scope and returns how many mounts were changed.
func (e *Engine) Update(selected bool, scope Scope) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids, err := e.candidates(selected, scope)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		e.set(id, selected)
	}
	slog.Info("Bulk update", "group", e.group.ID, "selected", selected, "scope", scope, "changed", len(ids))
	return len(ids), nil
}

// candidates returns the mounts in scope which an update would change.
func (e *Engine) candidates(selected bool, scope Scope) ([]app.ItemID, error) {
	var items []app.ItemID
	switch scope.kind {
	case scopePage:
		x, err := e.pageItems(scope.page)
		if err != nil {
			return nil, err
		}
		items = x
	default:
		items = e.unlocked
	}
	var ids []app.ItemID
	for _, id := range items {
		isEnabled := e.group.EnabledItems.Contains(id)
		if isEnabled == selected {
			continue
		}
		switch scope.kind {
		case scopeSelected:
			if !isEnabled {
				continue
			}
		case scopeUnselected:
			if isEnabled {
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Toggle selects or unselects a single mount. Locked mounts can only be unselected.
func (e *Engine) Toggle(id app.ItemID, selected bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if selected && !e.catalog.IsUnlocked(id) {
		return fmt.Errorf("select mount %d: not unlocked: %w", id, app.ErrInvalid)
	}
	e.set(id, selected)
	return nil
}

func (e *Engine) set(id app.ItemID, selected bool) {
	if selected {
		e.group.EnabledItems.Add(id)
	} else {
		e.group.EnabledItems.Delete(id)
	}
	e.group.Unclassified.Delete(id)
}

// UpdateUnlocked sets the policy for including newly unlocked mounts.
// When the policy is turned on, the unclassified mounts of the group are selected.
// It returns the number of mounts selected this way.
func (e *Engine) UpdateUnlocked(includeNew bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.group.IncludeNewItems = includeNew
	if !includeNew {
		return 0
	}
	var n int
	for id := range e.group.Unclassified.All() {
		if !e.group.EnabledItems.Contains(id) {
			e.group.EnabledItems.Add(id)
			n++
		}
	}
	e.group.Unclassified = set.Of[app.ItemID]()
	return n
}

// HandleNewlyUnlocked applies the inclusion policy to mounts which have just been unlocked.
// It returns the number of mounts which were selected.
func (e *Engine) HandleNewlyUnlocked(ids []app.ItemID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rescan()
	var n int
	for _, id := range ids {
		if !e.catalog.IsUnlocked(id) || e.group.EnabledItems.Contains(id) {
			continue
		}
		if e.group.IncludeNewItems {
			e.group.EnabledItems.Add(id)
			n++
		} else {
			e.group.Unclassified.Add(id)
		}
	}
	return n
}
