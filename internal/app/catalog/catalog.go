// Package catalog provides an item catalog of mounts and their unlock status.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/ErikKalkoken/go-set"
	"github.com/goccy/go-yaml"
	"github.com/maniartech/signals"

	"github.com/ErikKalkoken/mountroulette/internal/app"
)

// Mount is an entry in the catalog.
type Mount struct {
	ID       app.ItemID `yaml:"id"`
	Name     string     `yaml:"name"`
	Unlocked bool       `yaml:"unlocked"`
}

type catalogFile struct {
	Mounts []Mount `yaml:"mounts"`
}

// Catalog is an in-memory catalog of mounts. It is safe for concurrent use.
//
// Listeners are informed about mounts which became unlocked through [Catalog.Unlock] or [Catalog.Refresh].
type Catalog struct {
	loader        func() ([]Mount, error)
	newlyUnlocked signals.Signal[[]app.ItemID]

	mu       sync.RWMutex
	mounts   []Mount
	unlocked set.Set[app.ItemID]
}

// New returns a new catalog with fixed mounts. Refresh is a no-op for this variant.
func New(mounts []Mount) *Catalog {
	c := &Catalog{
		newlyUnlocked: signals.NewSync[[]app.ItemID](),
	}
	c.replace(mounts)
	return c
}

// NewFromFile returns a new catalog loaded from a YAML file.
// The file is read again on every refresh.
func NewFromFile(path string) (*Catalog, error) {
	loader := func() ([]Mount, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	}
	mounts, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	c := New(mounts)
	c.loader = loader
	return c, nil
}

// Parse parses a catalog in YAML format.
func Parse(data []byte) ([]Mount, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	seen := set.Of[app.ItemID]()
	for _, m := range f.Mounts {
		if m.ID == 0 {
			return nil, fmt.Errorf("mount %q has no ID: %w", m.Name, app.ErrInvalid)
		}
		if seen.Contains(m.ID) {
			return nil, fmt.Errorf("mount ID %d not unique: %w", m.ID, app.ErrInvalid)
		}
		seen.Add(m.ID)
	}
	return f.Mounts, nil
}

func (c *Catalog) replace(mounts []Mount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounts = slices.Clone(mounts)
	c.unlocked = set.Of[app.ItemID]()
	for _, m := range mounts {
		if m.Unlocked {
			c.unlocked.Add(m.ID)
		}
	}
}

// AllItems returns the IDs of all mounts in catalog order.
func (c *Catalog) AllItems() []app.ItemID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]app.ItemID, len(c.mounts))
	for i, m := range c.mounts {
		ids[i] = m.ID
	}
	return ids
}

// IsUnlocked reports whether a mount is unlocked. Unknown mounts are never unlocked.
func (c *Catalog) IsUnlocked(id app.ItemID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unlocked.Contains(id)
}

// Name returns the name of a mount.
func (c *Catalog) Name(id app.ItemID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.mounts, func(m Mount) bool {
		return m.ID == id
	})
	if i == -1 || c.mounts[i].Name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return c.mounts[i].Name
}

// Unlock marks mounts as unlocked and informs listeners about the ones which were locked before.
func (c *Catalog) Unlock(ctx context.Context, ids ...app.ItemID) {
	c.mu.Lock()
	var changed []app.ItemID
	for i, m := range c.mounts {
		if m.Unlocked || !slices.Contains(ids, m.ID) {
			continue
		}
		c.mounts[i].Unlocked = true
		c.unlocked.Add(m.ID)
		changed = append(changed, m.ID)
	}
	c.mu.Unlock()
	c.emit(ctx, changed)
}

// Refresh reloads the catalog from it's source and informs listeners about newly unlocked mounts.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.loader == nil {
		return nil
	}
	mounts, err := c.loader()
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	c.mu.RLock()
	before := c.unlocked.Clone()
	c.mu.RUnlock()
	c.replace(mounts)
	var changed []app.ItemID
	for _, m := range mounts {
		if m.Unlocked && !before.Contains(m.ID) {
			changed = append(changed, m.ID)
		}
	}
	slog.Info("catalog refreshed", "mounts", len(mounts), "newlyUnlocked", len(changed))
	c.emit(ctx, changed)
	return nil
}

func (c *Catalog) emit(ctx context.Context, ids []app.ItemID) {
	if len(ids) == 0 {
		return
	}
	c.newlyUnlocked.Emit(ctx, ids)
}

// OnNewlyUnlocked registers a listener for newly unlocked mounts.
// An existing listener with the same key is replaced.
func (c *Catalog) OnNewlyUnlocked(key string, fn func(ctx context.Context, ids []app.ItemID)) {
	c.newlyUnlocked.RemoveListener(key)
	c.newlyUnlocked.AddListener(fn, key)
}

// RemoveNewlyUnlocked removes a listener.
func (c *Catalog) RemoveNewlyUnlocked(key string) {
	c.newlyUnlocked.RemoveListener(key)
}
