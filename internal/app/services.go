package app

import "context"

// ItemCatalog provides the universe of mounts and which of them have been unlocked.
type ItemCatalog interface {
	// AllItems returns the IDs of all mounts in display order.
	AllItems() []ItemID
	IsUnlocked(id ItemID) bool
	// Refresh rescans the unlock status of all mounts.
	Refresh(ctx context.Context) error
}

// UnlockNotifier is implemented by catalogs which report newly unlocked mounts.
type UnlockNotifier interface {
	// OnNewlyUnlocked registers a listener under a key. Adding a listener with an existing key replaces it.
	OnNewlyUnlocked(key string, fn func(ctx context.Context, ids []ItemID))
	RemoveNewlyUnlocked(key string)
}

// ConfigStore loads and saves the configuration.
type ConfigStore interface {
	LoadConfig(ctx context.Context) (*Configuration, error)
	SaveConfig(ctx context.Context, cfg *Configuration) error
}
