package app

import (
	"fmt"

	"github.com/ErikKalkoken/go-set"
)

// ItemID is the ID of a mount in the item catalog.
type ItemID uint32

// GroupID is the stable ID of a mount group. It never changes for the lifetime of a group.
type GroupID int64

// MountGroup is a named set of enabled mounts.
type MountGroup struct {
	ID              GroupID
	Name            string
	EnabledItems    set.Set[ItemID]
	IncludeNewItems bool
	IsDefault       bool
	// Mounts unlocked while IncludeNewItems was off and not touched by the user since.
	Unclassified set.Set[ItemID]
}

// NewMountGroup returns a new empty group.
func NewMountGroup(id GroupID, name string) *MountGroup {
	return &MountGroup{
		ID:           id,
		Name:         name,
		EnabledItems: set.Of[ItemID](),
		Unclassified: set.Of[ItemID](),
	}
}

// Clone returns a deep copy of a group.
func (g *MountGroup) Clone() *MountGroup {
	g2 := *g
	g2.EnabledItems = g.EnabledItems.Clone()
	g2.Unclassified = g.Unclassified.Clone()
	return &g2
}

// IsEnabled reports whether a mount is enabled in this group.
func (g *MountGroup) IsEnabled(id ItemID) bool {
	return g.EnabledItems.Contains(id)
}

func (g *MountGroup) String() string {
	return fmt.Sprintf("%s (#%d)", g.Name, g.ID)
}
