package app

import (
	"fmt"
	"slices"

	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/mountroulette/internal/optional"
	"github.com/ErikKalkoken/mountroulette/internal/xstrings"
)

// GroupSettings are the mount groups and roulette assignments of one configuration scope,
// i.e. the global configuration or the configuration of one character.
//
// Groups are kept in insertion order. Exactly one group is the default group.
type GroupSettings struct {
	Groups         []*MountGroup
	GroundRoulette optional.Optional[GroupID]
	FlyingRoulette optional.Optional[GroupID]

	// LastGroupID is the highest group ID ever handed out for these settings.
	// IDs of deleted groups are never reused.
	LastGroupID GroupID

	// KnownUnlocked are the unlocked mounts seen when the settings were last opened.
	// It is only valid when UnlockedRecorded is true.
	KnownUnlocked    set.Set[ItemID]
	UnlockedRecorded bool
}

// NewGroupSettings returns new settings with just a default group.
func NewGroupSettings() *GroupSettings {
	g := NewMountGroup(1, DefaultGroupName)
	g.IsDefault = true
	return &GroupSettings{
		Groups:        []*MountGroup{g},
		LastGroupID:   g.ID,
		KnownUnlocked: set.Of[ItemID](),
	}
}

// Clone returns a deep copy.
func (s *GroupSettings) Clone() *GroupSettings {
	s2 := &GroupSettings{
		GroundRoulette:   s.GroundRoulette,
		FlyingRoulette:   s.FlyingRoulette,
		Groups:           make([]*MountGroup, len(s.Groups)),
		LastGroupID:      s.LastGroupID,
		KnownUnlocked:    s.KnownUnlocked.Clone(),
		UnlockedRecorded: s.UnlockedRecorded,
	}
	for i, g := range s.Groups {
		s2.Groups[i] = g.Clone()
	}
	return s2
}

// Default returns the default group or nil if there is none.
func (s *GroupSettings) Default() *MountGroup {
	i := slices.IndexFunc(s.Groups, func(g *MountGroup) bool {
		return g.IsDefault
	})
	if i == -1 {
		return nil
	}
	return s.Groups[i]
}

// Group returns the group with the ID id.
func (s *GroupSettings) Group(id GroupID) (*MountGroup, bool) {
	i := slices.IndexFunc(s.Groups, func(g *MountGroup) bool {
		return g.ID == id
	})
	if i == -1 {
		return nil, false
	}
	return s.Groups[i], true
}

// GroupByName returns the group with a name, ignoring case.
func (s *GroupSettings) GroupByName(name string) (*MountGroup, bool) {
	i := slices.IndexFunc(s.Groups, func(g *MountGroup) bool {
		return xstrings.EqualFold(g.Name, name)
	})
	if i == -1 {
		return nil, false
	}
	return s.Groups[i], true
}

// NewGroupID allocates and returns a new group ID.
// The ID was never used before by these settings, including by groups which have since been deleted.
func (s *GroupSettings) NewGroupID() GroupID {
	id := s.LastGroupID
	for _, g := range s.Groups {
		id = max(id, g.ID)
	}
	s.LastGroupID = id + 1
	return s.LastGroupID
}

// Roulette returns the group reference of a roulette.
func (s *GroupSettings) Roulette(r Roulette) optional.Optional[GroupID] {
	if r == RouletteFlying {
		return s.FlyingRoulette
	}
	return s.GroundRoulette
}

// SetRoulette sets the group reference of a roulette.
func (s *GroupSettings) SetRoulette(r Roulette, v optional.Optional[GroupID]) {
	if r == RouletteFlying {
		s.FlyingRoulette = v
	} else {
		s.GroundRoulette = v
	}
}

// Enabled reports whether any roulette is assigned to a group.
// It only exists for consumers which still expect the old single switch.
func (s *GroupSettings) Enabled() bool {
	return !s.GroundRoulette.IsEmpty() || !s.FlyingRoulette.IsEmpty()
}

// Validate reports whether the settings are well-formed.
func (s *GroupSettings) Validate() error {
	var defaults int
	ids := make(map[GroupID]bool)
	names := make(map[string]bool)
	for _, g := range s.Groups {
		if g.IsDefault {
			defaults++
		}
		if g.Name == "" {
			return fmt.Errorf("group %d has no name: %w", g.ID, ErrInvalid)
		}
		if ids[g.ID] {
			return fmt.Errorf("group ID %d used more than once: %w", g.ID, ErrInvalid)
		}
		ids[g.ID] = true
		if g.ID > s.LastGroupID {
			return fmt.Errorf("group ID %d above last group ID %d: %w", g.ID, s.LastGroupID, ErrInvalid)
		}
		k := xstrings.Fold(g.Name)
		if names[k] {
			return fmt.Errorf("group %s: %w", g.Name, ErrDuplicateName)
		}
		names[k] = true
	}
	if defaults != 1 {
		return fmt.Errorf("found %d default groups: %w", defaults, ErrInvalid)
	}
	for _, r := range Roulettes() {
		id, err := s.Roulette(r).Value()
		if err != nil {
			continue
		}
		if !ids[id] {
			return fmt.Errorf("%s roulette points to group %d: %w", r, id, ErrUnresolvedReference)
		}
	}
	return nil
}
