// Package configfile reads and writes configurations as YAML files.
//
// In files groups are referenced by name. The default group is stored at the top level
// of each settings block and all other groups are listed under groups.
package configfile

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/ErikKalkoken/go-set"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-version"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
	"github.com/ErikKalkoken/mountroulette/internal/xstrings"
)

// CurrentVersion is the version of the file format written by [Encode].
var CurrentVersion = version.Must(version.NewVersion("2.0"))

type groupEntry struct {
	Name               string       `yaml:"name"`
	EnabledMounts      []app.ItemID `yaml:"enabledMounts"`
	IncludeNewMounts   bool         `yaml:"includeNewMounts"`
	UnclassifiedMounts []app.ItemID `yaml:"unclassifiedMounts,omitempty"`
}

type settingsEntry struct {
	DefaultGroupName         string        `yaml:"defaultGroupName"`
	EnabledMounts            []app.ItemID  `yaml:"enabledMounts"`
	IncludeNewMounts         bool          `yaml:"includeNewMounts"`
	UnclassifiedMounts       []app.ItemID  `yaml:"unclassifiedMounts,omitempty"`
	MountRouletteGroup       string        `yaml:"mountRouletteGroup,omitempty"`
	FlyingMountRouletteGroup string        `yaml:"flyingMountRouletteGroup,omitempty"`
	Enabled                  bool          `yaml:"enabled"` // legacy, derived from roulettes
	Groups                   []groupEntry  `yaml:"groups"`
	KnownMounts              *[]app.ItemID `yaml:"knownMounts"` // nil when never recorded
}

type characterEntry struct {
	CharacterID    uint64        `yaml:"characterID"`
	CharacterName  string        `yaml:"characterName"`
	CharacterWorld string        `yaml:"characterWorld"`
	Settings       settingsEntry `yaml:",inline"`
}

type fileEntry struct {
	Version          string           `yaml:"version"`
	Settings         settingsEntry    `yaml:",inline"`
	CharacterConfigs []characterEntry `yaml:"characterConfigs"`
}

// Encode returns a configuration in YAML format.
func Encode(cfg *app.Configuration) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	f := fileEntry{
		Version:  CurrentVersion.String(),
		Settings: encodeSettings(cfg.Settings),
	}
	for _, c := range cfg.Characters {
		f.CharacterConfigs = append(f.CharacterConfigs, characterEntry{
			CharacterID:    c.CharacterID,
			CharacterName:  c.CharacterName,
			CharacterWorld: c.CharacterWorld,
			Settings:       encodeSettings(c.Settings),
		})
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func encodeSettings(s *app.GroupSettings) settingsEntry {
	d := s.Default()
	x := settingsEntry{
		DefaultGroupName:   d.Name,
		EnabledMounts:      sortedItems(d.EnabledItems),
		IncludeNewMounts:   d.IncludeNewItems,
		UnclassifiedMounts: sortedItems(d.Unclassified),
		Enabled:            s.Enabled(),
		Groups:             make([]groupEntry, 0),
	}
	if s.UnlockedRecorded {
		known := sortedItems(s.KnownUnlocked)
		x.KnownMounts = &known
	}
	name := func(v optional.Optional[app.GroupID]) string {
		id, err := v.Value()
		if err != nil {
			return ""
		}
		g, ok := s.Group(id)
		if !ok {
			return ""
		}
		return g.Name
	}
	x.MountRouletteGroup = name(s.GroundRoulette)
	x.FlyingMountRouletteGroup = name(s.FlyingRoulette)
	for _, g := range s.Groups {
		if g.IsDefault {
			continue
		}
		x.Groups = append(x.Groups, groupEntry{
			Name:               g.Name,
			EnabledMounts:      sortedItems(g.EnabledItems),
			IncludeNewMounts:   g.IncludeNewItems,
			UnclassifiedMounts: sortedItems(g.Unclassified),
		})
	}
	return x
}

func sortedItems(s set.Set[app.ItemID]) []app.ItemID {
	ids := slices.Sorted(s.All())
	if ids == nil {
		return []app.ItemID{}
	}
	return ids
}

// Decode returns a configuration from data in YAML format.
//
// Files from before version 2.0 are migrated: When the legacy enabled flag is set
// and no roulette has a group, the ground roulette is set to the default group.
// Roulettes with unknown groups are set to the default group.
func Decode(data []byte) (*app.Configuration, error) {
	var f fileEntry
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode config: %w: %w", app.ErrInvalid, err)
	}
	isLegacy, err := isLegacyVersion(f.Version)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	settings, err := decodeSettings(f.Settings, isLegacy)
	if err != nil {
		return nil, fmt.Errorf("decode config: global settings: %w", err)
	}
	cfg := &app.Configuration{Settings: settings}
	for _, c := range f.CharacterConfigs {
		s, err := decodeSettings(c.Settings, isLegacy)
		if err != nil {
			return nil, fmt.Errorf("decode config: character %d: %w", c.CharacterID, err)
		}
		cfg.Characters = append(cfg.Characters, &app.CharacterConfig{
			CharacterID:    c.CharacterID,
			CharacterName:  c.CharacterName,
			CharacterWorld: c.CharacterWorld,
			Settings:       s,
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func isLegacyVersion(s string) (bool, error) {
	if s == "" {
		return true, nil
	}
	v, err := version.NewVersion(s)
	if err != nil {
		return false, fmt.Errorf("version %q: %w: %w", s, app.ErrInvalid, err)
	}
	if v.GreaterThan(CurrentVersion) {
		slog.Warn("Config file is from a newer version", "version", v, "current", CurrentVersion)
	}
	return v.LessThan(CurrentVersion), nil
}

func decodeSettings(x settingsEntry, isLegacy bool) (*app.GroupSettings, error) {
	s := &app.GroupSettings{KnownUnlocked: set.Of[app.ItemID]()}
	if x.KnownMounts != nil {
		for _, id := range *x.KnownMounts {
			s.KnownUnlocked.Add(id)
		}
		s.UnlockedRecorded = true
	}
	seen := make(map[string]bool)
	add := func(name string, items, unclassified []app.ItemID, includeNew, isDefault bool) error {
		name = xstrings.NormalizeWhitespace(name)
		if name == "" {
			return fmt.Errorf("group without name: %w", app.ErrInvalid)
		}
		k := xstrings.Fold(name)
		if seen[k] {
			return fmt.Errorf("group %q: %w", name, app.ErrDuplicateName)
		}
		seen[k] = true
		g := app.NewMountGroup(s.NewGroupID(), name)
		for _, id := range items {
			g.EnabledItems.Add(id)
		}
		for _, id := range unclassified {
			g.Unclassified.Add(id)
		}
		g.IncludeNewItems = includeNew
		g.IsDefault = isDefault
		s.Groups = append(s.Groups, g)
		return nil
	}
	defaultName := x.DefaultGroupName
	if xstrings.NormalizeWhitespace(defaultName) == "" {
		defaultName = app.DefaultGroupName
	}
	if err := add(defaultName, x.EnabledMounts, x.UnclassifiedMounts, x.IncludeNewMounts, true); err != nil {
		return nil, err
	}
	for _, g := range x.Groups {
		if err := add(g.Name, g.EnabledMounts, g.UnclassifiedMounts, g.IncludeNewMounts, false); err != nil {
			return nil, err
		}
	}
	defaultID := s.Default().ID
	resolve := func(which app.Roulette, name string) {
		if name == "" {
			return
		}
		g, ok := s.GroupByName(xstrings.NormalizeWhitespace(name))
		if !ok {
			slog.Warn("Roulette group not found. Using default group", "roulette", which, "group", name)
			s.SetRoulette(which, optional.New(defaultID))
			return
		}
		s.SetRoulette(which, optional.New(g.ID))
	}
	resolve(app.RouletteGround, x.MountRouletteGroup)
	resolve(app.RouletteFlying, x.FlyingMountRouletteGroup)
	if isLegacy && x.Enabled && !s.Enabled() {
		s.GroundRoulette = optional.New(defaultID)
		slog.Info("Migrated legacy roulette setting", "group", s.Default().Name)
	}
	return s, nil
}
