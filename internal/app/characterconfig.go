package app

import (
	"fmt"
	"strings"
)

// CharacterConfig is the configuration of a character which overrides the global one.
type CharacterConfig struct {
	CharacterID    uint64
	CharacterName  string
	CharacterWorld string
	Settings       *GroupSettings
}

// DisplayName returns the name of a character with it's world, e.g. "Alpha Bravo (Twintania)".
func (c *CharacterConfig) DisplayName() string {
	var b strings.Builder
	b.WriteString(c.CharacterName)
	if strings.TrimSpace(c.CharacterWorld) != "" {
		fmt.Fprintf(&b, " (%s)", c.CharacterWorld)
	}
	return b.String()
}

// Clone returns a deep copy.
func (c *CharacterConfig) Clone() *CharacterConfig {
	c2 := *c
	c2.Settings = c.Settings.Clone()
	return &c2
}

// Configuration is the complete persisted state.
type Configuration struct {
	Settings   *GroupSettings
	Characters []*CharacterConfig
}

// NewConfiguration returns a new configuration with default settings and no characters.
func NewConfiguration() *Configuration {
	return &Configuration{Settings: NewGroupSettings()}
}

// Validate reports whether the global settings and all character settings are well-formed.
func (c *Configuration) Validate() error {
	if c.Settings == nil {
		return fmt.Errorf("global settings missing: %w", ErrInvalid)
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("global settings: %w", err)
	}
	seen := make(map[uint64]bool)
	for _, cc := range c.Characters {
		if cc.CharacterID == 0 {
			return fmt.Errorf("character config without ID: %w", ErrInvalid)
		}
		if seen[cc.CharacterID] {
			return fmt.Errorf("character %d configured more than once: %w", cc.CharacterID, ErrInvalid)
		}
		seen[cc.CharacterID] = true
		if cc.Settings == nil {
			return fmt.Errorf("character %d: settings missing: %w", cc.CharacterID, ErrInvalid)
		}
		if err := cc.Settings.Validate(); err != nil {
			return fmt.Errorf("character %d: %w", cc.CharacterID, err)
		}
	}
	return nil
}
