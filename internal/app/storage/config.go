package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
)

// globalScope is the scope of the global settings. All other scopes are character IDs.
const globalScope = 0

// SaveConfig replaces the stored configuration with cfg.
func (st *Storage) SaveConfig(ctx context.Context, cfg *app.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	err := st.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			"DELETE FROM mount_group_items;",
			"DELETE FROM mount_group_unclassified_items;",
			"DELETE FROM mount_groups;",
			"DELETE FROM known_unlocked_items;",
			"DELETE FROM scopes;",
			"DELETE FROM character_configs;",
		} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
		if err := saveSettings(ctx, tx, globalScope, cfg.Settings); err != nil {
			return err
		}
		for _, c := range cfg.Characters {
			_, err := tx.ExecContext(
				ctx,
				"INSERT INTO character_configs (character_id, name, world) VALUES (?, ?, ?);",
				int64(c.CharacterID),
				c.CharacterName,
				c.CharacterWorld,
			)
			if err != nil {
				return fmt.Errorf("character %d: %w", c.CharacterID, err)
			}
			if err := saveSettings(ctx, tx, int64(c.CharacterID), c.Settings); err != nil {
				return fmt.Errorf("character %d: %w", c.CharacterID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save config: %w", convertWriteError(err))
	}
	return nil
}

func saveSettings(ctx context.Context, tx *sql.Tx, scopeID int64, s *app.GroupSettings) error {
	for i, g := range s.Groups {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO mount_groups (scope_id, group_id, position, name, include_new_mounts, is_default)
			VALUES (?, ?, ?, ?, ?, ?);`,
			scopeID,
			int64(g.ID),
			i,
			g.Name,
			g.IncludeNewItems,
			g.IsDefault,
		)
		if err != nil {
			return fmt.Errorf("group %s: %w", g, err)
		}
		for _, id := range slices.Sorted(g.EnabledItems.All()) {
			_, err := tx.ExecContext(
				ctx,
				"INSERT INTO mount_group_items (scope_id, group_id, item_id) VALUES (?, ?, ?);",
				scopeID,
				int64(g.ID),
				int64(id),
			)
			if err != nil {
				return fmt.Errorf("group %s: item %d: %w", g, id, err)
			}
		}
		for _, id := range slices.Sorted(g.Unclassified.All()) {
			_, err := tx.ExecContext(
				ctx,
				"INSERT INTO mount_group_unclassified_items (scope_id, group_id, item_id) VALUES (?, ?, ?);",
				scopeID,
				int64(g.ID),
				int64(id),
			)
			if err != nil {
				return fmt.Errorf("group %s: unclassified item %d: %w", g, id, err)
			}
		}
	}
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO scopes (scope_id, ground_group_id, flying_group_id, last_group_id, unlocked_recorded)
		VALUES (?, ?, ?, ?, ?);`,
		scopeID,
		optional.ToNullInt64(s.GroundRoulette),
		optional.ToNullInt64(s.FlyingRoulette),
		int64(s.LastGroupID),
		s.UnlockedRecorded,
	)
	if err != nil {
		return err
	}
	for _, id := range slices.Sorted(s.KnownUnlocked.All()) {
		_, err := tx.ExecContext(
			ctx,
			"INSERT INTO known_unlocked_items (scope_id, item_id) VALUES (?, ?);",
			scopeID,
			int64(id),
		)
		if err != nil {
			return fmt.Errorf("known unlocked item %d: %w", id, err)
		}
	}
	return nil
}

// LoadConfig loads the stored configuration.
// It returns a new default configuration when nothing has been stored yet.
func (st *Storage) LoadConfig(ctx context.Context) (*app.Configuration, error) {
	global, err := st.loadSettings(ctx, globalScope)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if global == nil {
		return app.NewConfiguration(), nil
	}
	cfg := &app.Configuration{Settings: global}
	characters, err := st.listCharacterConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, c := range characters {
		s, err := st.loadSettings(ctx, int64(c.CharacterID))
		if err != nil {
			return nil, fmt.Errorf("load config: character %d: %w", c.CharacterID, err)
		}
		if s == nil {
			s = app.NewGroupSettings()
		}
		c.Settings = s
		cfg.Characters = append(cfg.Characters, c)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (st *Storage) listCharacterConfigs(ctx context.Context) ([]*app.CharacterConfig, error) {
	rows, err := st.dbRO.QueryContext(ctx, "SELECT character_id, name, world FROM character_configs ORDER BY character_id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cc []*app.CharacterConfig
	for rows.Next() {
		var id int64
		c := &app.CharacterConfig{}
		if err := rows.Scan(&id, &c.CharacterName, &c.CharacterWorld); err != nil {
			return nil, err
		}
		c.CharacterID = uint64(id)
		cc = append(cc, c)
	}
	return cc, rows.Err()
}

// loadSettings returns the settings of a scope or nil if the scope has no groups.
func (st *Storage) loadSettings(ctx context.Context, scopeID int64) (*app.GroupSettings, error) {
	groups, err := st.listGroups(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}
	items, err := st.listGroupItems(ctx, "mount_group_items", scopeID)
	if err != nil {
		return nil, err
	}
	unclassified, err := st.listGroupItems(ctx, "mount_group_unclassified_items", scopeID)
	if err != nil {
		return nil, err
	}
	s := &app.GroupSettings{Groups: groups}
	for _, g := range groups {
		if x, ok := items[g.ID]; ok {
			g.EnabledItems = x
		}
		if x, ok := unclassified[g.ID]; ok {
			g.Unclassified = x
		}
		s.LastGroupID = max(s.LastGroupID, g.ID)
	}
	var ground, flying sql.NullInt64
	var lastGroupID int64
	var unlockedRecorded bool
	err = st.dbRO.QueryRowContext(
		ctx,
		`SELECT ground_group_id, flying_group_id, last_group_id, unlocked_recorded
		FROM scopes
		WHERE scope_id = ?;`,
		scopeID,
	).Scan(&ground, &flying, &lastGroupID, &unlockedRecorded)
	if err != nil && !errors.Is(convertGetError(err), app.ErrNotFound) {
		return nil, err
	}
	s.GroundRoulette = optional.FromNullInt64[app.GroupID](ground)
	s.FlyingRoulette = optional.FromNullInt64[app.GroupID](flying)
	s.LastGroupID = max(s.LastGroupID, app.GroupID(lastGroupID))
	s.UnlockedRecorded = unlockedRecorded
	s.KnownUnlocked, err = st.listKnownUnlocked(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (st *Storage) listGroups(ctx context.Context, scopeID int64) ([]*app.MountGroup, error) {
	rows, err := st.dbRO.QueryContext(
		ctx,
		`SELECT group_id, name, include_new_mounts, is_default
		FROM mount_groups
		WHERE scope_id = ?
		ORDER BY position;`,
		scopeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []*app.MountGroup
	for rows.Next() {
		var id int64
		var name string
		var includeNew, isDefault bool
		if err := rows.Scan(&id, &name, &includeNew, &isDefault); err != nil {
			return nil, err
		}
		g := app.NewMountGroup(app.GroupID(id), name)
		g.IncludeNewItems = includeNew
		g.IsDefault = isDefault
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// listGroupItems returns the items of all groups in a scope from table.
func (st *Storage) listGroupItems(ctx context.Context, table string, scopeID int64) (map[app.GroupID]set.Set[app.ItemID], error) {
	rows, err := st.dbRO.QueryContext(
		ctx,
		fmt.Sprintf("SELECT group_id, item_id FROM %s WHERE scope_id = ?;", table),
		scopeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[app.GroupID]set.Set[app.ItemID])
	for rows.Next() {
		var groupID, itemID int64
		if err := rows.Scan(&groupID, &itemID); err != nil {
			return nil, err
		}
		s := m[app.GroupID(groupID)]
		s.Add(app.ItemID(itemID))
		m[app.GroupID(groupID)] = s
	}
	return m, rows.Err()
}

func (st *Storage) listKnownUnlocked(ctx context.Context, scopeID int64) (set.Set[app.ItemID], error) {
	rows, err := st.dbRO.QueryContext(
		ctx,
		"SELECT item_id FROM known_unlocked_items WHERE scope_id = ?;",
		scopeID,
	)
	if err != nil {
		return set.Set[app.ItemID]{}, err
	}
	defer rows.Close()
	ids := set.Of[app.ItemID]()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return set.Set[app.ItemID]{}, err
		}
		ids.Add(app.ItemID(id))
	}
	return ids, rows.Err()
}
