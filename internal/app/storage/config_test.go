package storage_test

import (
	"context"
	"testing"

	"github.com/ErikKalkoken/go-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/testutil"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
	"github.com/ErikKalkoken/mountroulette/internal/xassert"
)

func TestConfig(t *testing.T) {
	db, st, factory := testutil.NewDBInMemory()
	defer db.Close()
	ctx := context.Background()
	t.Run("returns default config when nothing was stored", func(t *testing.T) {
		// when
		got, err := st.LoadConfig(ctx)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, app.NewConfiguration(), got)
		}
	})
	t.Run("can save and load config", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		g1 := factory.CreateGroup(cfg.Settings, testutil.CreateGroupParams{
			Name:         "Ground",
			EnabledItems: []app.ItemID{3, 1, 2},
		})
		g2 := factory.CreateGroup(cfg.Settings, testutil.CreateGroupParams{
			Name:            "Flying",
			IncludeNewItems: true,
		})
		cfg.Settings.GroundRoulette = optional.New(g1.ID)
		cfg.Settings.FlyingRoulette = optional.New(g2.ID)
		c := factory.CreateCharacterConfig(cfg)
		// when
		err := st.SaveConfig(ctx, cfg)
		// then
		if assert.NoError(t, err) {
			got, err := st.LoadConfig(ctx)
			if assert.NoError(t, err) {
				assert.Equal(t, cfg, got)
				assert.Equal(t, c, got.Characters[0])
			}
		}
	})
	t.Run("keeps group order and default flag", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory.CreateGroups(cfg.Settings, "Charlie", "Alpha", "Bravo")
		cfg.Settings.Groups[0].IsDefault = false
		cfg.Settings.Groups[2].IsDefault = true
		factory.SaveConfig(cfg)
		// when
		got, err := st.LoadConfig(ctx)
		// then
		if assert.NoError(t, err) {
			var names []string
			for _, g := range got.Settings.Groups {
				names = append(names, g.Name)
			}
			assert.Equal(t, []string{app.DefaultGroupName, "Charlie", "Alpha", "Bravo"}, names)
			assert.Equal(t, "Alpha", got.Settings.Default().Name)
		}
	})
	t.Run("saving replaces previous config", func(t *testing.T) {
		// given
		cfg1 := app.NewConfiguration()
		factory.CreateGroups(cfg1.Settings, "Alpha")
		factory.CreateCharacterConfig(cfg1)
		factory.SaveConfig(cfg1)
		cfg2 := app.NewConfiguration()
		factory.CreateGroups(cfg2.Settings, "Bravo")
		// when
		err := st.SaveConfig(ctx, cfg2)
		// then
		if assert.NoError(t, err) {
			got, err := st.LoadConfig(ctx)
			if assert.NoError(t, err) {
				assert.Equal(t, cfg2, got)
				assert.Empty(t, got.Characters)
			}
		}
	})
	t.Run("does not save invalid config", func(t *testing.T) {
		// given
		cfg1 := app.NewConfiguration()
		factory.CreateGroups(cfg1.Settings, "Alpha")
		factory.SaveConfig(cfg1)
		cfg2 := app.NewConfiguration()
		factory.CreateGroups(cfg2.Settings, "Bravo", "BRAVO")
		// when
		err := st.SaveConfig(ctx, cfg2)
		// then
		assert.ErrorIs(t, err, app.ErrDuplicateName)
		got, err := st.LoadConfig(ctx)
		if assert.NoError(t, err) {
			assert.Equal(t, cfg1, got)
		}
	})
	t.Run("loads characters in ascending order", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{CharacterID: 7})
		factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{CharacterID: 3})
		factory.SaveConfig(cfg)
		// when
		got, err := st.LoadConfig(ctx)
		// then
		if assert.NoError(t, err) && assert.Len(t, got.Characters, 2) {
			assert.Equal(t, uint64(3), got.Characters[0].CharacterID)
			assert.Equal(t, uint64(7), got.Characters[1].CharacterID)
		}
	})
	t.Run("keeps last group ID of deleted groups", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory.CreateGroups(cfg.Settings, "Alpha", "Bravo")
		cfg.Settings.Groups = cfg.Settings.Groups[:2]
		factory.SaveConfig(cfg)
		// when
		got, err := st.LoadConfig(ctx)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, app.GroupID(3), got.Settings.LastGroupID)
			assert.Equal(t, app.GroupID(4), got.Settings.NewGroupID())
		}
	})
	t.Run("keeps known unlocked and unclassified mounts", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		g := factory.CreateGroup(cfg.Settings, testutil.CreateGroupParams{Name: "Alpha", EnabledItems: []app.ItemID{1}})
		g.Unclassified.Add(5)
		g.Unclassified.Add(6)
		cfg.Settings.KnownUnlocked.Add(1)
		cfg.Settings.KnownUnlocked.Add(5)
		cfg.Settings.KnownUnlocked.Add(6)
		cfg.Settings.UnlockedRecorded = true
		c := factory.CreateCharacterConfig(cfg)
		c.Settings.UnlockedRecorded = true
		factory.SaveConfig(cfg)
		// when
		got, err := st.LoadConfig(ctx)
		// then
		if assert.NoError(t, err) {
			assert.True(t, got.Settings.UnlockedRecorded)
			xassert.EqualSet(t, set.Of[app.ItemID](1, 5, 6), got.Settings.KnownUnlocked)
			g2, ok := got.Settings.Group(g.ID)
			if assert.True(t, ok) {
				xassert.EqualSet(t, set.Of[app.ItemID](5, 6), g2.Unclassified)
			}
			assert.True(t, got.Characters[0].Settings.UnlockedRecorded)
			assert.Equal(t, 0, got.Characters[0].Settings.KnownUnlocked.Size())
		}
	})
	t.Run("rejects group names which differ only in non-ASCII case", func(t *testing.T) {
		// given
		cfg1 := app.NewConfiguration()
		factory.CreateGroups(cfg1.Settings, "Alpha")
		factory.SaveConfig(cfg1)
		cfg2 := app.NewConfiguration()
		factory.CreateGroups(cfg2.Settings, "Émeraude", "ÉMERAUDE")
		// when
		err := st.SaveConfig(ctx, cfg2)
		// then
		assert.ErrorIs(t, err, app.ErrDuplicateName)
		got, err := st.LoadConfig(ctx)
		if assert.NoError(t, err) {
			assert.Equal(t, cfg1, got)
		}
	})
}

func TestConfigOnDisk(t *testing.T) {
	_, st, factory := testutil.NewDBOnDisk(t)
	ctx := context.Background()
	cfg := app.NewConfiguration()
	factory.CreateGroup(cfg.Settings, testutil.CreateGroupParams{Name: "Ground", EnabledItems: []app.ItemID{1}})
	factory.CreateCharacterConfig(cfg)
	require.NoError(t, st.SaveConfig(ctx, cfg))
	got, err := st.LoadConfig(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, cfg, got)
	}
}
