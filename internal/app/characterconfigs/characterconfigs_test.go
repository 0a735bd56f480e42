package characterconfigs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/characterconfigs"
	"github.com/ErikKalkoken/mountroulette/internal/app/testutil"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
)

func TestList(t *testing.T) {
	// given
	cfg := app.NewConfiguration()
	factory := testutil.NewFactory(nil)
	c3 := factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{CharacterID: 3})
	c1 := factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{CharacterID: 1})
	c2 := factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{CharacterID: 2})
	s := characterconfigs.New(cfg, nil)
	// when
	got := s.List()
	// then
	assert.Equal(t, []*app.CharacterConfig{c1, c2, c3}, got)
}

func TestEnsure(t *testing.T) {
	ctx := context.Background()
	t.Run("creates new config as copy of global settings", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		factory.CreateGroups(cfg.Settings, "Ground")
		store := &testutil.ConfigStoreFake{}
		s := characterconfigs.New(cfg, store)
		// when
		c, err := s.Ensure(ctx, 42, "Alpha Bravo", "Twintania")
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, uint64(42), c.CharacterID)
			assert.Equal(t, "Alpha Bravo (Twintania)", c.DisplayName())
			assert.Equal(t, cfg.Settings, c.Settings)
			assert.NotSame(t, cfg.Settings, c.Settings)
			assert.Len(t, cfg.Characters, 1)
			assert.Equal(t, 1, store.Saves())
		}
	})
	t.Run("returns existing config", func(t *testing.T) {
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		c1 := factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{
			CharacterID:    42,
			CharacterName:  "Alpha",
			CharacterWorld: "Bravo",
		})
		store := &testutil.ConfigStoreFake{}
		s := characterconfigs.New(cfg, store)
		c2, err := s.Ensure(ctx, 42, "Alpha", "Bravo")
		if assert.NoError(t, err) {
			assert.Same(t, c1, c2)
			assert.Len(t, cfg.Characters, 1)
			assert.Equal(t, 0, store.Saves())
		}
	})
	t.Run("updates name and world of existing config", func(t *testing.T) {
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		c1 := factory.CreateCharacterConfig(cfg, testutil.CreateCharacterConfigParams{CharacterID: 42})
		settings := c1.Settings
		s := characterconfigs.New(cfg, nil)
		c2, err := s.Ensure(ctx, 42, "Charlie", "Delta")
		if assert.NoError(t, err) {
			assert.Equal(t, "Charlie", c2.CharacterName)
			assert.Equal(t, "Delta", c2.CharacterWorld)
			assert.Same(t, settings, c2.Settings)
		}
	})
	t.Run("should reject missing ID", func(t *testing.T) {
		s := characterconfigs.New(app.NewConfiguration(), nil)
		_, err := s.Ensure(ctx, 0, "Alpha", "Bravo")
		assert.ErrorIs(t, err, app.ErrInvalid)
	})
	t.Run("changing global settings does not change characters", func(t *testing.T) {
		cfg := app.NewConfiguration()
		s := characterconfigs.New(cfg, nil)
		c, err := s.Ensure(ctx, 42, "Alpha", "Bravo")
		require.NoError(t, err)
		cfg.Settings.Default().Name = "Everything"
		assert.Equal(t, "Default", c.Settings.Default().Name)
	})
}

func TestImportFrom(t *testing.T) {
	ctx := context.Background()
	t.Run("replaces target settings with copy of source settings", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		source := factory.CreateCharacterConfig(cfg)
		factory.CreateGroups(source.Settings, "Ground", "Flying")
		target := factory.CreateCharacterConfig(cfg)
		store := &testutil.ConfigStoreFake{}
		s := characterconfigs.New(cfg, store)
		// when
		err := s.ImportFrom(ctx, target.CharacterID, source.CharacterID)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, source.Settings, target.Settings)
			assert.NotSame(t, source.Settings, target.Settings)
			assert.Equal(t, 1, store.Saves())
		}
	})
	t.Run("imported settings are independent of source", func(t *testing.T) {
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		source := factory.CreateCharacterConfig(cfg)
		target := factory.CreateCharacterConfig(cfg)
		s := characterconfigs.New(cfg, nil)
		require.NoError(t, s.ImportFrom(ctx, target.CharacterID, source.CharacterID))
		source.Settings.Default().EnabledItems.Add(99)
		assert.False(t, target.Settings.Default().IsEnabled(99))
	})
	t.Run("should report unknown source and leave target unchanged", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		target := factory.CreateCharacterConfig(cfg)
		before := target.Settings.Clone()
		store := &testutil.ConfigStoreFake{}
		s := characterconfigs.New(cfg, store)
		// when
		err := s.ImportFrom(ctx, target.CharacterID, 42)
		// then
		assert.ErrorIs(t, err, app.ErrNotFound)
		assert.Equal(t, before, target.Settings)
		assert.Equal(t, 0, store.Saves())
	})
	t.Run("importing a character into itself replaces settings with an equal copy", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		c := factory.CreateCharacterConfig(cfg)
		before := c.Settings
		store := &testutil.ConfigStoreFake{}
		s := characterconfigs.New(cfg, store)
		// when
		err := s.ImportFrom(ctx, c.CharacterID, c.CharacterID)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, before, c.Settings)
			assert.NotSame(t, before, c.Settings)
			assert.Equal(t, 1, store.Saves())
		}
	})
	t.Run("should report unknown target", func(t *testing.T) {
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		source := factory.CreateCharacterConfig(cfg)
		s := characterconfigs.New(cfg, nil)
		err := s.ImportFrom(ctx, 42, source.CharacterID)
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	t.Run("can delete character config", func(t *testing.T) {
		// given
		cfg := app.NewConfiguration()
		factory := testutil.NewFactory(nil)
		c1 := factory.CreateCharacterConfig(cfg)
		c2 := factory.CreateCharacterConfig(cfg)
		store := &testutil.ConfigStoreFake{}
		s := characterconfigs.New(cfg, store)
		require.NoError(t, s.Toggle(c1.CharacterID))
		// when
		err := s.Delete(ctx, c1.CharacterID)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, []*app.CharacterConfig{c2}, s.List())
			assert.True(t, s.Selected().IsEmpty())
			assert.Equal(t, 1, store.Saves())
		}
	})
	t.Run("should report unknown character", func(t *testing.T) {
		s := characterconfigs.New(app.NewConfiguration(), nil)
		err := s.Delete(ctx, 42)
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
}

func TestSelection(t *testing.T) {
	cfg := app.NewConfiguration()
	factory := testutil.NewFactory(nil)
	c1 := factory.CreateCharacterConfig(cfg)
	c2 := factory.CreateCharacterConfig(cfg)
	s := characterconfigs.New(cfg, nil)
	t.Run("nothing is selected initially", func(t *testing.T) {
		assert.True(t, s.Selected().IsEmpty())
	})
	t.Run("can select character", func(t *testing.T) {
		require.NoError(t, s.Toggle(c1.CharacterID))
		assert.Equal(t, optional.New(c1.CharacterID), s.Selected())
	})
	t.Run("selecting another character replaces selection", func(t *testing.T) {
		require.NoError(t, s.Toggle(c2.CharacterID))
		assert.Equal(t, optional.New(c2.CharacterID), s.Selected())
	})
	t.Run("toggling selected character unselects it", func(t *testing.T) {
		require.NoError(t, s.Toggle(c2.CharacterID))
		assert.True(t, s.Selected().IsEmpty())
	})
	t.Run("can not select unknown character", func(t *testing.T) {
		err := s.Toggle(42)
		assert.ErrorIs(t, err, app.ErrNotFound)
		assert.True(t, s.Selected().IsEmpty())
	})
}
