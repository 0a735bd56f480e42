package configservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ErikKalkoken/go-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/bulkselection"
	"github.com/ErikKalkoken/mountroulette/internal/app/configservice"
	"github.com/ErikKalkoken/mountroulette/internal/app/testutil"
	"github.com/ErikKalkoken/mountroulette/internal/xassert"
)

type dialogFake struct {
	titles []string
	bodies []string
}

func (d *dialogFake) Confirm(title, body string, options []string) {
	d.titles = append(d.titles, title)
	d.bodies = append(d.bodies, body)
}

func newService(t *testing.T) (*configservice.Service, *testutil.ConfigStoreFake, *dialogFake) {
	store := &testutil.ConfigStoreFake{}
	d := &dialogFake{}
	s := configservice.New(store, testutil.NewCatalog(2000, 1500), d)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(s.Close)
	return s, store, d
}

func TestInit(t *testing.T) {
	t.Run("loads config from store", func(t *testing.T) {
		// given
		ctx := context.Background()
		store := &testutil.ConfigStoreFake{}
		cfg := app.NewConfiguration()
		testutil.NewFactory(nil).CreateGroups(cfg.Settings, "Ground")
		require.NoError(t, store.SaveConfig(ctx, cfg))
		s := configservice.New(store, testutil.NewCatalog(10, 5), nil)
		// when
		err := s.Init(ctx)
		// then
		if assert.NoError(t, err) {
			defer s.Close()
			assert.Equal(t, cfg.Settings.Groups, s.Config().Settings.Groups)
			_, err := s.Registry().GroupByName("Ground")
			assert.NoError(t, err)
		}
	})
	t.Run("selects mounts unlocked since the last run", func(t *testing.T) {
		// given
		ctx := context.Background()
		store := &testutil.ConfigStoreFake{}
		s1 := configservice.New(store, testutil.NewCatalog(10, 5), nil)
		require.NoError(t, s1.Init(ctx))
		_, err := s1.Registry().SetIncludeNewItems(ctx, s1.Registry().Default().ID, true)
		require.NoError(t, err)
		s1.Close()
		s2 := configservice.New(store, testutil.NewCatalog(10, 7), nil)
		// when
		err = s2.Init(ctx)
		// then
		if assert.NoError(t, err) {
			defer s2.Close()
			xassert.EqualSet(t, set.Of[app.ItemID](6, 7), s2.Registry().Default().EnabledItems)
			xassert.EqualSet(t, set.Of[app.ItemID](6, 7), store.Saved().Settings.Default().EnabledItems)
		}
	})
	t.Run("should report load errors", func(t *testing.T) {
		myErr := errors.New("failed")
		store := &testutil.ConfigStoreFake{Err: myErr}
		s := configservice.New(store, testutil.NewCatalog(10, 5), nil)
		err := s.Init(context.Background())
		assert.ErrorIs(t, err, myErr)
	})
}

func TestActiveCharacter(t *testing.T) {
	ctx := context.Background()
	t.Run("opens settings of active character", func(t *testing.T) {
		// given
		s, store, _ := newService(t)
		saves := store.Saves()
		// when
		err := s.SetActiveCharacter(ctx, 42, "Alpha", "Bravo")
		// then
		if assert.NoError(t, err) {
			c, err := s.Characters().Get(42)
			require.NoError(t, err)
			assert.Same(t, c.Settings, s.Registry().Settings())
			assert.True(t, s.ActiveCharacter().Is(42))
			assert.Equal(t, saves+1, store.Saves())
		}
	})
	t.Run("changes of active character do not change global settings", func(t *testing.T) {
		s, _, _ := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 42, "Alpha", "Bravo"))
		_, err := s.Registry().Add(ctx, "Ground")
		require.NoError(t, err)
		_, ok := s.Config().Settings.GroupByName("Ground")
		assert.False(t, ok)
	})
	t.Run("can return to global settings", func(t *testing.T) {
		s, _, _ := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 42, "Alpha", "Bravo"))
		require.NoError(t, s.ClearActiveCharacter(ctx))
		assert.True(t, s.ActiveCharacter().IsEmpty())
		assert.Same(t, s.Config().Settings, s.Registry().Settings())
	})
}

func TestRequestDeleteGroup(t *testing.T) {
	ctx := context.Background()
	t.Run("deletes group when confirmed", func(t *testing.T) {
		// given
		s, store, d := newService(t)
		g, err := s.Registry().Add(ctx, "Ground")
		require.NoError(t, err)
		saves := store.Saves()
		// when
		err = s.RequestDeleteGroup(g.ID)
		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"Confirm deletion of mount group"}, d.titles)
		assert.Contains(t, d.bodies[0], "Ground")
		assert.Len(t, s.Registry().Groups(), 2)
		assert.Equal(t, saves, store.Saves())
		require.NoError(t, s.Confirm(ctx))
		assert.Len(t, s.Registry().Groups(), 1)
		assert.Equal(t, saves+1, store.Saves())
	})
	t.Run("keeps group when cancelled", func(t *testing.T) {
		s, _, _ := newService(t)
		g, err := s.Registry().Add(ctx, "Ground")
		require.NoError(t, err)
		require.NoError(t, s.RequestDeleteGroup(g.ID))
		require.NoError(t, s.Cancel(ctx))
		assert.Len(t, s.Registry().Groups(), 2)
	})
	t.Run("second request replaces first", func(t *testing.T) {
		s, _, _ := newService(t)
		g1, err := s.Registry().Add(ctx, "Ground")
		require.NoError(t, err)
		g2, err := s.Registry().Add(ctx, "Flying")
		require.NoError(t, err)
		require.NoError(t, s.RequestDeleteGroup(g1.ID))
		require.NoError(t, s.RequestDeleteGroup(g2.ID))
		require.NoError(t, s.Confirm(ctx))
		_, err = s.Registry().Group(g1.ID)
		assert.NoError(t, err)
		_, err = s.Registry().Group(g2.ID)
		assert.ErrorIs(t, err, app.ErrNotFound)
		assert.ErrorIs(t, s.Confirm(ctx), app.ErrNoPendingRequest)
	})
	t.Run("confirming deletion of last group reports error", func(t *testing.T) {
		s, _, _ := newService(t)
		require.NoError(t, s.RequestDeleteGroup(s.Registry().Default().ID))
		err := s.Confirm(ctx)
		assert.ErrorIs(t, err, app.ErrLastGroup)
	})
	t.Run("should report unknown group", func(t *testing.T) {
		s, _, d := newService(t)
		err := s.RequestDeleteGroup(42)
		assert.ErrorIs(t, err, app.ErrNotFound)
		assert.Empty(t, d.titles)
	})
}

func TestRequestBulkUpdate(t *testing.T) {
	ctx := context.Background()
	t.Run("selects mounts when confirmed", func(t *testing.T) {
		// given
		s, _, d := newService(t)
		id := s.Registry().Default().ID
		// when
		n, err := s.RequestBulkUpdate(id, true, bulkselection.AllItems())
		// then
		require.NoError(t, err)
		assert.Equal(t, 1500, n)
		assert.Equal(t, "Do you really want to select 1,500 unlocked mounts in Default?", d.bodies[0])
		assert.Equal(t, 0, s.Registry().Default().EnabledItems.Size())
		require.NoError(t, s.Confirm(ctx))
		assert.Equal(t, 1500, s.Registry().Default().EnabledItems.Size())
	})
	t.Run("makes no request when nothing would change", func(t *testing.T) {
		s, _, d := newService(t)
		n, err := s.RequestBulkUpdate(s.Registry().Default().ID, false, bulkselection.OnlySelected())
		if assert.NoError(t, err) {
			assert.Equal(t, 0, n)
			assert.Empty(t, d.titles)
			_, ok := s.Gate().Pending()
			assert.False(t, ok)
		}
	})
	t.Run("should report invalid page", func(t *testing.T) {
		s, _, _ := newService(t)
		_, err := s.RequestBulkUpdate(s.Registry().Default().ID, true, bulkselection.Page(0))
		assert.ErrorIs(t, err, app.ErrInvalid)
	})
}

func TestRequestCharacterOperations(t *testing.T) {
	ctx := context.Background()
	t.Run("imports settings when confirmed", func(t *testing.T) {
		// given
		s, _, d := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 1, "Alpha", "Bravo"))
		_, err := s.Registry().Add(ctx, "Ground")
		require.NoError(t, err)
		require.NoError(t, s.SetActiveCharacter(ctx, 2, "Charlie", "Delta"))
		require.NoError(t, s.SetActiveCharacter(ctx, 3, "Echo", "Foxtrot"))
		// when
		err = s.RequestImportCharacter(2, 1)
		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"Import settings?"}, d.titles)
		require.NoError(t, s.Confirm(ctx))
		c, err := s.Characters().Get(2)
		require.NoError(t, err)
		_, ok := c.Settings.GroupByName("Ground")
		assert.True(t, ok)
	})
	t.Run("imports settings into active character and opens them", func(t *testing.T) {
		// given
		s, _, _ := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 1, "Alpha", "Bravo"))
		_, err := s.Registry().Add(ctx, "Ground")
		require.NoError(t, err)
		require.NoError(t, s.SetActiveCharacter(ctx, 2, "Charlie", "Delta"))
		// when
		err = s.RequestImportCharacter(2, 1)
		// then
		require.NoError(t, err)
		require.NoError(t, s.Confirm(ctx))
		c, err := s.Characters().Get(2)
		require.NoError(t, err)
		assert.Same(t, c.Settings, s.Registry().Settings())
		_, err = s.Registry().GroupByName("Ground")
		assert.NoError(t, err)
		_, err = s.Registry().Add(ctx, "Flying")
		require.NoError(t, err)
		_, ok := c.Settings.GroupByName("Flying")
		assert.True(t, ok)
	})
	t.Run("can not import from active character", func(t *testing.T) {
		s, _, d := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 1, "Alpha", "Bravo"))
		require.NoError(t, s.SetActiveCharacter(ctx, 2, "Charlie", "Delta"))
		err := s.RequestImportCharacter(1, 2)
		assert.ErrorIs(t, err, app.ErrInvalid)
		assert.Empty(t, d.titles)
	})
	t.Run("should report unknown source", func(t *testing.T) {
		s, _, _ := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 1, "Alpha", "Bravo"))
		require.NoError(t, s.ClearActiveCharacter(ctx))
		err := s.RequestImportCharacter(1, 42)
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
	t.Run("deletes character when confirmed", func(t *testing.T) {
		s, _, d := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 1, "Alpha", "Bravo"))
		require.NoError(t, s.ClearActiveCharacter(ctx))
		require.NoError(t, s.RequestDeleteCharacter(1))
		assert.Equal(t, []string{"Delete settings?"}, d.titles)
		assert.Equal(t, "Delete settings for Alpha (Bravo)? This action cannot be undone!", d.bodies[0])
		require.NoError(t, s.Confirm(ctx))
		assert.False(t, s.Characters().Exists(1))
	})
	t.Run("can not delete active character", func(t *testing.T) {
		s, _, _ := newService(t)
		require.NoError(t, s.SetActiveCharacter(ctx, 1, "Alpha", "Bravo"))
		err := s.RequestDeleteCharacter(1)
		assert.ErrorIs(t, err, app.ErrInvalid)
	})
	t.Run("should report unknown character", func(t *testing.T) {
		s, _, _ := newService(t)
		err := s.RequestDeleteCharacter(42)
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
}
