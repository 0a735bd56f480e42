package testutil

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/icrowley/fake"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/storage"
)

const startIDCharacter = 18_014_398_509_481_985

var characterIDCounter atomic.Uint64

func init() {
	characterIDCounter.Store(startIDCharacter)
}

// Factory creates test objects.
type Factory struct {
	st *storage.Storage

	counter *atomic.Int64
}

// NewFactory returns a new factory. st can be nil when objects do not need to be stored.
func NewFactory(st *storage.Storage) Factory {
	return Factory{st: st, counter: new(atomic.Int64)}
}

// CreateGroupParams are the optional parameters for [Factory.CreateGroup].
type CreateGroupParams struct {
	Name            string
	EnabledItems    []app.ItemID
	IncludeNewItems bool
}

// CreateGroup appends a new group to s and returns it.
// When no name is given a random unique name is used.
func (f Factory) CreateGroup(s *app.GroupSettings, args ...CreateGroupParams) *app.MountGroup {
	var arg CreateGroupParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.Name == "" {
		arg.Name = fmt.Sprintf("%s %d", fake.Color(), f.counter.Add(1))
	}
	g := app.NewMountGroup(s.NewGroupID(), arg.Name)
	g.IncludeNewItems = arg.IncludeNewItems
	if arg.EnabledItems == nil {
		for range rand.IntN(5) {
			g.EnabledItems.Add(app.ItemID(rand.IntN(100) + 1))
		}
	} else {
		for _, id := range arg.EnabledItems {
			g.EnabledItems.Add(id)
		}
	}
	s.Groups = append(s.Groups, g)
	return g
}

// CreateGroups appends new groups with the given names to s.
func (f Factory) CreateGroups(s *app.GroupSettings, names ...string) []*app.MountGroup {
	var gg []*app.MountGroup
	for _, n := range names {
		gg = append(gg, f.CreateGroup(s, CreateGroupParams{Name: n, EnabledItems: []app.ItemID{}}))
	}
	return gg
}

// CreateCharacterConfigParams are the optional parameters for [Factory.CreateCharacterConfig].
type CreateCharacterConfigParams struct {
	CharacterID    uint64
	CharacterName  string
	CharacterWorld string
	Settings       *app.GroupSettings
}

// CreateCharacterConfig adds a new character configuration to cfg and returns it.
func (f Factory) CreateCharacterConfig(cfg *app.Configuration, args ...CreateCharacterConfigParams) *app.CharacterConfig {
	var arg CreateCharacterConfigParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.CharacterID == 0 {
		arg.CharacterID = characterIDCounter.Add(1)
	}
	if arg.CharacterName == "" {
		arg.CharacterName = fake.FullName()
	}
	if arg.CharacterWorld == "" {
		arg.CharacterWorld = fake.City()
	}
	if arg.Settings == nil {
		arg.Settings = app.NewGroupSettings()
		f.CreateGroup(arg.Settings)
	}
	c := &app.CharacterConfig{
		CharacterID:    arg.CharacterID,
		CharacterName:  arg.CharacterName,
		CharacterWorld: arg.CharacterWorld,
		Settings:       arg.Settings,
	}
	cfg.Characters = append(cfg.Characters, c)
	return c
}

// SaveConfig stores cfg in the factory's storage.
func (f Factory) SaveConfig(cfg *app.Configuration) {
	if f.st == nil {
		panic("factory has no storage")
	}
	if err := f.st.SaveConfig(context.Background(), cfg); err != nil {
		panic(err)
	}
}
