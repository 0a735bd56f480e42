package groupregistry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/optional"
)

// RouletteGroup returns the group a roulette points to.
// It reports false when the roulette is disabled.
func (r *Registry) RouletteGroup(which app.Roulette) (*app.MountGroup, bool, error) {
	id, err := r.settings.Roulette(which).Value()
	if err != nil {
		return nil, false, nil
	}
	g, ok := r.settings.Group(id)
	if !ok {
		return nil, false, fmt.Errorf("%s roulette group %d: %w", which, id, app.ErrUnresolvedReference)
	}
	return g, true, nil
}

// EnableRoulette enables a roulette. A disabled roulette is pointed to the default group,
// an enabled one is not changed.
func (r *Registry) EnableRoulette(ctx context.Context, which app.Roulette) {
	if !r.settings.Roulette(which).IsEmpty() {
		return
	}
	r.settings.SetRoulette(which, optional.New(r.settings.Default().ID))
	slog.Info("Roulette enabled", "roulette", which)
	r.save(ctx)
}

// DisableRoulette disables a roulette.
func (r *Registry) DisableRoulette(ctx context.Context, which app.Roulette) {
	if r.settings.Roulette(which).IsEmpty() {
		return
	}
	r.settings.SetRoulette(which, optional.Optional[app.GroupID]{})
	slog.Info("Roulette disabled", "roulette", which)
	r.save(ctx)
}

// SetRouletteGroup points a roulette to a group.
func (r *Registry) SetRouletteGroup(ctx context.Context, which app.Roulette, id app.GroupID) error {
	if _, ok := r.settings.Group(id); !ok {
		return fmt.Errorf("set %s roulette to group %d: %w", which, id, app.ErrUnresolvedReference)
	}
	r.settings.SetRoulette(which, optional.New(id))
	slog.Info("Roulette group changed", "roulette", which, "group", id)
	r.save(ctx)
	return nil
}

// RouletteEnabled reports whether any roulette is enabled.
// This is derived from the roulettes on every call and never stored.
func (r *Registry) RouletteEnabled() bool {
	return r.settings.Enabled()
}
