// Package confirmation implements a two-phase protocol for destructive operations.
//
// An operation is first requested, which shows a dialog to the user.
// The operation is only executed once the user confirms it.
// At most one request is pending at any time.
package confirmation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ErikKalkoken/mountroulette/internal/app"
)

// Labels of the options shown to the user.
const (
	OptionConfirm = "Confirm"
	OptionCancel  = "Cancel"
)

// Dialog shows a question with options to the user. Implementations must not block.
// The answer is reported back by calling [Gate.Resolve].
type Dialog interface {
	Confirm(title, body string, options []string)
}

// Action is a destructive operation waiting for confirmation.
type Action func(ctx context.Context) error

// Request is a pending request for confirming an action.
type Request struct {
	Title  string
	Body   string
	action Action
}

// Gate holds at most one pending request. It is safe for concurrent use.
type Gate struct {
	dialog Dialog

	mu      sync.Mutex
	pending *Request
}

// New returns a new gate which shows requests with dialog.
// dialog can be nil, in which case requests are only kept pending.
func New(dialog Dialog) *Gate {
	return &Gate{dialog: dialog}
}

// Request asks the user to confirm an action. A pending request is replaced.
// The action is only executed when the request is confirmed with [Gate.Resolve].
func (g *Gate) Request(title, body string, action Action) {
	g.mu.Lock()
	if g.pending != nil {
		slog.Info("Pending request replaced", "title", g.pending.Title)
	}
	g.pending = &Request{Title: title, Body: body, action: action}
	g.mu.Unlock()
	if g.dialog != nil {
		g.dialog.Confirm(title, body, []string{OptionConfirm, OptionCancel})
	}
}

// Resolve resolves the pending request. The action is executed when confirmed is true
// and dropped otherwise. Resolve returns the error of the action.
func (g *Gate) Resolve(ctx context.Context, confirmed bool) error {
	g.mu.Lock()
	r := g.pending
	g.pending = nil
	g.mu.Unlock()
	if r == nil {
		return fmt.Errorf("resolve: %w", app.ErrNoPendingRequest)
	}
	if !confirmed {
		slog.Info("Request cancelled", "title", r.Title)
		return nil
	}
	if err := r.action(ctx); err != nil {
		return fmt.Errorf("%s: %w", r.Title, err)
	}
	return nil
}

// Pending returns the pending request and reports whether there is one.
func (g *Gate) Pending() (Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Request{}, false
	}
	return *g.pending, true
}
