package bulkselection

import "fmt"

type scopeKind uint

const (
	scopeAll scopeKind = iota
	scopePage
	scopeSelected
	scopeUnselected
)

// Scope defines which mounts a bulk update applies to.
type Scope struct {
	kind scopeKind
	page int
}

// AllItems returns a scope for all unlocked mounts.
func AllItems() Scope {
	return Scope{kind: scopeAll}
}

// Page returns a scope for the mounts on page n. Pages start at 1.
func Page(n int) Scope {
	return Scope{kind: scopePage, page: n}
}

// OnlySelected returns a scope for the mounts which are currently selected.
func OnlySelected() Scope {
	return Scope{kind: scopeSelected}
}

// OnlyUnselected returns a scope for the mounts which are currently not selected.
func OnlyUnselected() Scope {
	return Scope{kind: scopeUnselected}
}

// ForSelect returns the partition scope which a "select all" or "unselect all" action affects,
// i.e. the currently unselected mounts when selecting and the currently selected ones otherwise.
func ForSelect(selected bool) Scope {
	if selected {
		return OnlyUnselected()
	}
	return OnlySelected()
}

// Description returns a short description of the affected mounts.
func (s Scope) Description() string {
	switch s.kind {
	case scopePage:
		return fmt.Sprintf("mounts on page %d", s.page)
	case scopeSelected:
		return "currently selected mounts"
	case scopeUnselected:
		return "currently unselected mounts"
	}
	return "unlocked mounts"
}

func (s Scope) String() string {
	return s.Description()
}
