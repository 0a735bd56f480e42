// Package xassert extends the testify assert package with additional test helpers.
package xassert

import (
	"slices"
	"testing"

	"github.com/ErikKalkoken/go-set"
	"github.com/stretchr/testify/assert"
)

// EqualSet asserts that two sets are equal.
func EqualSet[T comparable](t *testing.T, want, got set.Set[T]) {
	t.Helper()
	assert.Truef(t, got.Equal(want), "Not equal:\nexpected: %s\nactual  : %s", want, got)
}

// ContainsAll asserts that a set contains all of the given elements.
func ContainsAll[T comparable](t *testing.T, s set.Set[T], elems ...T) {
	t.Helper()
	missing := slices.DeleteFunc(slices.Clone(elems), func(x T) bool {
		return s.Contains(x)
	})
	assert.Emptyf(t, missing, "Set %s is missing elements: %v", s, missing)
}
