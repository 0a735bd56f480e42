// Package optional provides type safe optional variables.
//
// It is used for references which may or may not point to something,
// e.g. a roulette that is not assigned to any group.
package optional

import (
	"errors"
	"fmt"
)

var ErrIsEmpty = errors.New("optional is empty")

// Optional represents a variable that may contain a value or not.
//
// Note that the zero value of an Optional is an empty Optional.
type Optional[T comparable] struct {
	value     T
	isPresent bool
}

// New returns a new Optional with a value.
func New[T comparable](v T) Optional[T] {
	return Optional[T]{value: v, isPresent: true}
}

// IsEmpty reports whether an Optional is empty.
func (o Optional[T]) IsEmpty() bool {
	return !o.isPresent
}

// Clear removes any value.
func (o *Optional[T]) Clear() {
	var z T
	o.value = z
	o.isPresent = false
}

// Is reports whether an Optional holds the value v.
func (o Optional[T]) Is(v T) bool {
	return o.isPresent && o.value == v
}

// String returns a string representation of an Optional.
func (o Optional[T]) String() string {
	if o.IsEmpty() {
		return "<empty>"
	}
	return fmt.Sprint(o.value)
}

// Value returns the value of an Optional.
func (o Optional[T]) Value() (T, error) {
	var z T
	if o.IsEmpty() {
		return z, ErrIsEmpty
	}
	return o.value, nil
}
