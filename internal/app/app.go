// Package app is the root package of all domain related packages.
//
// All entity types and the errors shared between the domain packages are defined in this package.
package app

import "errors"

var (
	ErrDuplicateName       = errors.New("name already exists")
	ErrInvalid             = errors.New("invalid operation")
	ErrLastGroup           = errors.New("can not delete the last group")
	ErrNotFound            = errors.New("object not found")
	ErrNoPendingRequest    = errors.New("no pending request")
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// Default names and sizes
const (
	DefaultGroupName = "Default"
	DefaultPageSize  = 30
)
