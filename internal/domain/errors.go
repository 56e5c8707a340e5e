package domain

import "errors"

var (
	// ErrInput marks structurally invalid input: not a list of records, or a field of the wrong type.
	ErrInput = errors.New("invalid input")
	// ErrNotFound is returned by stores when the requested run does not exist.
	ErrNotFound = errors.New("not found")
)
