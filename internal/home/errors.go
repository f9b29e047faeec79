package home

import "errors"

var (
	// ErrInvalidStructure is returned when a structure document fails
	// schema validation or cannot be parsed. The document is rejected
	// wholesale; no part of it is applied.
	ErrInvalidStructure = errors.New("home: invalid structure document")
)
