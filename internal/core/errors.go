package core

import "errors"

var (
	// ErrPreviewTooLong is returned when a requested preview duration
	// exceeds the configured maximum.
	ErrPreviewTooLong = errors.New("core: preview duration exceeds configured maximum")

	// ErrNoStructure is returned when a structure-dependent call is made
	// and no structure document is loaded.
	ErrNoStructure = errors.New("core: no structure document loaded")
)
