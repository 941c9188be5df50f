package engine

import "errors"

// Errors returned by engine construction.
var (
	// ErrNoTable indicates an engine was created without a command table.
	ErrNoTable = errors.New("no command table")

	// ErrMissingCapability is logged when a command needs a host
	// capability the surface does not provide.
	ErrMissingCapability = errors.New("host capability not available")
)
