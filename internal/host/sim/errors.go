package sim

import "errors"

// Errors returned by simulated pages.
var (
	// ErrClosed is returned when operating on a closed page.
	ErrClosed = errors.New("page is closed")

	// ErrQueueFull is returned when a page cannot accept more work.
	ErrQueueFull = errors.New("page work queue full")

	// ErrNoElement is returned when focusing an element the page lacks.
	ErrNoElement = errors.New("no such element")
)
