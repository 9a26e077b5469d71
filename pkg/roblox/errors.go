package roblox

import "errors"

var (
	// ErrInvalidConfig is returned for an unusable Config.
	ErrInvalidConfig = errors.New("invalid session config")

	// ErrNotFound is returned when a lookup yields no element for a requested id.
	ErrNotFound = errors.New("not found")

	// ErrNoTransport is returned by New when no transport is given.
	ErrNoTransport = errors.New("session requires a transport")
)
