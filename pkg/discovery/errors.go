package discovery

import "errors"

// Package-level sentinel errors for discovery operations.
var (
	// ErrClosed is returned when an operation is attempted on a closed component.
	ErrClosed = errors.New("discovery: closed")

	// ErrAlreadyStarted is returned when starting an already-started advertisement.
	ErrAlreadyStarted = errors.New("discovery: already started")

	// ErrInvalidPort is returned when the port number is out of range.
	ErrInvalidPort = errors.New("discovery: invalid port (must be 1-65535)")

	// ErrInvalidRole is returned for a role other than initiator or responder.
	ErrInvalidRole = errors.New("discovery: invalid role")

	// ErrNotFound is returned when no matching peer answered before the timeout.
	ErrNotFound = errors.New("discovery: peer not found")

	// ErrNoAddresses is returned when a resolved peer has no usable address.
	ErrNoAddresses = errors.New("discovery: peer has no addresses")
)
