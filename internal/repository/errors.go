// Package repository holds the in-memory registries shared by the HTTP
// layer and the background consumer, plus the sentinel errors handlers
// use to pick response codes. State is process-lifetime by design: the
// system accepts losing it on restart in exchange for having no database
// between the choreographed services.
package repository

import "errors"

// ErrNotFound is returned when a booking id has no entry in the registry.
// Handlers translate it into an HTTP 404; event handlers treat it as a
// dropped event rather than a failure that stops the consumer.
var ErrNotFound = errors.New("booking not found")

// ErrTerminalState is returned when a mutation targets a booking whose
// status admits no further transitions (CANCELLED, COMPLETED). Handlers
// translate it into an HTTP 409.
var ErrTerminalState = errors.New("booking is in a terminal state")
