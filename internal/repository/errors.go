// Package repository implements the persistence collaborators of the
// service: the MySQL user store, the reset-notification audit store and
// the redis revocation store. Sentinel errors defined here let the
// service layer distinguish failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, e.g. signing up with an already registered username or
// email. Handlers should translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("record already exists")

// ErrStoreUnavailable is returned when the backing store cannot be
// reached. Callers on the token path must treat it as a rejection
// (fail closed), never as an absent revocation entry.
var ErrStoreUnavailable = errors.New("store unavailable")
