// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// depending on driver-specific error strings.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist or
// is not visible to the requesting user. Handlers should translate
// this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with a unique
// constraint, such as registering an email or phone that is already
// taken. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
