// Package repository defines error values that are reused across
// multiple repositories.  These sentinels let handlers distinguish
// failure scenarios: ErrForbidden means the caller tried a mutation
// on a room they did not create, while the duplicate errors surface
// violations of the uniqueness invariants enforced by the schema
// (one membership per user per room, one vote per user per song per
// room).
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts a lifecycle
// operation on a room created by someone else.  Room lifecycle is
// creator-gated only; in-room role permissions never override it.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because
// of conflicting state.  Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).  The schema's UNIQUE constraints are the final
// authority for room codes, memberships and votes; repositories map
// 1062 onto the matching sentinel error.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
