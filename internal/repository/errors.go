// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as handlers
// to pick the right reason code without inspecting driver error strings.
// ErrNameExists and ErrEmailExists come out of the registrar path and map to
// NAME_ALREADY_USED / EMAIL_ALREADY_USED, while the not-found sentinels
// deliberately cover both "row absent" and "row present but filtered out by
// the access predicate" — the two must stay indistinguishable.
package repository

import "errors"

// ErrNameExists is returned when a registration collides with an existing
// display name.  When both name and email collide, the name wins.
var ErrNameExists = errors.New("name already used")

// ErrEmailExists is returned when a registration collides with an existing
// email address.
var ErrEmailExists = errors.New("email already used")

// ErrUserNotFound indicates that no user row matched the query.
var ErrUserNotFound = errors.New("user not found")

// ErrPostNotFound indicates that no post row passed the combined
// id-plus-eligibility filter.  Handlers translate it into the same
// BadRequest signal whether the post is missing, hidden from the caller,
// or merely not writable by the caller.
var ErrPostNotFound = errors.New("post not found")
