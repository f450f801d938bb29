package sync

import "errors"

// ErrNotFound is returned by a Remote when no document exists for the
// identity and course.
var ErrNotFound = errors.New("remote document not found")

// ErrIdentityConflict means the identity is already bound to a different
// learner's data. It is reported to the user by name and never retried
// automatically.
var ErrIdentityConflict = errors.New("identity already linked to another learner")
