package sync

import "github.com/google/uuid"

// Session is the signed-in or anonymous learner identity the engine syncs
// under. It is owned by the engine and passed explicitly, never read from
// ambient state.
type Session struct {
	UID       string
	Anonymous bool
}

// NewAnonymousSession mints a fresh anonymous identity, used when the host
// has no signed-in learner but sync is enabled.
func NewAnonymousSession() Session {
	return Session{UID: uuid.NewString(), Anonymous: true}
}
