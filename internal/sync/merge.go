package sync

import "github.com/anupam/lessontrack/internal/course"

// Winner names the side selected by the reconciliation policy.
type Winner int

const (
	// WinnerNone means the documents tie on both completed count and
	// lastUpdated; neither side pushes, guaranteeing termination.
	WinnerNone Winner = iota
	WinnerLocal
	WinnerRemote
)

// Decide picks a winner between a local and a remote document:
// more progress wins, then the more recent lastUpdated wins. The decision
// is total and deterministic for any input pair.
func Decide(local, remote *course.Document) Winner {
	if local == nil {
		return WinnerRemote
	}
	if remote == nil {
		return WinnerLocal
	}

	localCompleted := local.CompletedCount()
	remoteCompleted := remote.CompletedCount()
	switch {
	case remoteCompleted > localCompleted:
		return WinnerRemote
	case localCompleted > remoteCompleted:
		return WinnerLocal
	}

	switch {
	case remote.LastUpdated.After(local.LastUpdated):
		return WinnerRemote
	case local.LastUpdated.After(remote.LastUpdated):
		return WinnerLocal
	}
	return WinnerNone
}
