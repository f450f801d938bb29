package sync

// Status is the reconciliation engine's externally visible state.
type Status string

const (
	// StatusDisabled means sync is off for the session: privacy preference,
	// missing remote configuration, or missing identity. Terminal until the
	// next load.
	StatusDisabled Status = "disabled"

	// StatusOffline means a remote operation failed or connectivity was
	// lost; local operations keep working against the local store.
	StatusOffline Status = "offline"

	// StatusSyncing brackets an in-flight pull or push.
	StatusSyncing Status = "syncing"

	// StatusSynced means the last reconciliation pass succeeded.
	StatusSynced Status = "synced"
)
