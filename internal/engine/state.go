package engine

// State is the synchronization state of the engine. Transitions are
// monotone: once Synced, the engine never reports Syncing or Unsynced
// again, even across sleep detection.
type State int

const (
	// StateUnsynced means no ping has been dispatched yet.
	StateUnsynced State = iota
	// StateSyncing means at least one ping is out but no pong has
	// been processed.
	StateSyncing
	// StateSynced means at least one pong has been processed.
	StateSynced
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUnsynced:
		return "unsynced"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	default:
		return "unknown"
	}
}
