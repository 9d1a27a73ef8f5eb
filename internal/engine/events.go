package engine

// EventKind identifies a lifecycle notification.
type EventKind string

const (
	// EventSyncStart fires on every ping dispatch.
	EventSyncStart EventKind = "sync_start"
	// EventSyncSuccess fires on every processed pong.
	EventSyncSuccess EventKind = "sync_success"
	// EventDriftWarning fires when the target offset magnitude
	// exceeds the configured drift warning threshold.
	EventDriftWarning EventKind = "drift_warning"
	// EventSleepDetected fires when the gap between timer ticks
	// exceeds the sleep detection threshold.
	EventSleepDetected EventKind = "sleep_detected"
	// EventStateChange fires on every state machine transition.
	EventStateChange EventKind = "state_change"
)

// Event is a lifecycle notification with its typed payload.
type Event struct {
	Kind    EventKind
	Payload interface{}
}

// SyncStart is the payload of EventSyncStart.
type SyncStart struct {
	Timestamp float64
}

// SyncSuccess is the payload of EventSyncSuccess. Offset is the new
// target offset estimate, RTT the round-trip time of this exchange.
type SyncSuccess struct {
	Offset    float64
	RTT       float64
	Timestamp float64
}

// DriftWarning is the payload of EventDriftWarning.
type DriftWarning struct {
	Offset    float64
	Threshold float64
	Timestamp float64
}

// SleepDetected is the payload of EventSleepDetected. Gap is the
// wall-clock gap between ticks in milliseconds.
type SleepDetected struct {
	Gap       float64
	Timestamp float64
}

// StateChange is the payload of EventStateChange.
type StateChange struct {
	From State
	To   State
}

// Handler receives lifecycle events.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// On registers a handler for the given event kind and returns a
// function that removes it. Removal during delivery is safe: emission
// iterates a snapshot taken under the lock.
func (e *Engine) On(kind EventKind, h Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return func() {}
	}

	e.subID++
	id := e.subID
	e.subscribers[kind] = append(e.subscribers[kind], subscription{id: id, handler: h})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		subs := e.subscribers[kind]
		for i, s := range subs {
			if s.id == id {
				e.subscribers[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// emit delivers events to a snapshot of the registered handlers,
// outside the engine lock.
func (e *Engine) emit(events []Event) {
	for _, ev := range events {
		e.mu.Lock()
		subs := e.subscribers[ev.Kind]
		snapshot := make([]Handler, len(subs))
		for i, s := range subs {
			snapshot[i] = s.handler
		}
		e.mu.Unlock()

		for _, h := range snapshot {
			h(ev)
		}
	}
}
