// Package engine drives NTP-style clock synchronization: it pings a
// reference clock on a timer, filters the resulting samples, and
// exposes two corrected time sources that never move backward — a
// stepped wall clock and a continuously slewed performance clock.
package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/timesync-io/timesync/internal/filter"
	"github.com/timesync-io/timesync/internal/slew"
	"github.com/timesync-io/timesync/internal/transport"
	"github.com/timesync-io/timesync/pkg/logger"
	"github.com/timesync-io/timesync/pkg/mathutil"
	"github.com/timesync-io/timesync/pkg/timemath"
)

const (
	// DefaultDriftWarningThreshold is used when no drift warning
	// threshold is configured.
	DefaultDriftWarningThreshold = 500 * time.Millisecond

	// DefaultScaleRate is the rate dilation of the continuous clock.
	DefaultScaleRate = 0.05
)

// ErrTransportRequired is returned by New when no transport is
// configured.
var ErrTransportRequired = errors.New("engine: transport is required")

// ErrSyncInterval is returned by New when the sync interval is not
// positive.
var ErrSyncInterval = errors.New("engine: sync interval must be positive")

// ErrTimeSlewRate is returned by New when the stepped slew rate is not
// positive.
var ErrTimeSlewRate = errors.New("engine: time slew rate must be positive")

// Config holds the immutable settings of one engine instance. History
// size and outlier threshold must be positive; violations fail at
// construction.
type Config struct {
	// SyncInterval is the ping cadence.
	SyncInterval time.Duration

	// HistorySize is the sample window capacity.
	HistorySize int

	// OutlierThreshold is the RTT deviation multiplier of the sample
	// filter.
	OutlierThreshold float64

	// TimeSlewRate is the wall clock correction in milliseconds
	// applied per read or tick.
	TimeSlewRate float64

	// ScaleRate is the rate dilation of the continuous clock;
	// defaults to DefaultScaleRate.
	ScaleRate float64

	// DriftWarningThreshold triggers a drift warning when the target
	// offset magnitude exceeds it; defaults to
	// DefaultDriftWarningThreshold.
	DriftWarningThreshold time.Duration

	// SleepDetectionThreshold flags a suspend/resume gap between
	// ticks; defaults to 10x SyncInterval.
	SleepDetectionThreshold time.Duration

	// Transport carries the ping/pong exchange. Required.
	Transport transport.Transport

	// Clock overrides the wall time source; defaults to the system
	// clock. Used by tests.
	Clock slew.Clock
}

// Engine is the synchronization orchestrator. All state is guarded by
// a single mutex; timer ticks and pong deliveries are the only writers.
//
// The protocol does not correlate a pong's identifier to the ping that
// produced it: pongs are processed strictly in arrival order. If the
// round-trip time exceeds the sync interval, multiple pings are in
// flight and a stale sample can be applied after a newer one.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	clock     slew.Clock
	transport transport.Transport

	filter *filter.SampleFilter
	wall   *slew.StepClock
	perf   *slew.ScaleClock

	state    State
	lastTick float64
	pingSeq  uint64

	sleepThresholdMillis float64
	driftThresholdMillis float64

	running   bool
	destroyed bool
	stopCh    chan struct{}

	waiters []chan struct{}

	subscribers map[EventKind][]subscription
	subID       int
}

// New creates an engine and registers its pong callback on the
// transport. Configuration violations are fatal to construction.
func New(cfg Config) (*Engine, error) {
	if cfg.Transport == nil {
		return nil, ErrTransportRequired
	}
	if cfg.SyncInterval <= 0 {
		return nil, ErrSyncInterval
	}
	if cfg.TimeSlewRate <= 0 {
		return nil, ErrTimeSlewRate
	}

	f, err := filter.New(cfg.HistorySize, cfg.OutlierThreshold)
	if err != nil {
		return nil, err
	}

	if cfg.ScaleRate == 0 {
		cfg.ScaleRate = DefaultScaleRate
	}
	if cfg.DriftWarningThreshold == 0 {
		cfg.DriftWarningThreshold = DefaultDriftWarningThreshold
	}
	if cfg.SleepDetectionThreshold == 0 {
		cfg.SleepDetectionThreshold = 10 * cfg.SyncInterval
	}

	clock := cfg.Clock
	if clock == nil {
		clock = slew.System()
	}

	e := &Engine{
		cfg:                  cfg,
		clock:                clock,
		transport:            cfg.Transport,
		filter:               f,
		wall:                 slew.NewStepClock(clock, cfg.TimeSlewRate),
		perf:                 slew.NewScaleClock(clock, cfg.ScaleRate),
		sleepThresholdMillis: mathutil.DurationMillis(cfg.SleepDetectionThreshold),
		driftThresholdMillis: mathutil.DurationMillis(cfg.DriftWarningThreshold),
		subscribers:          make(map[EventKind][]subscription),
	}

	cfg.Transport.OnPong(e.handlePong)

	return e, nil
}

// Start begins the ping cycle: once immediately, then on every sync
// interval. No-op when already running or destroyed.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.destroyed {
		e.mu.Unlock()
		return
	}
	e.running = true
	stop := make(chan struct{})
	e.stopCh = stop
	interval := e.cfg.SyncInterval
	e.mu.Unlock()

	logger.InfoFields("engine", "Sync engine started", map[string]interface{}{
		"interval":     interval.String(),
		"history_size": e.cfg.HistorySize,
	})

	go func() {
		e.tick()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()
}

// Stop cancels the timer only, preserving offset, history and state
// for a later restart. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if !e.running {
		return
	}
	e.running = false
	close(e.stopCh)
	e.stopCh = nil
}

// Destroy stops the timer, flushes the history, resolves any pending
// initial-sync waiters and detaches all observers. Idempotent.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	e.stopLocked()
	e.destroyed = true
	e.filter.Flush()

	for _, ch := range e.waiters {
		close(ch)
	}
	e.waiters = nil
	e.subscribers = nil

	logger.Info("engine", "Sync engine destroyed")
}

// State returns the current synchronization state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Now returns the corrected wall-clock time in milliseconds. Each call
// walks the pending correction down by at most the configured slew
// rate; the returned sequence is non-decreasing.
func (e *Engine) Now() float64 {
	return e.wall.Now()
}

// PerformanceNow returns the continuously slewed time in milliseconds,
// intended for high-frequency consumers where a stepped jump would be
// visible.
func (e *Engine) PerformanceNow() float64 {
	return e.perf.Now()
}

// Offset returns the wall clock's currently applied offset in
// milliseconds.
func (e *Engine) Offset() float64 {
	return e.wall.Offset()
}

// WaitForInitialSync blocks until the engine reaches the synced state,
// returning immediately if it already has or if it was destroyed. A
// full teardown resolves all pending waiters so callers are never left
// waiting forever.
func (e *Engine) WaitForInitialSync(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateSynced || e.destroyed {
		e.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	e.waiters = append(e.waiters, ch)
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick runs one cycle of the ping cadence: sleep-gap detection, one
// stepped correction, and a new ping.
func (e *Engine) tick() {
	var events []Event

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	if e.lastTick != 0 {
		gap := now - e.lastTick
		if gap > e.sleepThresholdMillis {
			e.filter.Flush()
			events = append(events, Event{Kind: EventSleepDetected, Payload: SleepDetected{
				Gap:       gap,
				Timestamp: now,
			}})
			logger.WarnFields("engine", "Suspend gap detected, sample history flushed", map[string]interface{}{
				"gap_ms":       gap,
				"threshold_ms": e.sleepThresholdMillis,
			})
		}
	}
	e.lastTick = now

	e.wall.Step()

	if ev, ok := e.setStateLocked(StateSyncing); ok {
		events = append(events, ev)
	}

	e.pingSeq++
	ping := transport.Ping{T0: e.clock.Now(), ID: strconv.FormatUint(e.pingSeq, 10)}
	events = append(events, Event{Kind: EventSyncStart, Payload: SyncStart{Timestamp: ping.T0}})
	tr := e.transport
	e.mu.Unlock()

	if err := tr.SendPing(ping); err != nil {
		// Operational condition, not an error: the next tick retries.
		logger.Debugf("engine", "ping %s not sent: %v", ping.ID, err)
	}

	e.emit(events)
}

// handlePong processes one completed round trip, in arrival order.
func (e *Engine) handlePong(p transport.Pong) {
	rtt := timemath.RTT(p.T0, p.T1, p.T2, p.T3)
	offset := timemath.Offset(p.T0, p.T1, p.T2, p.T3)

	var events []Event

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	e.filter.Push(filter.Sample{RTT: rtt, Offset: offset, Timestamp: now})
	target := e.filter.Estimate()
	e.wall.SetTargetOffset(target)
	e.perf.SetTargetOffset(target)

	if ev, ok := e.setStateLocked(StateSynced); ok {
		events = append(events, ev)
	}

	events = append(events, Event{Kind: EventSyncSuccess, Payload: SyncSuccess{
		Offset:    target,
		RTT:       rtt,
		Timestamp: now,
	}})

	if mathutil.Abs(target) > e.driftThresholdMillis {
		events = append(events, Event{Kind: EventDriftWarning, Payload: DriftWarning{
			Offset:    target,
			Threshold: e.driftThresholdMillis,
			Timestamp: now,
		}})
		logger.WarnFields("engine", "Clock drift exceeds warning threshold", map[string]interface{}{
			"offset_ms":    target,
			"threshold_ms": e.driftThresholdMillis,
		})
	}
	e.mu.Unlock()

	logger.Sync("sync_success", map[string]interface{}{
		"id":        p.ID,
		"rtt_ms":    rtt,
		"offset_ms": offset,
		"target_ms": target,
	})

	e.emit(events)
}

// setStateLocked advances the state machine. Transitions are forward
// only; entering Synced resolves every pending initial-sync waiter
// exactly once.
func (e *Engine) setStateLocked(s State) (Event, bool) {
	if s <= e.state {
		return Event{}, false
	}

	from := e.state
	e.state = s

	if s == StateSynced {
		for _, ch := range e.waiters {
			close(ch)
		}
		e.waiters = nil
	}

	logger.InfoFields("engine", "Sync state change", map[string]interface{}{
		"from": from.String(),
		"to":   s.String(),
	})

	return Event{Kind: EventStateChange, Payload: StateChange{From: from, To: s}}, true
}
