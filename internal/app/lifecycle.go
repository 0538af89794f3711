package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/ports"
)

// ShutdownTimeout bounds how long Shutdown waits for in-flight batches.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of a forwarder.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = map[State]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateCrashed:  "Crashed",
}

// String returns a human-readable representation of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// StateEmitter is called after every successful transition.
type StateEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the forwarder's state machine and tracks batches that are
// being delivered so shutdown can wait for them.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	cancel  context.CancelFunc
	flights int
	idle    *sync.Cond

	logger  ports.Logger
	emitter StateEmitter
}

// NewLifecycle creates a lifecycle in StateStopped. emitter may be nil.
func NewLifecycle(logger ports.Logger, emitter StateEmitter) *Lifecycle {
	l := &Lifecycle{
		state:   StateStopped,
		logger:  logger,
		emitter: emitter,
	}
	l.idle = sync.NewCond(&l.mu)
	return l
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next if the table allows it.
// Leaving Stopped or Crashed for anything else yields ErrNotRunning; any other
// disallowed move yields ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !allowed(prev, next) {
		l.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(prev, next, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
	return nil
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart reports whether Start may be called.
func (l *Lifecycle) CanStart() bool {
	s := l.State()
	return s == StateStopped || s == StateCrashed
}

// CanStop reports whether Shutdown has anything to stop.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateRunning || s == StateStarting
}

// SetCancel stores the function that cancels the run context.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel cancels the run context, if any.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// BeginFlight marks a batch as in flight and reports whether it may proceed.
// Flights are refused while stopping. Every accepted flight must be paired
// with EndFlight.
func (l *Lifecycle) BeginFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateStopping {
		return false
	}
	l.flights++
	return true
}

// EndFlight marks a batch as handled.
func (l *Lifecycle) EndFlight() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flights--
	if l.flights == 0 {
		l.idle.Broadcast()
	}
}

// Drain waits for in-flight batches, giving up after timeout with ErrShutdownTimeout.
func (l *Lifecycle) Drain(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.mu.Lock()
		for l.flights > 0 {
			l.idle.Wait()
		}
		l.mu.Unlock()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("in-flight batches did not finish before shutdown",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
