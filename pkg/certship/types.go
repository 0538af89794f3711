package certship

import (
	"github.com/bft-labs/certship/internal/app"
	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/metrics"
	"github.com/bft-labs/certship/pkg/log"
)

// Record data handed over by the host pipeline.
type (
	// Record is one structured log record.
	Record = domain.Record

	// Entry is a record with its host-assigned timestamp.
	Entry = domain.Entry

	// Batch is an ordered set of entries from one emission cycle.
	Batch = domain.Batch

	// BatchResult tallies delivered, failed and skipped entries.
	BatchResult = domain.BatchResult

	// Stats is a snapshot of the forwarder's counters.
	Stats = metrics.Snapshot
)

// Logger is the structured logging interface.
type Logger = log.Logger

// LogField is a structured log field.
type LogField = log.Field

// Sentinel errors, matched with errors.Is.
var (
	ErrInvalidEndpoint        = domain.ErrInvalidEndpoint
	ErrInvalidConfig          = domain.ErrInvalidConfig
	ErrCredentialsUnavailable = domain.ErrCredentialsUnavailable
	ErrAlreadyRunning         = domain.ErrAlreadyRunning
	ErrNotRunning             = domain.ErrNotRunning
	ErrShutdownTimeout        = domain.ErrShutdownTimeout
)

// CredentialState reports how far client credential loading has progressed.
type CredentialState = domain.CredentialState

// Credential states.
const (
	CredentialsUninitialized = domain.CredentialsUninitialized
	CredentialsPending       = domain.CredentialsPending
	CredentialsVerified      = domain.CredentialsVerified
)

// State is the lifecycle state of a Forwarder.
type State int

const (
	// StateStopped means the forwarder is not running.
	StateStopped State = iota
	// StateStarting means Start is loading credentials and plugins.
	StateStarting
	// StateRunning means the forwarder is started.
	StateRunning
	// StateStopping means Shutdown is draining in-flight batches.
	StateStopping
	// StateCrashed means startup or shutdown failed.
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	switch s {
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
