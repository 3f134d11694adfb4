package harness

import (
	"time"

	"github.com/scriptflow/scriptflow/internal/capture"
	"github.com/scriptflow/scriptflow/internal/logging"
	"github.com/scriptflow/scriptflow/internal/metrics"
	"github.com/scriptflow/scriptflow/internal/shared/id"
	"github.com/scriptflow/scriptflow/internal/specs"
)

// Continuation is the host-owned capability that transfers control back to
// the host's driving loop. It is borrowed at environment creation and only
// ever invoked, never stored elsewhere or transferred.
type Continuation interface {
	Resume()
}

// ExecCapability is the host capability behind the async bridge: it performs
// one named unit of work (a stored request) inside a named execution context
// and reports completion through the returned handle.
type ExecCapability interface {
	Invoke(operationID int, contextName string) PendingExecHandle
}

// PendingExecHandle represents one in-flight bridge invocation. The
// registered callback fires exactly once, with either a result or a failure,
// never both. Handles are per-call and never reused.
type PendingExecHandle interface {
	OnComplete(fn func(result any, failure error))
}

// State describes where the run driver is in the handoff state machine.
type State int32

const (
	// StateRunning means the script body is executing synchronously.
	StateRunning State = iota
	// StateAwaiting means the environment has suspended and a handoff has
	// been issued; the host may act.
	StateAwaiting
	// StateCompleted means the run has finished and the final handoff has
	// been issued. Terminal for the run.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaiting:
		return "awaiting"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Config defines environment limits.
type Config struct {
	// ScriptTimeout interrupts a synchronous script body that runs too
	// long. Zero disables the interrupt; whole-run timeouts stay the
	// host's concern.
	ScriptTimeout time.Duration
	// QueueDepth sizes the run loop's job queue.
	QueueDepth int
}

// DefaultConfig returns the default environment limits.
func DefaultConfig() Config {
	return Config{
		ScriptTimeout: 30 * time.Second,
		QueueDepth:    64,
	}
}

// Options carries the injectable collaborators of an environment. Zero
// values get safe defaults: no-op spec runner, no-op logger, private metrics.
type Options struct {
	Config  Config
	Specs   specs.Runner
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// Result is a snapshot of a completed run, valid once the final handoff has
// fired.
type Result struct {
	RunID    id.RunID
	Value    any
	Logs     []capture.LogEntry
	Err      error
	Duration time.Duration
}
