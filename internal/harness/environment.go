package harness

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/scriptflow/scriptflow/internal/capture"
	"github.com/scriptflow/scriptflow/internal/logging"
	"github.com/scriptflow/scriptflow/internal/metrics"
	"github.com/scriptflow/scriptflow/internal/shared/id"
	"github.com/scriptflow/scriptflow/internal/specs"
)

// Environment is one run's isolated script environment: a goja VM plus the
// run loop, capture buffers, callback slot and the borrowed continuation.
// Construct a fresh Environment per run.
type Environment struct {
	vm      *goja.Runtime
	loop    *loop
	buffers *capture.Buffers
	cont    Continuation
	exec    ExecCapability
	specs   specs.Runner
	log     *logging.Logger
	metrics *metrics.Metrics
	cfg     Config
	runID   id.RunID

	// handler is the callback slot: zero or one registered handler,
	// last-write-wins. Touched only on the loop goroutine.
	handler goja.Callable

	state     atomic.Int32
	finalOnce sync.Once

	// run outcome, written on the loop goroutine before the final handoff
	resMu    sync.Mutex
	value    any
	duration time.Duration
}

// New creates an environment bound to the host's continuation and exec
// capability. exec may be nil for runs that never invoke the bridge.
func New(cont Continuation, exec ExecCapability, opts Options) (*Environment, error) {
	if cont == nil {
		return nil, errors.New("continuation capability is required")
	}
	cfg := opts.Config
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = DefaultConfig().QueueDepth
	}

	e := &Environment{
		vm:      goja.New(),
		loop:    newLoop(cfg.QueueDepth),
		buffers: capture.New(),
		cont:    cont,
		exec:    exec,
		specs:   opts.Specs,
		log:     opts.Logger,
		metrics: opts.Metrics,
		cfg:     cfg,
		runID:   id.NewRun(),
	}
	if e.specs == nil {
		e.specs = specs.Noop{}
	}
	if e.log == nil {
		e.log = logging.NewNop()
	}
	if e.metrics == nil {
		e.metrics = metrics.NewNop()
	}

	if err := e.setupGlobals(); err != nil {
		return nil, err
	}

	go e.loop.run()
	return e, nil
}

// setupGlobals wires the script-observable surface and disables everything
// else. Standard output is inert so all diagnostics route through log().
func (e *Environment) setupGlobals() error {
	globals := map[string]any{
		"console": goja.Undefined(),
		"print":   goja.Undefined(),
		"require": goja.Undefined(),
		"process": goja.Undefined(),
		"module":  goja.Undefined(),
		"exports": goja.Undefined(),
	}
	for name, v := range globals {
		if err := e.vm.Set(name, v); err != nil {
			return err
		}
	}

	inert := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	if err := e.vm.Set("setTimeout", inert); err != nil {
		return err
	}
	if err := e.vm.Set("setInterval", inert); err != nil {
		return err
	}

	if err := e.vm.Set("log", e.jsLog); err != nil {
		return err
	}
	if err := e.vm.Set("registerCallback", e.jsRegisterCallback); err != nil {
		return err
	}
	return e.vm.Set("invoke", e.jsInvoke)
}

// jsLog appends the space-joined arguments to the run's log buffer.
func (e *Environment) jsLog(call goja.FunctionCall) goja.Value {
	var b strings.Builder
	for i, arg := range call.Arguments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(arg.String())
	}
	e.buffers.Append(b.String())
	return goja.Undefined()
}

// jsRegisterCallback replaces the callback slot's handler.
func (e *Environment) jsRegisterCallback(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(e.vm.NewTypeError("registerCallback expects a function"))
	}
	e.handler = fn
	return goja.Undefined()
}

// deliveryHandoff yields to the host after one delivered event has been
// fully processed.
func (e *Environment) deliveryHandoff() {
	if State(e.state.Load()) != StateCompleted {
		e.state.Store(int32(StateAwaiting))
	}
	e.metrics.HandoffsTotal.Inc()
	e.cont.Resume()
}

// finalHandoff is the run's unconditional terminal action. Fires at most
// once for the lifetime of the environment.
func (e *Environment) finalHandoff() {
	e.finalOnce.Do(func() {
		e.state.Store(int32(StateCompleted))
		e.metrics.HandoffsTotal.Inc()
		e.log.Debug("final handoff", zap.String("run", e.runID.String()))
		e.cont.Resume()
	})
}

// State returns the run driver's current state.
func (e *Environment) State() State {
	return State(e.state.Load())
}

// RunID returns this run's identifier.
func (e *Environment) RunID() id.RunID {
	return e.runID
}

// SerializeLogs encodes the log buffer as a JSON document of ordered
// {time, message} entries.
func (e *Environment) SerializeLogs() (string, error) {
	return e.buffers.SerializeLogs()
}

// ErrorSlot reports the captured uncaught failure message, if any.
func (e *Environment) ErrorSlot() (string, bool) {
	return e.buffers.Error()
}

// Logs returns a copy of the log buffer.
func (e *Environment) Logs() []capture.LogEntry {
	return e.buffers.Entries()
}

// Snapshot captures the run's outcome. Valid after the final handoff.
func (e *Environment) Snapshot() *Result {
	e.resMu.Lock()
	value := e.value
	duration := e.duration
	e.resMu.Unlock()

	res := &Result{
		RunID:    e.runID,
		Value:    value,
		Logs:     e.buffers.Entries(),
		Duration: duration,
	}
	if msg, ok := e.buffers.Error(); ok {
		res.Err = &ScriptError{Message: msg}
	}
	return res
}

// Close stops the run loop. Further use of the environment fails with
// ErrClosed. Idempotent.
func (e *Environment) Close() error {
	e.loop.close()
	return nil
}
