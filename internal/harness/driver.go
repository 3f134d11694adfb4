package harness

import (
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/scriptflow/scriptflow/internal/metrics"
)

// RunScript injects the script body into the environment and starts the run.
// It returns immediately; the run's completion is signaled through the
// continuation, after which Snapshot, SerializeLogs and ErrorSlot describe
// the outcome.
//
// The body executes as the body of an async function, so scripts may await
// bridge invocations at top level. The run: execute the body to completion,
// await the spec engine's run-all future, capture any uncaught failure into
// the error slot, and fire the final handoff unconditionally. No failure
// crosses back to the host as an exception.
func (e *Environment) RunScript(scriptBody string) error {
	return e.loop.submit(func() { e.runBody(scriptBody) })
}

// wrapScript turns the injected body into an async IIFE whose promise
// settles when the body, including every awaited suspension, has finished.
func wrapScript(body string) string {
	return "(async () => {\n" + body + "\n})()"
}

func (e *Environment) runBody(src string) {
	e.state.Store(int32(StateRunning))
	start := time.Now()

	finish := func(failure error) {
		elapsed := time.Since(start)
		e.resMu.Lock()
		e.duration = elapsed
		e.resMu.Unlock()

		if failure != nil {
			e.buffers.SetError(failure.Error())
			e.metrics.RunsTotal.WithLabelValues(metrics.StatusError).Inc()
			e.log.Warn("run failed",
				zap.String("run", e.runID.String()),
				zap.Error(failure),
			)
		} else {
			e.metrics.RunsTotal.WithLabelValues(metrics.StatusOK).Inc()
		}
		e.metrics.RunDuration.Observe(elapsed.Seconds())
		e.finalHandoff()
	}

	// The interrupt covers synchronous execution; a suspended run has no
	// JS on the stack to interrupt. The mutex keeps a timer callback that
	// fires concurrently with RunString returning from landing an
	// interrupt after the clear, which would poison a later loop job.
	var timer *time.Timer
	var interruptMu sync.Mutex
	interruptCleared := false
	if e.cfg.ScriptTimeout > 0 {
		timer = time.AfterFunc(e.cfg.ScriptTimeout, func() {
			interruptMu.Lock()
			defer interruptMu.Unlock()
			if !interruptCleared {
				e.vm.Interrupt("script timeout exceeded")
			}
		})
	}
	bodyPromise, err := e.vm.RunString(wrapScript(src))
	if timer != nil {
		timer.Stop()
		interruptMu.Lock()
		interruptCleared = true
		e.vm.ClearInterrupt()
		interruptMu.Unlock()
	}
	if err != nil {
		finish(scriptError(err))
		return
	}

	e.await(bodyPromise, func(result goja.Value, failure error) {
		if failure != nil {
			finish(failure)
			return
		}
		if result != nil && !goja.IsUndefined(result) && !goja.IsNull(result) {
			e.resMu.Lock()
			e.value = result.Export()
			e.resMu.Unlock()
		}

		// Specs registered during the body execute before completion
		// is signaled.
		future, err := e.specs.RunAll(e.vm)
		if err != nil {
			finish(scriptError(err))
			return
		}
		e.await(future, func(_ goja.Value, failure error) {
			finish(failure)
		})
	})
}

// Run is a one-shot convenience for hosts that can block: it drives a single
// script to completion and returns the outcome snapshot. Hosts that need the
// raw continuation protocol use New/RunScript/Deliver directly.
func Run(scriptBody string, exec ExecCapability, opts Options) (*Result, error) {
	w := NewWaiter()
	env, err := New(w, exec, opts)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	if err := env.RunScript(scriptBody); err != nil {
		return nil, err
	}
	<-w.C
	return env.Snapshot(), nil
}

// Waiter is a channel-backed Continuation for hosts and tests that block on
// handoffs.
type Waiter struct {
	C chan struct{}
}

// NewWaiter creates a Waiter with enough buffer that the run loop never
// blocks on an unconsumed handoff.
func NewWaiter() *Waiter {
	return &Waiter{C: make(chan struct{}, 64)}
}

// Resume signals one handoff.
func (w *Waiter) Resume() {
	w.C <- struct{}{}
}
