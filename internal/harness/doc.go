/*
Package harness runs untrusted request scripts inside an isolated goja
environment and exchanges control and data with the host across asynchronous
boundaries.

# Overview

The host drives the script engine one tick at a time and cannot block or poll
for work the script initiates. The harness therefore implements a
continuation-handoff protocol: whenever the script environment has no more
synchronous work (suspended on an external operation, or finished), it
notifies the host through the borrowed Continuation capability so the host's
driving loop can proceed.

Each Environment holds:

  - Run loop: the single logical thread of script execution; all VM access
    happens here, host goroutines hand work in as jobs
  - Capture buffers: an append-only log buffer plus a single error slot,
    readable by the host after a handoff
  - Callback slot: zero or one handler for externally pushed events,
    last-write-wins
  - Async bridge: wraps the host's callback-style exec capability as a
    promise the script can await

# Handoff Discipline

Continuation.Resume fires at exactly two points: once at the end of
processing each delivered external event, and once, unconditionally, at the
end of the whole run. Both sit on guaranteed-execution paths, so a failing
script or handler can never strand the host.

# Script Surface

Scripts see three globals: log(...) appends space-joined arguments to the log
buffer, registerCallback(handler) subscribes to delivered events, and
invoke(operationId, contextName) returns a promise for one unit of host work.
Standard output is inert; all diagnostics route through log().

# Error Model

Nothing crosses the host boundary as an exception. Uncaught script failures
are captured into the error slot and surfaced after the final handoff;
bridge failures reject the invocation's promise as-is; a malformed delivery
payload fails the Deliver call synchronously and never reaches the handler.

# Usage Example

	w := harness.NewWaiter()
	env, err := harness.New(w, capability, harness.Options{})
	if err != nil {
		return err
	}
	defer env.Close()

	env.RunScript(`log("hello"); invoke(1, "staging").then(r => log(r.status));`)
	<-w.C // final handoff

	doc, _ := env.SerializeLogs()
	if msg, failed := env.ErrorSlot(); failed {
		// inspect the captured failure
	}
*/
package harness
