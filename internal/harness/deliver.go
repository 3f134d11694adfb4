package harness

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/scriptflow/scriptflow/internal/metrics"
)

// Deliver pushes one externally produced event into the running script.
//
// The payload is parsed on the caller's goroutine: a payload that fails to
// parse returns ErrMalformedPayload synchronously, never reaches the
// registered handler and issues no handoff, since control never left the
// host. For a parsed payload the handler runs on the loop goroutine, its
// completion (including any suspension) is awaited, and exactly one handoff
// fires as the delivery's final action whether the handler succeeded or not.
//
// Deliver must not be called again until the previous delivery's handoff has
// occurred; concurrent deliveries are out of contract.
func (e *Environment) Deliver(payload string) error {
	var parsed any
	if err := sonic.UnmarshalString(payload, &parsed); err != nil {
		e.metrics.DeliveriesTotal.WithLabelValues(metrics.StatusMalformed).Inc()
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return e.loop.submit(func() { e.dispatch(parsed) })
}

// dispatch runs the registered handler against one parsed event. Loop
// goroutine only.
func (e *Environment) dispatch(parsed any) {
	done := func(failure error) {
		if failure != nil {
			e.buffers.SetError(failure.Error())
			e.metrics.DeliveriesTotal.WithLabelValues(metrics.StatusHandlerError).Inc()
			e.log.Warn("callback handler failed",
				zap.String("run", e.runID.String()),
				zap.Error(failure),
			)
		} else {
			e.metrics.DeliveriesTotal.WithLabelValues(metrics.StatusOK).Inc()
		}
		e.deliveryHandoff()
	}

	// Default handler is a no-op: the event is consumed, the handoff
	// still fires.
	if e.handler == nil {
		done(nil)
		return
	}

	v, err := e.handler(goja.Undefined(), e.vm.ToValue(parsed))
	if err != nil {
		done(scriptError(err))
		return
	}
	e.await(v, func(_ goja.Value, failure error) { done(failure) })
}
