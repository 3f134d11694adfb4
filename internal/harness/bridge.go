package harness

import (
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/scriptflow/scriptflow/internal/metrics"
	"github.com/scriptflow/scriptflow/internal/shared/id"
)

// jsInvoke is the async bridge's script-facing entry point:
// invoke(operationId, contextName) -> Promise.
//
// Each call gets its own PendingExecHandle, so concurrent invocations settle
// independently in whatever order the host delivers completions. The
// completion callback hops onto the run loop before touching the VM; a host
// failure rejects the promise as-is.
func (e *Environment) jsInvoke(call goja.FunctionCall) goja.Value {
	operationID := int(call.Argument(0).ToInteger())
	contextName := call.Argument(1).String()

	promise, resolve, reject := e.vm.NewPromise()

	if e.exec == nil {
		e.metrics.InvocationsTotal.WithLabelValues(metrics.StatusRejected).Inc()
		reject(e.vm.NewGoError(errors.New("no exec capability bound")))
		return e.vm.ToValue(promise)
	}

	invID := id.NewInvocation()
	e.log.Debug("bridge invocation",
		zap.String("invocation", invID.String()),
		zap.Int("operation", operationID),
		zap.String("context", contextName),
	)

	handle := e.exec.Invoke(operationID, contextName)
	handle.OnComplete(func(result any, failure error) {
		err := e.loop.submit(func() {
			if failure != nil {
				e.metrics.InvocationsTotal.WithLabelValues(metrics.StatusRejected).Inc()
				reject(e.vm.NewGoError(failure))
				return
			}
			e.metrics.InvocationsTotal.WithLabelValues(metrics.StatusResolved).Inc()
			resolve(e.vm.ToValue(result))
		})
		if err != nil {
			e.log.Warn("bridge completion after close",
				zap.String("invocation", invID.String()),
				zap.Int("operation", operationID),
			)
		}
	})

	return e.vm.ToValue(promise)
}
