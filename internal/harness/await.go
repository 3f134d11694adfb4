package harness

import "github.com/dop251/goja"

// await arranges for done to run exactly once when v settles, with the
// fulfilled value or the rejection as a failure. Non-thenable values
// complete immediately; thenables complete through their reaction jobs,
// which the VM drains on the loop goroutine when the underlying promise
// settles. Must be called on the loop goroutine.
func (e *Environment) await(v goja.Value, done func(result goja.Value, failure error)) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		done(v, nil)
		return
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		done(v, nil)
		return
	}
	then, ok := goja.AssertFunction(obj.Get("then"))
	if !ok {
		done(v, nil)
		return
	}

	settled := false
	onFulfilled := func(call goja.FunctionCall) goja.Value {
		if !settled {
			settled = true
			done(call.Argument(0), nil)
		}
		return goja.Undefined()
	}
	onRejected := func(call goja.FunctionCall) goja.Value {
		if !settled {
			settled = true
			done(nil, &ScriptError{Message: failureMessage(call.Argument(0))})
		}
		return goja.Undefined()
	}

	if _, err := then(obj, e.vm.ToValue(onFulfilled), e.vm.ToValue(onRejected)); err != nil {
		if !settled {
			settled = true
			done(nil, scriptError(err))
		}
	}
}
