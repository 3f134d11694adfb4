// Package specs is the boundary to the behavior-driven spec framework the
// script may populate. The framework itself is external: the harness only
// ever asks it to run everything that was declared and hand back a future.
package specs

import "github.com/dop251/goja"

// Runner executes all specs declared during script evaluation.
//
// RunAll returns a value that may be a thenable (the run is complete when it
// settles) or a plain value (the run is already complete). A returned error
// means the spec run itself could not be started or failed synchronously.
type Runner interface {
	RunAll(vm *goja.Runtime) (goja.Value, error)
}

// Noop is the default Runner for hosts without a spec framework.
type Noop struct{}

// RunAll reports immediate completion.
func (Noop) RunAll(*goja.Runtime) (goja.Value, error) {
	return goja.Undefined(), nil
}

// Global adapts a script-declared global function as the spec engine's
// run-all operation. Scripts that use a spec framework expose a single entry
// point (for example "__runSpecs") returning a promise; absence of the
// global means no specs were declared.
type Global struct {
	Name string
}

// RunAll invokes the configured global, if present.
func (g Global) RunAll(vm *goja.Runtime) (goja.Value, error) {
	fn, ok := goja.AssertFunction(vm.Get(g.Name))
	if !ok {
		return goja.Undefined(), nil
	}
	return fn(goja.Undefined())
}
