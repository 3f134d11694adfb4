package harness

import (
	"errors"

	"github.com/dop251/goja"
)

var (
	// ErrMalformedPayload reports a delivery payload that failed to parse.
	// The registered handler is never invoked for such payloads.
	ErrMalformedPayload = errors.New("malformed delivery payload")

	// ErrClosed reports use of an environment after Close.
	ErrClosed = errors.New("environment closed")
)

// ScriptError is an uncaught failure from script execution, carrying a clean
// message extracted from the JS error value.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string { return e.Message }

// scriptError converts an error coming out of goja into a *ScriptError with
// the thrown value's message rather than goja's wrapped representation.
func scriptError(err error) *ScriptError {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return &ScriptError{Message: failureMessage(ex.Value())}
	}
	return &ScriptError{Message: err.Error()}
}

// failureMessage extracts a printable message from a JS failure value,
// preferring Error.message when present.
func failureMessage(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "unknown error"
	}
	if obj, ok := v.(*goja.Object); ok {
		if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) && !goja.IsNull(m) {
			return m.String()
		}
	}
	return v.String()
}
