package hostexec

import "sync"

// Handle is a one-shot PendingExecHandle: the completion callback fires
// exactly once with either a result or a failure, regardless of whether the
// work finishes before or after OnComplete is called.
type Handle struct {
	mu        sync.Mutex
	fn        func(result any, failure error)
	result    any
	failure   error
	completed bool
	delivered bool
}

// NewHandle creates an unsettled handle.
func NewHandle() *Handle {
	return &Handle{}
}

// OnComplete registers the single completion callback. If the work already
// finished, the callback fires immediately.
func (h *Handle) OnComplete(fn func(result any, failure error)) {
	h.mu.Lock()
	if h.completed && !h.delivered {
		h.delivered = true
		result, failure := h.result, h.failure
		h.mu.Unlock()
		fn(result, failure)
		return
	}
	h.fn = fn
	h.mu.Unlock()
}

// Complete settles the handle. Later calls are ignored.
func (h *Handle) Complete(result any, failure error) {
	h.mu.Lock()
	if h.completed {
		h.mu.Unlock()
		return
	}
	h.completed = true
	h.result = result
	h.failure = failure
	fn := h.fn
	if fn != nil {
		h.delivered = true
	}
	h.mu.Unlock()

	if fn != nil {
		fn(result, failure)
	}
}
