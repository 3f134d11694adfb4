package harness

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeHandle is a one-shot completion handle for tests.
type fakeHandle struct {
	mu        sync.Mutex
	fn        func(result any, failure error)
	result    any
	failure   error
	completed bool
	delivered bool
}

func (h *fakeHandle) OnComplete(fn func(result any, failure error)) {
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

func (h *fakeHandle) complete(result any, failure error) {
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

// manualExec records invocations and leaves settlement to the test.
type manualExec struct {
	mu      sync.Mutex
	handles []*fakeHandle
	ops     []int
	ctxs    []string
}

func (m *manualExec) Invoke(operationID int, contextName string) PendingExecHandle {
	h := &fakeHandle{}
	m.mu.Lock()
	m.handles = append(m.handles, h)
	m.ops = append(m.ops, operationID)
	m.ctxs = append(m.ctxs, contextName)
	m.mu.Unlock()
	return h
}

func (m *manualExec) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

func (m *manualExec) handle(t *testing.T, i int) *fakeHandle {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if i < len(m.handles) {
			h := m.handles[i]
			m.mu.Unlock()
			return h
		}
		m.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("invocation %d never arrived", i)
	return nil
}

// autoExec answers every invocation from a goroutine via respond.
type autoExec struct {
	respond func(operationID int, contextName string) (any, error)
}

func (a *autoExec) Invoke(operationID int, contextName string) PendingExecHandle {
	h := &fakeHandle{}
	go func() {
		result, failure := a.respond(operationID, contextName)
		h.complete(result, failure)
	}()
	return h
}

func waitResume(t *testing.T, w *Waiter) {
	t.Helper()
	select {
	case <-w.C:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handoff")
	}
}

func requireNoResume(t *testing.T, w *Waiter) {
	t.Helper()
	select {
	case <-w.C:
		t.Fatal("unexpected handoff")
	case <-time.After(100 * time.Millisecond):
	}
}

func newTestEnv(t *testing.T, exec ExecCapability) (*Environment, *Waiter) {
	t.Helper()
	w := NewWaiter()
	env, err := New(w, exec, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env, w
}
