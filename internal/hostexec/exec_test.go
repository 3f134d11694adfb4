package hostexec

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptflow/scriptflow/internal/harness"
	"github.com/scriptflow/scriptflow/internal/scenario"
)

func awaitHandle(t *testing.T, h harness.PendingExecHandle) (any, error) {
	t.Helper()
	type outcome struct {
		result  any
		failure error
	}
	ch := make(chan outcome, 1)
	h.OnComplete(func(result any, failure error) {
		ch <- outcome{result, failure}
	})
	select {
	case o := <-ch:
		return o.result, o.failure
	case <-time.After(5 * time.Second):
		t.Fatal("invocation never completed")
		return nil, nil
	}
}

func testScenario(baseURL string) *scenario.Scenario {
	return &scenario.Scenario{
		Requests: []scenario.Request{
			{ID: 1, Method: "GET", URL: "{{base}}/status"},
			{ID: 2, Method: "POST", URL: "{{base}}/items", Body: `{"name":"{{itemName}}"}`,
				Headers: map[string]string{"X-Api-Key": "{{apiKey}}"}},
		},
		Environments: map[string]map[string]string{
			"test": {"base": baseURL, "apiKey": "secret", "itemName": "widget"},
		},
	}
}

func TestInvokeExecutesStoredRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"up":true}`))
	}))
	defer srv.Close()

	capability := New(testScenario(srv.URL), DefaultConfig(), nil)
	result, failure := awaitHandle(t, capability.Invoke(1, "test"))
	require.NoError(t, failure)

	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 200, m["status"])
	assert.Equal(t, `{"up":true}`, m["body"])
}

func TestInvokeExpandsEnvironmentVariables(t *testing.T) {
	var gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	capability := New(testScenario(srv.URL), DefaultConfig(), nil)
	result, failure := awaitHandle(t, capability.Invoke(2, "test"))
	require.NoError(t, failure)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, `{"name":"widget"}`, gotBody)
	m := result.(map[string]any)
	assert.Equal(t, 201, m["status"])
}

func TestInvokeUnknownOperation(t *testing.T) {
	capability := New(testScenario("http://unused"), DefaultConfig(), nil)
	_, failure := awaitHandle(t, capability.Invoke(99, "test"))
	require.Error(t, failure)
	assert.Contains(t, failure.Error(), "unknown operation")
}

func TestInvokeUnknownContext(t *testing.T) {
	capability := New(testScenario("http://unused"), DefaultConfig(), nil)
	_, failure := awaitHandle(t, capability.Invoke(1, "nope"))
	require.Error(t, failure)
	assert.Contains(t, failure.Error(), "unknown execution context")
}

func TestHandleCompletesExactlyOnce(t *testing.T) {
	h := NewHandle()
	var mu sync.Mutex
	calls := 0

	h.OnComplete(func(any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	h.Complete("first", nil)
	h.Complete("second", nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestHandleCompleteBeforeOnComplete(t *testing.T) {
	h := NewHandle()
	h.Complete(42, nil)

	var got any
	h.OnComplete(func(result any, failure error) { got = result })
	assert.Equal(t, 42, got)
}
