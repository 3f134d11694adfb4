package harness

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptflow/scriptflow/internal/metrics"
)

func TestDeliveryWhileRunSuspended(t *testing.T) {
	exec := &manualExec{}
	env, w := newTestEnv(t, exec)

	require.NoError(t, env.RunScript(`
		registerCallback(function (event) { log("event", event.n); });
		const res = await invoke(1, "env1");
		log("resumed", res.ok);
	`))
	h := exec.handle(t, 0)

	// The run is suspended on the bridge; an external event can still be
	// delivered and hands off exactly once.
	require.NoError(t, env.Deliver(`{"n":5}`))
	waitResume(t, w)
	assert.Equal(t, StateAwaiting, env.State())

	h.complete(map[string]any{"ok": true}, nil)
	waitResume(t, w)
	requireNoResume(t, w)
	assert.Equal(t, StateCompleted, env.State())

	logs := env.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "event 5", logs[0].Message)
	assert.Equal(t, "resumed true", logs[1].Message)
}

func TestRegisterCallbackRejectsNonFunction(t *testing.T) {
	env, w := newTestEnv(t, nil)

	require.NoError(t, env.RunScript(`registerCallback("not a function");`))
	waitResume(t, w)

	msg, failed := env.ErrorSlot()
	require.True(t, failed)
	assert.Contains(t, msg, "registerCallback expects a function")
}

func TestConsoleIsInert(t *testing.T) {
	env, w := newTestEnv(t, nil)

	require.NoError(t, env.RunScript(`
		log("typeof console is", typeof console);
		log("typeof require is", typeof require);
		setTimeout(function () { log("never"); }, 0);
	`))
	waitResume(t, w)

	_, failed := env.ErrorSlot()
	assert.False(t, failed)

	logs := env.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "typeof console is undefined", logs[0].Message)
	assert.Equal(t, "typeof require is undefined", logs[1].Message)
}

func TestMetricsWiring(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	w := NewWaiter()
	env, err := New(w, nil, Options{Metrics: m})
	require.NoError(t, err)
	defer env.Close()

	require.NoError(t, env.RunScript(`registerCallback(function () {});`))
	waitResume(t, w)

	require.NoError(t, env.Deliver(`{}`))
	waitResume(t, w)

	err = env.Deliver(`not json`)
	require.ErrorIs(t, err, ErrMalformedPayload)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.StatusOK)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.DeliveriesTotal.WithLabelValues(metrics.StatusOK)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.DeliveriesTotal.WithLabelValues(metrics.StatusMalformed)))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.HandoffsTotal))
}

func TestFreshEnvironmentPerRunIsolated(t *testing.T) {
	first, w1 := newTestEnv(t, nil)
	require.NoError(t, first.RunScript(`log("from first"); throw new Error("first fails");`))
	waitResume(t, w1)

	second, w2 := newTestEnv(t, nil)
	require.NoError(t, second.RunScript(`log("from second");`))
	waitResume(t, w2)

	_, failed := second.ErrorSlot()
	assert.False(t, failed)
	logs := second.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "from second", logs[0].Message)
	assert.NotEqual(t, first.RunID(), second.RunID())
}
