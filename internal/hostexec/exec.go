// Package hostexec is the reference implementation of the harness's
// ExecCapability contract: it performs stored HTTP requests inside a named
// execution context and completes each invocation's handle exactly once.
package hostexec

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/scriptflow/scriptflow/internal/harness"
	"github.com/scriptflow/scriptflow/internal/logging"
	"github.com/scriptflow/scriptflow/internal/scenario"
)

// Config defines capability settings.
type Config struct {
	RequestTimeout time.Duration
}

// DefaultConfig returns default capability settings.
func DefaultConfig() Config {
	return Config{RequestTimeout: 15 * time.Second}
}

// Capability executes stored requests from a scenario. Each Invoke runs on
// its own goroutine, so concurrent invocations complete in whatever order
// the network delivers them.
type Capability struct {
	client   *resty.Client
	scenario *scenario.Scenario
	log      *logging.Logger
}

// New creates a capability bound to a scenario's stored requests.
func New(sc *scenario.Scenario, cfg Config, log *logging.Logger) *Capability {
	if log == nil {
		log = logging.NewNop()
	}
	client := resty.New()
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(cfg.RequestTimeout)
	}
	return &Capability{
		client:   client,
		scenario: sc,
		log:      log,
	}
}

// Invoke starts one stored request inside the named execution context.
func (c *Capability) Invoke(operationID int, contextName string) harness.PendingExecHandle {
	h := NewHandle()
	go func() {
		result, err := c.execute(operationID, contextName)
		if err != nil {
			c.log.Warn("exec invocation failed",
				zap.Int("operation", operationID),
				zap.String("context", contextName),
				zap.Error(err),
			)
		}
		h.Complete(result, err)
	}()
	return h
}

func (c *Capability) execute(operationID int, contextName string) (any, error) {
	stored, ok := c.scenario.Request(operationID)
	if !ok {
		return nil, fmt.Errorf("unknown operation %d", operationID)
	}
	vars, ok := c.scenario.Environment(contextName)
	if !ok {
		return nil, fmt.Errorf("unknown execution context %q", contextName)
	}

	req := c.client.R()
	for k, v := range stored.Headers {
		req.SetHeader(k, scenario.Expand(v, vars))
	}
	if stored.Body != "" {
		req.SetBody(scenario.Expand(stored.Body, vars))
	}

	url := scenario.Expand(stored.URL, vars)
	resp, err := req.Execute(strings.ToUpper(stored.Method), url)
	if err != nil {
		return nil, fmt.Errorf("request %d failed: %w", operationID, err)
	}

	headers := make(map[string]string, len(resp.Header()))
	for k := range resp.Header() {
		headers[k] = resp.Header().Get(k)
	}

	// The shape scripts see as the resolved value of invoke().
	return map[string]any{
		"status":  resp.StatusCode(),
		"headers": headers,
		"body":    resp.String(),
	}, nil
}

// Compile-time interface check
var _ harness.ExecCapability = (*Capability)(nil)
