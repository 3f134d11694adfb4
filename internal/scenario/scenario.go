// Package scenario loads run scenarios: the stored requests and named
// environments a script's bridge invocations refer to, plus the script
// itself. Scenarios are YAML documents.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Request is one stored unit of work the exec capability can perform.
type Request struct {
	ID      int               `yaml:"id"`
	Name    string            `yaml:"name"`
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
}

// Scenario describes one run: a script, the stored requests it may invoke,
// and the named execution contexts with their variables.
type Scenario struct {
	Script       string                       `yaml:"script"`
	Requests     []Request                    `yaml:"requests"`
	Environments map[string]map[string]string `yaml:"environments"`
}

// Parse decodes and validates a YAML scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

func (s *Scenario) validate() error {
	seen := make(map[int]bool, len(s.Requests))
	for _, r := range s.Requests {
		if seen[r.ID] {
			return fmt.Errorf("duplicate request id %d", r.ID)
		}
		seen[r.ID] = true
		if r.URL == "" {
			return fmt.Errorf("request %d has no url", r.ID)
		}
		if r.Method == "" {
			return fmt.Errorf("request %d has no method", r.ID)
		}
	}
	return nil
}

// Request looks up a stored request by operation ID.
func (s *Scenario) Request(operationID int) (*Request, bool) {
	for i := range s.Requests {
		if s.Requests[i].ID == operationID {
			return &s.Requests[i], true
		}
	}
	return nil, false
}

// Environment looks up a named execution context's variables.
func (s *Scenario) Environment(name string) (map[string]string, bool) {
	vars, ok := s.Environments[name]
	return vars, ok
}

// Expand substitutes {{var}} references in s with values from vars.
// Unknown references are left as-is.
func Expand(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	out := s
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
