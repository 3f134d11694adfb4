// Package id provides centralized ID generation for the harness.
//
// IDs are UUIDv4 with type-specific prefixes (run_*, inv_*) so logs stay
// readable and the separate types prevent ID misuse across domains.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// RunID identifies one complete script run.
type RunID string

// InvocationID identifies one in-flight async bridge invocation.
type InvocationID string

// NewRun generates a new run ID.
func NewRun() RunID {
	return RunID("run_" + uuid.NewString())
}

// NewInvocation generates a new bridge invocation ID.
func NewInvocation() InvocationID {
	return InvocationID("inv_" + uuid.NewString())
}

// IsRun reports whether s looks like a run ID.
func IsRun(s string) bool {
	return strings.HasPrefix(s, "run_")
}

// IsInvocation reports whether s looks like an invocation ID.
func IsInvocation(s string) bool {
	return strings.HasPrefix(s, "inv_")
}

func (r RunID) String() string        { return string(r) }
func (i InvocationID) String() string { return string(i) }
