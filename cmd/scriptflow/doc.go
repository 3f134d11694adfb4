// Package main is the entry point for the scriptflow run driver.
//
// This application drives one complete script run: it loads a scenario
// (stored requests plus named environments), injects the script body into an
// isolated harness environment, waits for the run's final continuation
// handoff, then prints the captured log buffer and surfaces any captured
// failure through the exit code.
//
// Data flow:
//
//	Scenario (YAML) → harness.Run → exec capability (HTTP) → captured logs
//
// Configuration:
//   - Environment variables (12-factor: SCRIPT_TIMEOUT, LOG_LEVEL, ...)
//   - CLI flags for scenario and script paths
//
// Usage:
//
//	# Run the scenario's script
//	./scriptflow -scenario checks.yaml
//
//	# Override the script
//	./scriptflow -scenario checks.yaml -script smoke.js
//
// Exit codes:
//   - 0: run completed, error slot empty
//   - 1: run completed with a captured failure, or setup failed
package main
