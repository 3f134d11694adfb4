// Package config provides 12-factor configuration management for the
// scriptflow harness.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Script: execution limits for injected script bodies
//   - Loop: run loop queue sizing
//   - Exec: HTTP settings for the reference exec capability
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("script timeout: %s\n", cfg.Script.Timeout)
//
// Environment Variables:
//   - SCRIPT_TIMEOUT, LOOP_QUEUE_DEPTH
//   - EXEC_REQUEST_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
package config
