package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scriptflow/scriptflow/internal/config"
	"github.com/scriptflow/scriptflow/internal/harness"
	"github.com/scriptflow/scriptflow/internal/hostexec"
	"github.com/scriptflow/scriptflow/internal/logging"
	"github.com/scriptflow/scriptflow/internal/metrics"
	"github.com/scriptflow/scriptflow/internal/scenario"
)

func main() {
	scenarioPath := flag.String("scenario", "scenario.yaml", "Scenario file with stored requests and environments")
	scriptPath := flag.String("script", "", "Script file (overrides the scenario's script field)")
	flag.Parse()

	cfg := config.LoadOrDefault()

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	path := *scriptPath
	if path == "" {
		path = sc.Script
	}
	if path == "" {
		log.Fatal("No script: pass -script or set script in the scenario")
	}
	body, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read script: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	capability := hostexec.New(sc, hostexec.Config{
		RequestTimeout: cfg.Exec.RequestTimeout,
	}, logger.Named("exec"))

	res, err := harness.Run(string(body), capability, harness.Options{
		Config: harness.Config{
			ScriptTimeout: cfg.Script.Timeout,
			QueueDepth:    cfg.Loop.QueueDepth,
		},
		Logger:  logger.Named("harness"),
		Metrics: m,
	})
	if err != nil {
		log.Fatalf("Failed to start run: %v", err)
	}

	for _, entry := range res.Logs {
		fmt.Printf("%d %s\n", entry.Time, entry.Message)
	}
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "run %s failed: %v\n", res.RunID, res.Err)
		os.Exit(1)
	}
}
