package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "probe_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the score probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`Tracel Score Probe
==================

Replays canonical benign and attack telemetry profiles against a running
engine and summarizes the anomaly scores.

Usage:
  go run cmd/score-probe/main.go [options]

Options:
  -url string
        Base URL of the engine (default "http://localhost:5000")
  -rounds int
        Times to post each scenario (default 5)
  -workers int
        Number of concurrent submitters (default 4)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Log every individual score
  -help
        Show this help message

Examples:
  # Probe a local engine
  go run cmd/score-probe/main.go

  # Hammer a staging engine
  go run cmd/score-probe/main.go -url http://staging:5000 -rounds 100 -workers 16
`)
}
