package probe

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// outcome is one scored request, or its failure.
type outcome struct {
	scenario int
	score    float64
	err      error
}

// Run executes one probe run against a live engine: it forces the model
// up, replays every scenario the configured number of rounds, and prints
// the score distribution.
func Run(ctx context.Context, config *Config) error {
	if config == nil || config.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	config.withDefaults()

	client := newHTTPClient(config.Timeout)

	// Force the model up before measuring anything.
	mh, err := client.checkModel(config.BaseURL)
	if err != nil {
		return err
	}
	if !mh.ModelLoaded {
		reason := "unknown"
		if mh.ModelError != nil {
			reason = *mh.ModelError
		}
		return fmt.Errorf("model not ready at %s: %s", config.BaseURL, reason)
	}

	modelType := "bare"
	if mh.ModelType != nil {
		modelType = *mh.ModelType
	}
	if mh.Threshold != nil {
		log.Printf("🚀 model %s ready at %s (path=%s, threshold=%.6f)", modelType, config.BaseURL, mh.ModelPath, *mh.Threshold)
	} else {
		log.Printf("🚀 model %s ready at %s (path=%s, no threshold)", modelType, config.BaseURL, mh.ModelPath)
	}

	scenarios := Scenarios()
	total := config.Rounds * len(scenarios)
	log.Printf("📤 submitting %d scenarios x %d rounds with %d workers...", len(scenarios), config.Rounds, config.Workers)

	start := time.Now()
	outcomes := submitScenarios(ctx, config, client, scenarios)
	elapsed := time.Since(start)

	succeeded := 0
	var lastErr error
	for _, o := range outcomes {
		if o.err != nil {
			lastErr = o.err
			continue
		}
		succeeded++
	}
	if succeeded == 0 {
		return fmt.Errorf("all %d predict requests failed: %w", total, lastErr)
	}
	if lastErr != nil {
		log.Printf("⚠️  %d of %d requests failed; last error: %v", total-succeeded, total, lastErr)
	}

	log.Printf("✅ scored %d payloads in %s", succeeded, elapsed.Round(time.Millisecond))
	printSummary(scenarios, outcomes, mh.Threshold)
	return nil
}

// submitScenarios replays the profiles through a small worker pool. Every
// request carries a fresh uuid so duplicates are distinguishable
// downstream.
func submitScenarios(ctx context.Context, config *Config, client *HTTPClient, scenarios []Scenario) []outcome {
	total := config.Rounds * len(scenarios)
	jobs := make(chan int, total)
	results := make(chan outcome, total)

	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				sc := idx % len(scenarios)

				select {
				case <-ctx.Done():
					results <- outcome{scenario: sc, err: ctx.Err()}
					continue
				default:
				}

				score, err := client.predict(config.BaseURL, predictRequest{
					Bytes:    scenarios[sc].Bytes,
					Protocol: scenarios[sc].Protocol,
					Entropy:  scenarios[sc].Entropy,
					DstPort:  scenarios[sc].DstPort,
					ID:       uuid.NewString(),
				})
				if err == nil && config.Verbose {
					log.Printf("  %s -> %.6f", scenarios[sc].Name, score)
				}
				results <- outcome{scenario: sc, score: score, err: err}
			}
		}()
	}

	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]outcome, 0, total)
	for o := range results {
		out = append(out, o)
	}
	return out
}
