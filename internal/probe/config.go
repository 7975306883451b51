// Package probe drives synthetic telemetry through a running engine and
// summarizes the scores it hands back.
package probe

import "time"

// Default run parameters.
const (
	DefaultRounds  = 5
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second
)

// Config controls one probe run.
type Config struct {
	// BaseURL of the engine, e.g. http://localhost:5000.
	BaseURL string
	// Rounds posts every scenario this many times with fresh ids.
	Rounds int
	// Workers sets the number of concurrent submitters.
	Workers int
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// Verbose logs every individual score.
	Verbose bool
}

// withDefaults fills unset fields.
func (c *Config) withDefaults() {
	if c.Rounds <= 0 {
		c.Rounds = DefaultRounds
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}
