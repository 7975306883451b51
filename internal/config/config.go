// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// ModelPath points at the model artifact JSON on disk.
	ModelPath string `koanf:"model_path"`

	// MongoURL is the event-store connection string. Empty leaves the
	// store unconfigured; report endpoints then answer 503.
	MongoURL string `koanf:"mongo_url"`

	// MongoDBName overrides database selection. Empty falls back to the
	// connection-string default, then the shared candidate names.
	MongoDBName string `koanf:"mongo_db_name"`

	// MongoCollection names the anomaly event collection.
	MongoCollection string `koanf:"mongo_collection"`

	// MongoSelectionTimeoutMS bounds server selection on connect.
	MongoSelectionTimeoutMS int `koanf:"mongo_selection_timeout_ms"`

	// ReportAggregation pushes report computation down to the store.
	// Disabled, reports fall back to the degraded full-pull path.
	ReportAggregation bool `koanf:"report_aggregation"`

	// ReportTimeoutMS bounds one report request end to end.
	ReportTimeoutMS int `koanf:"report_timeout_ms"`

	// QuantileEpsilon is the score-range width below which confidence
	// bucketing switches to the rank-based split.
	QuantileEpsilon float64 `koanf:"quantile_epsilon"`
}

// New creates a Config with defaults. Layered loading from file and
// environment lives in Load.
func New() *Config {
	c := &Config{
		LogLevel:                "info",
		Addr:                    ":5000",
		ModelPath:               "model.json",
		MongoURL:                "",
		MongoDBName:             "",
		MongoCollection:         "packets",
		MongoSelectionTimeoutMS: 1500,
		ReportAggregation:       true,
		ReportTimeoutMS:         30_000,
		QuantileEpsilon:         1e-9,
	}
	return c
}
