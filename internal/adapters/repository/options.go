// Package repository implements the anomaly event store over MongoDB.
package repository

import (
	"time"

	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
)

// Option applies a configuration option to the MongoStore.
type Option func(*MongoStore)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MongoStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatabase pins the database name, skipping both the connection
// string default and candidate probing.
func WithDatabase(name string) Option {
	return func(s *MongoStore) {
		if name != "" {
			s.database = name
		}
	}
}

// WithDatabaseCandidates sets the database names probed, in order, when
// neither an explicit name nor a connection string default is present.
func WithDatabaseCandidates(names []string) Option {
	return func(s *MongoStore) {
		if len(names) > 0 {
			s.candidates = names
		}
	}
}

// WithCollection sets the collection holding stored events.
func WithCollection(name string) Option {
	return func(s *MongoStore) {
		if name != "" {
			s.collName = name
		}
	}
}

// WithSelectionTimeout sets the server selection timeout used while
// establishing the connection.
func WithSelectionTimeout(d time.Duration) Option {
	return func(s *MongoStore) {
		if d > 0 {
			s.selectionTimeout = d
		}
	}
}

// WithAggregation toggles server-side aggregation. When disabled the
// store reports itself as aggregation-free and the report engine falls
// back to pulling raw events.
func WithAggregation(enabled bool) Option {
	return func(s *MongoStore) {
		s.aggregate = enabled
	}
}
