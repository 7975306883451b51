package repository

import "errors"

// Sentinel kinds for event store errors. The first two texts are part of
// the operational contract: dashboards and runbooks grep for them.
var (
	ErrNotConfigured    = errors.New("MONGO_URL not set for ai-engine")
	ErrNoUsableDatabase = errors.New("MongoDB connection established, but no usable database found")
	ErrRankOutOfRange   = errors.New("rank beyond scored window")
)
