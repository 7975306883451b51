package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	report "github.com/SanatanSinghVishen/Tracel/internal/domain/report"
	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

const (
	defaultCollection       = "packets"
	defaultSelectionTimeout = 1500 * time.Millisecond
)

// defaultCandidates are the database names probed, in order, when
// neither an explicit name nor a connection string default is present.
var defaultCandidates = []string{"tracel", "test"} //nolint:gochecknoglobals // shared deployment convention

// MongoStore is the MongoDB-backed event store. The connection is
// established lazily on first use and cached; the driver's pool handles
// reconnects after transient outages.
type MongoStore struct {
	uri              string
	database         string
	candidates       []string
	collName         string
	selectionTimeout time.Duration
	aggregate        bool

	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection

	logger logger.Logger
}

// NewMongoStore creates a store for the given connection string. An
// empty string is accepted; every operation then fails as unavailable
// until the service is configured and restarted.
func NewMongoStore(uri string, opts ...Option) *MongoStore {
	s := &MongoStore{
		uri:              strings.TrimSpace(uri),
		candidates:       defaultCandidates,
		collName:         defaultCollection,
		selectionTimeout: defaultSelectionTimeout,
		aggregate:        true,
		logger:           logger.Get().Named("repository"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// events returns the cached collection handle, connecting first if
// needed. Connection-phase failures are reported as unavailability with
// the concrete reason preserved.
func (s *MongoStore) events(ctx context.Context) (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coll != nil {
		return s.coll, nil
	}
	if s.uri == "" {
		metrics.UpdateStoreConnected(false)
		return nil, &report.StoreUnavailableError{Reason: ErrNotConfigured}
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(s.uri).
		SetServerSelectionTimeout(s.selectionTimeout))
	if err != nil {
		metrics.UpdateStoreConnected(false)
		return nil, &report.StoreUnavailableError{Reason: fmt.Errorf("mongodb connect: %w", err)}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		metrics.UpdateStoreConnected(false)
		return nil, &report.StoreUnavailableError{Reason: fmt.Errorf("mongodb ping: %w", err)}
	}

	db, err := s.pickDatabase(ctx, client)
	if err != nil {
		_ = client.Disconnect(ctx)
		metrics.UpdateStoreConnected(false)
		return nil, &report.StoreUnavailableError{Reason: err}
	}

	s.client = client
	s.coll = db.Collection(s.collName)
	metrics.UpdateStoreConnected(true)
	s.logger.Info(ctx, "event store connected",
		logger.String("database", db.Name()),
		logger.String("collection", s.collName),
	)
	return s.coll, nil
}

// pickDatabase resolves the database: an explicit name wins, then the
// connection string default, then the first probed candidate that holds
// events. When every reachable candidate is empty the first reachable
// one is used so a fresh deployment still reports clean zeros.
func (s *MongoStore) pickDatabase(ctx context.Context, client *mongo.Client) (*mongo.Database, error) {
	if s.database != "" {
		return client.Database(s.database), nil
	}
	if name := defaultDatabaseOf(s.uri); name != "" {
		return client.Database(name), nil
	}

	var first *mongo.Database
	seen := make(map[string]struct{}, len(s.candidates))
	for _, name := range s.candidates {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		db := client.Database(name)
		n, err := db.Collection(s.collName).EstimatedDocumentCount(ctx)
		if err != nil {
			s.logger.Warn(ctx, "database candidate not usable",
				logger.String("database", name),
				logger.Error(err),
			)
			continue
		}
		if n > 0 {
			return db, nil
		}
		if first == nil {
			first = db
		}
	}
	if first != nil {
		return first, nil
	}
	return nil, ErrNoUsableDatabase
}

// defaultDatabaseOf extracts the database segment of a connection
// string, if any. Multi-host strings defeat net/url, so the path is cut
// out textually.
func defaultDatabaseOf(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return ""
	}
	rest = rest[i+1:]
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// Summary computes the windowed aggregates in one server-side pass.
func (s *MongoStore) Summary(ctx context.Context, q report.Query) (report.Summary, error) {
	if !s.aggregate {
		return report.Summary{}, report.ErrAggregationUnsupported
	}
	coll, err := s.events(ctx)
	if err != nil {
		metrics.RecordStoreError()
		return report.Summary{}, err
	}

	start := time.Now()
	cursor, err := coll.Aggregate(ctx, summaryPipeline(q))
	if err != nil {
		metrics.RecordStoreError()
		return report.Summary{}, fmt.Errorf("summary aggregate: %w", err)
	}
	var rows []summaryRow
	if err := cursor.All(ctx, &rows); err != nil {
		metrics.RecordStoreError()
		return report.Summary{}, fmt.Errorf("summary decode: %w", err)
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))

	if len(rows) == 0 {
		return report.Summary{Vectors: map[string]int64{}}, nil
	}
	return rows[0].toSummary(), nil
}

// ScoreAtRanks selects the score at each requested rank of the
// ascending in-window score list. Duplicate ranks are fetched once.
func (s *MongoStore) ScoreAtRanks(ctx context.Context, q report.Query, ranks []int64) (map[int64]float64, error) {
	coll, err := s.events(ctx)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	start := time.Now()
	out := make(map[int64]float64, len(ranks))
	for _, rank := range ranks {
		if _, done := out[rank]; done {
			continue
		}
		score, err := s.scoreAtRank(ctx, coll, q, rank)
		if err != nil {
			metrics.RecordStoreError()
			return nil, err
		}
		out[rank] = score
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

func (s *MongoStore) scoreAtRank(ctx context.Context, coll *mongo.Collection, q report.Query, rank int64) (float64, error) {
	cursor, err := coll.Aggregate(ctx, rankPipeline(q, rank))
	if err != nil {
		return 0, fmt.Errorf("rank aggregate: %w", err)
	}
	var rows []struct {
		Score float64 `bson:"score"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("rank decode: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: %d", ErrRankOutOfRange, rank)
	}
	return rows[0].Score, nil
}

// BucketCounts counts scored in-window events at or below each cutoff.
func (s *MongoStore) BucketCounts(ctx context.Context, q report.Query, obviousLe, subtleLe float64) (report.Buckets, error) {
	coll, err := s.events(ctx)
	if err != nil {
		metrics.RecordStoreError()
		return report.Buckets{}, err
	}

	start := time.Now()
	cursor, err := coll.Aggregate(ctx, bucketPipeline(q, obviousLe, subtleLe))
	if err != nil {
		metrics.RecordStoreError()
		return report.Buckets{}, fmt.Errorf("bucket aggregate: %w", err)
	}
	var rows []struct {
		Obvious int64 `bson:"obvious"`
		Subtle  int64 `bson:"subtle"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		metrics.RecordStoreError()
		return report.Buckets{}, fmt.Errorf("bucket decode: %w", err)
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))

	if len(rows) == 0 {
		return report.Buckets{}, nil
	}
	return report.Buckets{ObviousLE: rows[0].Obvious, SubtleLE: rows[0].Subtle}, nil
}

// CollectEvents pulls matched documents newest first, capped at the
// query limit. The window is not applied store-side: stored timestamps
// are too loosely formatted to filter reliably in a query, so the
// caller filters after coercion.
func (s *MongoStore) CollectEvents(ctx context.Context, q report.Query) ([]model.ThreatEvent, error) {
	coll, err := s.events(ctx)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	start := time.Now()
	findOpts := options.Find().
		SetSort(bson.D{{Key: fieldTimestamp, Value: -1}}).
		SetLimit(q.Limit).
		SetProjection(bson.M{"_id": 0})
	cursor, err := coll.Find(ctx, matchFilter(q), findOpts)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []model.ThreatEvent
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, model.ThreatEventFromBSON(doc))
	}
	if err := cursor.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return events, nil
}

// Ping establishes the connection if needed and verifies the server is
// still reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if _, err := s.events(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		metrics.UpdateStoreConnected(false)
		return &report.StoreUnavailableError{Reason: fmt.Errorf("mongodb ping: %w", err)}
	}
	return nil
}

// Close releases the client. The store stays usable; the next operation
// reconnects.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.coll = nil
	metrics.UpdateStoreConnected(false)
	return err
}

// summaryRow is the raw facet shape of one summary aggregation result.
type summaryRow struct {
	Totals []struct {
		Total    int64    `bson:"total"`
		Scored   int64    `bson:"scored"`
		MinScore *float64 `bson:"minScore"`
		MaxScore *float64 `bson:"maxScore"`
	} `bson:"totals"`
	Vectors []struct {
		Name  string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"vectors"`
	Countries []struct {
		Name  string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"countries"`
	TopIPs []struct {
		IP       string     `bson:"_id"`
		Count    int64      `bson:"count"`
		LastSeen *time.Time `bson:"lastSeen"`
	} `bson:"topIps"`
}

func (r summaryRow) toSummary() report.Summary {
	sum := report.Summary{Vectors: make(map[string]int64, len(r.Vectors))}
	if len(r.Totals) > 0 {
		t := r.Totals[0]
		sum.Total = t.Total
		sum.Scored = t.Scored
		if t.MinScore != nil {
			sum.MinScore = *t.MinScore
		}
		if t.MaxScore != nil {
			sum.MaxScore = *t.MaxScore
		}
	}
	for _, v := range r.Vectors {
		sum.Vectors[v.Name] = v.Count
	}
	sum.Countries = make([]report.CountryActivity, 0, len(r.Countries))
	for _, c := range r.Countries {
		sum.Countries = append(sum.Countries, report.CountryActivity{Name: c.Name, Count: c.Count})
	}
	sum.TopIPs = make([]report.IPActivity, 0, len(r.TopIPs))
	for _, ip := range r.TopIPs {
		entry := report.IPActivity{IP: ip.IP, Count: ip.Count}
		if ip.LastSeen != nil {
			last := ip.LastSeen.UTC()
			entry.LastSeen = &last
		}
		sum.TopIPs = append(sum.TopIPs, entry)
	}
	return sum
}
