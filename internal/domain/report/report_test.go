package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	report "github.com/SanatanSinghVishen/Tracel/internal/domain/report"
	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fakeStore serves canned aggregates for the push-down path and raw
// events for the collect path. Rank and bucket queries are answered
// honestly from the ascending score list.
type fakeStore struct {
	sum    report.Summary
	scores []float64
	events []model.ThreatEvent

	summaryErr  error
	ranksErr    error
	bucketsErr  error
	collectErr  error
	unsupported bool

	summaryCalls int
	ranksCalls   int
	bucketCalls  int
	collectCalls int
	lastRanks    []int64
}

func (f *fakeStore) Summary(_ context.Context, _ report.Query) (report.Summary, error) {
	f.summaryCalls++
	if f.unsupported {
		return report.Summary{}, report.ErrAggregationUnsupported
	}
	if f.summaryErr != nil {
		return report.Summary{}, f.summaryErr
	}
	return f.sum, nil
}

func (f *fakeStore) ScoreAtRanks(_ context.Context, _ report.Query, ranks []int64) (map[int64]float64, error) {
	f.ranksCalls++
	f.lastRanks = ranks
	if f.ranksErr != nil {
		return nil, f.ranksErr
	}
	out := make(map[int64]float64, len(ranks))
	for _, r := range ranks {
		if r < 0 || r >= int64(len(f.scores)) {
			return nil, fmt.Errorf("rank %d outside score list of %d", r, len(f.scores))
		}
		out[r] = f.scores[r]
	}
	return out, nil
}

func (f *fakeStore) BucketCounts(_ context.Context, _ report.Query, obviousLe, subtleLe float64) (report.Buckets, error) {
	f.bucketCalls++
	if f.bucketsErr != nil {
		return report.Buckets{}, f.bucketsErr
	}
	var b report.Buckets
	for _, s := range f.scores {
		if s <= obviousLe {
			b.ObviousLE++
		}
		if s <= subtleLe {
			b.SubtleLE++
		}
	}
	return b, nil
}

func (f *fakeStore) CollectEvents(_ context.Context, _ report.Query) ([]model.ThreatEvent, error) {
	f.collectCalls++
	if f.collectErr != nil {
		return nil, f.collectErr
	}
	return f.events, nil
}

var reportNow = time.Date(2026, 8, 24, 12, 0, 0, 123456000, time.UTC)

func fixedClock() time.Time { return reportNow }

func TestEngineThreatIntel(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a window of five distinctly scored threats", t, func() {
		seen := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
		store := &fakeStore{
			sum: report.Summary{
				Total:    5,
				Scored:   5,
				MinScore: -0.9,
				MaxScore: 0.3,
				Vectors:  map[string]int64{"Volumetric": 2, "Protocol": 2, "Application": 1},
				TopIPs: []report.IPActivity{
					{IP: "10.0.0.9", Count: 3, LastSeen: &seen},
					{IP: "172.16.0.4", Count: 2, LastSeen: nil},
				},
				Countries: []report.CountryActivity{
					{Name: "Russia", Count: 3},
					{Name: "China", Count: 2},
				},
			},
			scores: []float64{-0.9, -0.5, -0.2, -0.1, 0.3},
		}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the window should be anchored at the clock", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.OK, convey.ShouldBeTrue)
				convey.So(rep.Window.Since, convey.ShouldEqual, "2026-08-23T12:00:00.123456Z")
				convey.So(rep.Window.To, convey.ShouldEqual, "2026-08-24T12:00:00.123456Z")
				convey.So(rep.Window.SinceHours, convey.ShouldEqual, 24)
			})

			convey.Convey("And the aggregates should be carried through", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.TotalThreats, convey.ShouldEqual, 5)
				convey.So(rep.AttackVectorDistribution, convey.ShouldResemble, []report.NameValue{
					{Name: "Volumetric", Value: 2},
					{Name: "Protocol", Value: 2},
					{Name: "Application", Value: 1},
				})
				convey.So(rep.GeoTopCountries, convey.ShouldResemble, []report.GeoCountry{
					{Name: "Russia", Count: 3, Pct: 60},
					{Name: "China", Count: 2, Pct: 40},
				})
			})

			convey.Convey("And the hostile addresses should keep their formatting", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rep.TopHostileIPs), convey.ShouldEqual, 2)
				convey.So(rep.TopHostileIPs[0].IP, convey.ShouldEqual, "10.0.0.9")
				convey.So(rep.TopHostileIPs[0].Count, convey.ShouldEqual, 3)
				convey.So(*rep.TopHostileIPs[0].LastSeen, convey.ShouldEqual, "2026-08-24T10:30:00.000000Z")
				convey.So(rep.TopHostileIPs[1].LastSeen, convey.ShouldBeNil)
			})

			convey.Convey("And the cutoffs should interpolate the ranked scores", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.AIConfidenceThresholds.ObviousLe, convey.ShouldNotBeNil)
				convey.So(*rep.AIConfidenceThresholds.ObviousLe, convey.ShouldAlmostEqual, -0.58)
				convey.So(*rep.AIConfidenceThresholds.SubtleLe, convey.ShouldAlmostEqual, -0.16)
				convey.So(rep.AIConfidenceDistribution, convey.ShouldResemble, []report.BucketCount{
					{Bucket: "Obvious", Count: 1},
					{Bucket: "Subtle", Count: 2},
					{Bucket: "Other", Count: 2},
				})
			})

			convey.Convey("And the legend should document the method", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.AIConfidenceDefinition.Method, convey.ShouldEqual, "quantiles")
				convey.So(rep.AIConfidenceDefinition.Obvious, convey.ShouldEqual, "lowest ~20% anomaly scores (most suspicious)")
				convey.So(rep.AIConfidenceDefinition.Subtle, convey.ShouldEqual, "next ~40% anomaly scores")
				convey.So(rep.AIConfidenceDefinition.Other, convey.ShouldEqual, "remaining scores")
				convey.So(rep.AIConfidenceDefinition.Note, convey.ShouldEqual, "Buckets are relative to the selected time window.")
			})

			convey.Convey("And only the aggregating store calls should run", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.summaryCalls, convey.ShouldEqual, 1)
				convey.So(store.ranksCalls, convey.ShouldEqual, 1)
				convey.So(store.bucketCalls, convey.ShouldEqual, 1)
				convey.So(store.collectCalls, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a window whose scores have collapsed", t, func() {
		store := &fakeStore{
			sum: report.Summary{
				Total:    4,
				Scored:   4,
				MinScore: -0.5,
				MaxScore: -0.5,
				Vectors:  map[string]int64{"Protocol": 4},
			},
			scores: []float64{-0.5, -0.5, -0.5, -0.5},
		}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then buckets should split by rank", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.AIConfidenceDistribution, convey.ShouldResemble, []report.BucketCount{
					{Bucket: "Obvious", Count: 1},
					{Bucket: "Subtle", Count: 2},
					{Bucket: "Other", Count: 1},
				})
				convey.So(*rep.AIConfidenceThresholds.ObviousLe, convey.ShouldAlmostEqual, -0.5)
				convey.So(*rep.AIConfidenceThresholds.SubtleLe, convey.ShouldAlmostEqual, -0.5)
			})

			convey.Convey("And no value-predicate counting should run", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.bucketCalls, convey.ShouldEqual, 0)
				convey.So(store.lastRanks, convey.ShouldResemble, []int64{0, 2})
			})
		})
	})

	convey.Convey("Given a window with one scored and two unscored threats", t, func() {
		store := &fakeStore{
			sum: report.Summary{
				Total:    3,
				Scored:   1,
				MinScore: -0.7,
				MaxScore: -0.7,
				Vectors:  map[string]int64{"Application": 3},
			},
			scores: []float64{-0.7},
		}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the single score should bound both cutoffs", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(*rep.AIConfidenceThresholds.ObviousLe, convey.ShouldAlmostEqual, -0.7)
				convey.So(*rep.AIConfidenceThresholds.SubtleLe, convey.ShouldAlmostEqual, -0.7)
				convey.So(rep.AIConfidenceDistribution, convey.ShouldResemble, []report.BucketCount{
					{Bucket: "Obvious", Count: 1},
					{Bucket: "Subtle", Count: 0},
					{Bucket: "Other", Count: 2},
				})
			})
		})
	})

	convey.Convey("Given an empty window", t, func() {
		store := &fakeStore{}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then everything should be zero but fully shaped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.OK, convey.ShouldBeTrue)
				convey.So(rep.TotalThreats, convey.ShouldEqual, 0)
				convey.So(rep.TopHostileIPs, convey.ShouldResemble, []report.HostileIP{})
				convey.So(rep.GeoTopCountries, convey.ShouldResemble, []report.GeoCountry{})
				convey.So(rep.AttackVectorDistribution, convey.ShouldResemble, []report.NameValue{
					{Name: "Volumetric", Value: 0},
					{Name: "Protocol", Value: 0},
					{Name: "Application", Value: 0},
				})
				convey.So(rep.AIConfidenceThresholds.ObviousLe, convey.ShouldBeNil)
				convey.So(rep.AIConfidenceThresholds.SubtleLe, convey.ShouldBeNil)
			})

			convey.Convey("And the JSON should render empty lists and null cutoffs", func() {
				convey.So(err, convey.ShouldBeNil)
				raw, merr := json.Marshal(rep)
				convey.So(merr, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, `"topHostileIps":[]`)
				convey.So(string(raw), convey.ShouldContainSubstring, `"geoTopCountries":[]`)
				convey.So(string(raw), convey.ShouldContainSubstring, `"obviousLe":null`)
			})
		})
	})

	convey.Convey("Given a window where no event carries a score", t, func() {
		store := &fakeStore{
			sum: report.Summary{
				Total:   4,
				Vectors: map[string]int64{"Protocol": 4},
			},
		}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then every event should land in Other", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.AIConfidenceThresholds.ObviousLe, convey.ShouldBeNil)
				convey.So(rep.AIConfidenceDistribution, convey.ShouldResemble, []report.BucketCount{
					{Bucket: "Obvious", Count: 0},
					{Bucket: "Subtle", Count: 0},
					{Bucket: "Other", Count: 4},
				})
			})
		})
	})
}

func TestEngineWindowClamping(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given out-of-range window requests", t, func() {
		store := &fakeStore{}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When the span is below the minimum", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 0, Limit: 10000})

			convey.Convey("Then it should clamp to one hour", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Window.SinceHours, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the span is above the maximum", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 9000, Limit: 10000})

			convey.Convey("Then it should clamp to a week", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Window.SinceHours, convey.ShouldEqual, 168)
			})
		})
	})
}

func TestEngineStoreFailures(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a store that fails mid-report", t, func() {
		convey.Convey("When the summary query fails", func() {
			store := &fakeStore{summaryErr: errors.New("cursor timeout")}
			engine := report.NewEngine(store, report.WithClock(fixedClock))
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the failure should surface", func() {
				convey.So(rep, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "cursor timeout")
			})
		})

		convey.Convey("When the store is unreachable", func() {
			store := &fakeStore{summaryErr: &report.StoreUnavailableError{
				Reason: errors.New("MONGO_URL not set for ai-engine"),
			}}
			engine := report.NewEngine(store, report.WithClock(fixedClock))
			_, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the unavailable kind should be preserved", func() {
				convey.So(errors.Is(err, report.ErrStoreUnavailable), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "MONGO_URL not set for ai-engine")
			})
		})

		convey.Convey("When the rank query fails", func() {
			store := &fakeStore{
				sum:      report.Summary{Total: 2, Scored: 2, MinScore: -1, MaxScore: 1},
				ranksErr: errors.New("rank query interrupted"),
			}
			engine := report.NewEngine(store, report.WithClock(fixedClock))
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the failure should surface", func() {
				convey.So(rep, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "rank query interrupted")
			})
		})
	})
}

func fullPullEvents() []model.ThreatEvent {
	at := func(h, m int) time.Time {
		return time.Date(2026, 8, 24, h, m, 0, 0, time.UTC)
	}
	return []model.ThreatEvent{
		{SourceIP: "203.0.113.7", Method: "GET", Bytes: 9000, Timestamp: at(11, 0), Score: -0.9},
		{SourceIP: "203.0.113.7", Method: "POST", Bytes: 120, Timestamp: at(10, 0), Score: -0.5},
		{SourceIP: "10.1.2.3", Method: "GET", Bytes: 300, Timestamp: at(11, 30), Score: -0.2, SourceCountry: "Atlantis"},
		{SourceIP: "10.1.2.3", Method: "PUT", Bytes: 400, Timestamp: at(9, 0), Score: -0.1},
		{SourceIP: "77.3.2.1", Method: "GET", Bytes: 50, Timestamp: at(8, 0), Score: 0.3, AttackVector: "volumetric-flood"},
		// Unscored event still counts toward the total.
		{SourceIP: "77.3.2.1", Method: "GET", Bytes: 60, Timestamp: at(7, 0), Score: math.NaN()},
		// Outside the window and without a timestamp: excluded everywhere.
		{SourceIP: "198.51.100.9", Method: "GET", Bytes: 70, Timestamp: at(12, 30), Score: -5},
		{SourceIP: "198.51.100.9", Method: "GET", Bytes: 70, Score: -5},
	}
}

func TestEngineFullPull(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an engine forced onto the collect path", t, func() {
		store := &fakeStore{events: fullPullEvents()}
		engine := report.NewEngine(store,
			report.WithClock(fixedClock),
			report.WithFullPull(true),
		)

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then no aggregation query should run", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.summaryCalls, convey.ShouldEqual, 0)
				convey.So(store.collectCalls, convey.ShouldEqual, 1)
			})

			convey.Convey("And only in-window events should be counted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.TotalThreats, convey.ShouldEqual, 6)
			})

			convey.Convey("And the classification policy should be applied per event", func() {
				convey.So(err, convey.ShouldBeNil)
				// Volumetric: 9000 bytes plus the explicit flag. The POST
				// and PUT are application-layer, the plain GETs protocol.
				convey.So(rep.AttackVectorDistribution, convey.ShouldResemble, []report.NameValue{
					{Name: "Volumetric", Value: 2},
					{Name: "Protocol", Value: 2},
					{Name: "Application", Value: 2},
				})
			})

			convey.Convey("And countries should mix explicit and derived origins", func() {
				convey.So(err, convey.ShouldBeNil)
				// First octets 203, 10 and 77 select United Kingdom,
				// United States and Japan; one event carries an explicit
				// origin. Equal counts order by name.
				convey.So(rep.GeoTopCountries, convey.ShouldResemble, []report.GeoCountry{
					{Name: "Japan", Count: 2, Pct: 33},
					{Name: "United Kingdom", Count: 2, Pct: 33},
					{Name: "Atlantis", Count: 1, Pct: 17},
					{Name: "United States", Count: 1, Pct: 17},
				})
			})

			convey.Convey("And hostile addresses should rank by count then recency", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rep.TopHostileIPs), convey.ShouldEqual, 3)
				convey.So(rep.TopHostileIPs[0].IP, convey.ShouldEqual, "10.1.2.3")
				convey.So(rep.TopHostileIPs[1].IP, convey.ShouldEqual, "203.0.113.7")
				convey.So(rep.TopHostileIPs[2].IP, convey.ShouldEqual, "77.3.2.1")
				convey.So(*rep.TopHostileIPs[0].LastSeen, convey.ShouldEqual, "2026-08-24T11:30:00.000000Z")
			})

			convey.Convey("And the buckets should match the push-down math", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(*rep.AIConfidenceThresholds.ObviousLe, convey.ShouldAlmostEqual, -0.58)
				convey.So(*rep.AIConfidenceThresholds.SubtleLe, convey.ShouldAlmostEqual, -0.16)
				convey.So(rep.AIConfidenceDistribution, convey.ShouldResemble, []report.BucketCount{
					{Bucket: "Obvious", Count: 1},
					{Bucket: "Subtle", Count: 2},
					{Bucket: "Other", Count: 3},
				})
			})

			convey.Convey("And a second run over the same events should be byte-identical", func() {
				convey.So(err, convey.ShouldBeNil)
				again, aerr := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})
				convey.So(aerr, convey.ShouldBeNil)

				first, _ := json.Marshal(rep)
				second, _ := json.Marshal(again)
				convey.So(string(second), convey.ShouldEqual, string(first))
			})
		})
	})

	convey.Convey("Given a store that cannot aggregate", t, func() {
		store := &fakeStore{unsupported: true, events: fullPullEvents()}
		engine := report.NewEngine(store, report.WithClock(fixedClock))

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the engine should fall back to collecting", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.summaryCalls, convey.ShouldEqual, 1)
				convey.So(store.collectCalls, convey.ShouldEqual, 1)
				convey.So(rep.TotalThreats, convey.ShouldEqual, 6)
			})
		})
	})

	convey.Convey("Given a collect path that fails", t, func() {
		store := &fakeStore{collectErr: errors.New("find interrupted")}
		engine := report.NewEngine(store,
			report.WithClock(fixedClock),
			report.WithFullPull(true),
		)

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the failure should surface", func() {
				convey.So(rep, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "find interrupted")
			})
		})
	})
}

func TestEngineWindowBoundaries(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given events sitting exactly on the window edges", t, func() {
		since := reportNow.Add(-24 * time.Hour)
		store := &fakeStore{events: []model.ThreatEvent{
			{SourceIP: "1.1.1.1", Timestamp: since, Score: -1},            // inclusive lower bound
			{SourceIP: "2.2.2.2", Timestamp: reportNow, Score: -1},       // exclusive upper bound
			{SourceIP: "3.3.3.3", Timestamp: since.Add(-time.Second)},    // before the window
			{SourceIP: "4.4.4.4", Timestamp: reportNow.Add(time.Second)}, // after the window
		}}
		engine := report.NewEngine(store,
			report.WithClock(fixedClock),
			report.WithFullPull(true),
		)

		convey.Convey("When building the report", func() {
			rep, err := engine.ThreatIntel(ctx, report.Params{SinceHours: 24, Limit: 10000})

			convey.Convey("Then the window should be half-open", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.TotalThreats, convey.ShouldEqual, 1)
				convey.So(rep.TopHostileIPs[0].IP, convey.ShouldEqual, "1.1.1.1")
			})
		})
	})
}

func TestWindowParsing(t *testing.T) {
	convey.Convey("Given raw request values", t, func() {
		convey.Convey("When parsing sinceHours", func() {
			convey.So(report.SinceHours("24"), convey.ShouldEqual, 24)
			convey.So(report.SinceHours("1"), convey.ShouldEqual, 1)
			convey.So(report.SinceHours("168"), convey.ShouldEqual, 168)

			convey.Convey("Then out-of-range values should clamp", func() {
				convey.So(report.SinceHours("0"), convey.ShouldEqual, 1)
				convey.So(report.SinceHours("-5"), convey.ShouldEqual, 1)
				convey.So(report.SinceHours("200"), convey.ShouldEqual, 168)
			})

			convey.Convey("And unparseable values should fall back to the default", func() {
				convey.So(report.SinceHours(""), convey.ShouldEqual, 24)
				convey.So(report.SinceHours("abc"), convey.ShouldEqual, 24)
				convey.So(report.SinceHours("12.5"), convey.ShouldEqual, 24)
			})
		})

		convey.Convey("When parsing the pull limit", func() {
			convey.So(report.PullLimit("50"), convey.ShouldEqual, 50)
			convey.So(report.PullLimit("0"), convey.ShouldEqual, 1)
			convey.So(report.PullLimit("999999"), convey.ShouldEqual, 50000)
			convey.So(report.PullLimit(""), convey.ShouldEqual, 10000)
			convey.So(report.PullLimit("lots"), convey.ShouldEqual, 10000)
		})
	})
}
