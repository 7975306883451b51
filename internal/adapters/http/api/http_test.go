package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SanatanSinghVishen/Tracel/internal/adapters/http/api"
	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	report "github.com/SanatanSinghVishen/Tracel/internal/domain/report"
	scoring "github.com/SanatanSinghVishen/Tracel/internal/domain/scoring"
	ml "github.com/SanatanSinghVishen/Tracel/internal/ml"
	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockEngine struct {
	result   scoring.Result
	scoreErr error
	scored   []model.Telemetry

	rep       *report.ThreatIntel
	reportErr error
	params    []report.Params

	status    ml.Status
	artifact  *ml.Artifact
	reloadErr error
	reloads   int
}

func (m *mockEngine) Score(_ context.Context, t model.Telemetry) (scoring.Result, error) {
	m.scored = append(m.scored, t)
	if m.scoreErr != nil {
		return scoring.Result{}, m.scoreErr
	}
	res := m.result
	res.ID = t.ID
	return res, nil
}

func (m *mockEngine) ThreatIntel(_ context.Context, p report.Params) (*report.ThreatIntel, error) {
	m.params = append(m.params, p)
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.rep, nil
}

func (m *mockEngine) ModelStatus() ml.Status { return m.status }

func (m *mockEngine) ReloadModel(_ context.Context) (*ml.Artifact, error) {
	m.reloads++
	if m.reloadErr != nil {
		return nil, m.reloadErr
	}
	return m.artifact, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func emptyReport() *report.ThreatIntel {
	return &report.ThreatIntel{
		OK:                       true,
		TopHostileIPs:            []report.HostileIP{},
		AttackVectorDistribution: []report.NameValue{},
		GeoTopCountries:          []report.GeoCountry{},
	}
}

func loadedEngine() *mockEngine {
	threshold := -0.012
	return &mockEngine{
		result:   scoring.Result{Score: -0.42},
		rep:      emptyReport(),
		status:   ml.Status{Attempted: true, Loaded: true, Type: "bundle", Path: "/models/model.json", Threshold: &threshold},
		artifact: &ml.Artifact{Bundled: true, Threshold: &threshold},
	}
}

func newMux(deps *mockEngine) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"service": "tracel-ai"}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := loadedEngine()
		mux := newMux(deps)

		Convey("When registering routes", func() {
			Convey("Then the health endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/health", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the model health endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/health/model", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the predict endpoint should be accessible", func() {
				req := httptest.NewRequest("POST", "/predict", strings.NewReader(`{}`))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the report endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/report/threat-intel", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the stats endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "tracel-ai")
			})

			Convey("And the metrics endpoint should serve the registry", func() {
				req := httptest.NewRequest("GET", "/metrics", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "tracel_aiengine_")
			})

			Convey("And unknown paths should return not found", func() {
				req := httptest.NewRequest("GET", "/unknown", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And every response should carry a request id", func() {
				req := httptest.NewRequest("GET", "/health", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})

			Convey("And an inbound request id should be echoed back", func() {
				req := httptest.NewRequest("GET", "/health", nil)
				req.Header.Set(api.RequestIDHeader, "trace-me-7")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "trace-me-7")
			})
		})
	})
}

func TestPredictEndpoint(t *testing.T) {
	Convey("Given a server with a loaded model", t, func() {
		deps := loadedEngine()
		mux := newMux(deps)

		Convey("When posting a telemetry payload with an id", func() {
			body := `{"bytes": 1200, "protocol": "UDP", "entropy": 0.9, "dst_port": 3389, "id": "evt-1"}`
			req := httptest.NewRequest("POST", "/predict", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the score and the id should come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Score float64 `json:"score"`
					ID    any     `json:"id"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Score, ShouldEqual, -0.42)
				So(resp.ID, ShouldEqual, "evt-1")
			})

			Convey("And the coerced telemetry should reach the scorer", func() {
				So(len(deps.scored), ShouldEqual, 1)
				So(deps.scored[0].Bytes, ShouldEqual, 1200)
				So(deps.scored[0].Protocol, ShouldEqual, model.ProtocolUDP)
				So(deps.scored[0].DstPort, ShouldEqual, 3389)
			})
		})

		Convey("When posting without an id", func() {
			req := httptest.NewRequest("POST", "/predict", strings.NewReader(`{"bytes": 10}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the id should render as null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"id":null`)
			})
		})

		Convey("When posting a syntactically broken body", func() {
			req := httptest.NewRequest("POST", "/predict", strings.NewReader(`{"bytes": nope`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the all-default payload should be scored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(deps.scored), ShouldEqual, 1)
				So(deps.scored[0].Bytes, ShouldEqual, 0)
				So(deps.scored[0].Protocol, ShouldEqual, model.ProtocolTCP)
				So(deps.scored[0].Entropy, ShouldEqual, model.DefaultEntropy)
				So(deps.scored[0].DstPort, ShouldEqual, model.DefaultPort)
			})
		})

		Convey("When the request is not a POST", func() {
			req := httptest.NewRequest("GET", "/predict", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a server whose model cannot load", t, func() {
		deps := loadedEngine()
		deps.scoreErr = &ml.UnavailableError{Reason: errors.New("model file not found at /models/model.json")}
		mux := newMux(deps)

		Convey("When posting a payload", func() {
			req := httptest.NewRequest("POST", "/predict", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should respond unavailable with the load reason", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var resp struct {
					Error   string `json:"error"`
					Details string `json:"details"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Error, ShouldEqual, "model not loaded")
				So(resp.Details, ShouldEqual, "model file not found at /models/model.json")
			})
		})
	})

	Convey("Given a server whose scorer fails unexpectedly", t, func() {
		deps := loadedEngine()
		deps.scoreErr = errors.New("scoring exploded")
		mux := newMux(deps)

		Convey("When posting a payload", func() {
			req := httptest.NewRequest("POST", "/predict", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should respond with the failure", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "scoring exploded")
			})
		})
	})
}

func TestHealthEndpoints(t *testing.T) {
	Convey("Given a server with a loaded model", t, func() {
		deps := loadedEngine()
		mux := newMux(deps)

		Convey("When checking liveness", func() {
			req := httptest.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should report the model as loaded without reloading", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					OK          bool    `json:"ok"`
					ModelLoaded bool    `json:"modelLoaded"`
					ModelError  *string `json:"modelError"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeTrue)
				So(resp.ModelLoaded, ShouldBeTrue)
				So(resp.ModelError, ShouldBeNil)
				So(deps.reloads, ShouldEqual, 0)
			})
		})

		Convey("When forcing a model check", func() {
			req := httptest.NewRequest("GET", "/health/model", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should reload and describe the artifact", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.reloads, ShouldEqual, 1)
				var resp struct {
					OK        bool     `json:"ok"`
					ModelType *string  `json:"modelType"`
					ModelPath string   `json:"modelPath"`
					Threshold *float64 `json:"threshold"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeTrue)
				So(*resp.ModelType, ShouldEqual, "bundle")
				So(resp.ModelPath, ShouldEqual, "/models/model.json")
				So(*resp.Threshold, ShouldEqual, -0.012)
			})
		})
	})

	Convey("Given a server whose model is missing", t, func() {
		deps := loadedEngine()
		loadErr := &ml.UnavailableError{Reason: errors.New("model file not found at /models/model.json")}
		deps.status = ml.Status{Attempted: true, Loaded: false, Err: loadErr, Path: "/models/model.json"}
		deps.reloadErr = loadErr
		mux := newMux(deps)

		Convey("When checking liveness", func() {
			req := httptest.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the process should still report alive", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					OK          bool    `json:"ok"`
					ModelLoaded bool    `json:"modelLoaded"`
					ModelError  *string `json:"modelError"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeTrue)
				So(resp.ModelLoaded, ShouldBeFalse)
				So(*resp.ModelError, ShouldEqual, "model file not found at /models/model.json")
			})
		})

		Convey("When forcing a model check", func() {
			req := httptest.NewRequest("GET", "/health/model", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should respond unavailable with the reason", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var resp struct {
					OK          bool    `json:"ok"`
					ModelLoaded bool    `json:"modelLoaded"`
					ModelError  *string `json:"modelError"`
					ModelPath   string  `json:"modelPath"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeFalse)
				So(resp.ModelLoaded, ShouldBeFalse)
				So(*resp.ModelError, ShouldEqual, "model file not found at /models/model.json")
				So(resp.ModelPath, ShouldEqual, "/models/model.json")
			})
		})
	})
}

func TestReportEndpoint(t *testing.T) {
	Convey("Given a server with a healthy store", t, func() {
		deps := loadedEngine()
		mux := newMux(deps)

		Convey("When requesting without parameters", func() {
			req := httptest.NewRequest("GET", "/report/threat-intel", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the defaults should reach the engine", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(deps.params), ShouldEqual, 1)
				So(deps.params[0].SinceHours, ShouldEqual, report.DefaultSinceHours)
				So(deps.params[0].Limit, ShouldEqual, report.DefaultPullLimit)
				So(deps.params[0].OwnerID, ShouldBeEmpty)
			})
		})

		Convey("When requesting with out-of-range and padded parameters", func() {
			req := httptest.NewRequest("GET", "/report/threat-intel?sinceHours=500&limit=99&ownerUserId=%20user-9%20", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then values should be clamped and trimmed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.params[0].SinceHours, ShouldEqual, report.MaxSinceHours)
				So(deps.params[0].Limit, ShouldEqual, 99)
				So(deps.params[0].OwnerID, ShouldEqual, "user-9")
			})
		})
	})

	Convey("Given a server whose store is not configured", t, func() {
		deps := loadedEngine()
		deps.reportErr = &report.StoreUnavailableError{Reason: errors.New("MONGO_URL not set for ai-engine")}
		mux := newMux(deps)

		Convey("When requesting the report", func() {
			req := httptest.NewRequest("GET", "/report/threat-intel", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should respond unavailable with the exact reason", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var resp struct {
					OK    bool   `json:"ok"`
					Error string `json:"error"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeFalse)
				So(resp.Error, ShouldEqual, "MONGO_URL not set for ai-engine")
			})
		})
	})

	Convey("Given a server whose store fails mid-query", t, func() {
		deps := loadedEngine()
		deps.reportErr = errors.New("threat summary: cursor timeout")
		mux := newMux(deps)

		Convey("When requesting the report", func() {
			req := httptest.NewRequest("GET", "/report/threat-intel", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should respond with the failure", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				var resp struct {
					OK    bool   `json:"ok"`
					Error string `json:"error"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeFalse)
				So(resp.Error, ShouldContainSubstring, "cursor timeout")
			})
		})
	})

	Convey("Given a report handler with a timeout", t, func() {
		deps := loadedEngine()
		server := api.NewServer(deps, &mockStatsProvider{}, api.WithReportTimeout(50*time.Millisecond))
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When requesting the report", func() {
			req := httptest.NewRequest("GET", "/report/threat-intel", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then a fast engine should answer normally", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
