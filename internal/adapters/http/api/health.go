// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	ml "github.com/SanatanSinghVishen/Tracel/internal/ml"
)

// HealthHandler handles liveness and model-health requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// healthResponse is the GET /health body.
type healthResponse struct {
	OK          bool    `json:"ok"`
	ModelLoaded bool    `json:"modelLoaded"`
	ModelError  *string `json:"modelError"`
}

// modelHealthResponse is the GET /health/model body.
type modelHealthResponse struct {
	OK          bool     `json:"ok"`
	ModelLoaded bool     `json:"modelLoaded"`
	ModelError  *string  `json:"modelError"`
	ModelType   *string  `json:"modelType"`
	ModelPath   string   `json:"modelPath"`
	Threshold   *float64 `json:"threshold"`
}

// HandleHealth handles GET /health requests. It reports the loader's
// current view without triggering a load: the process is alive and
// serving even when the model is not, so the status is always 200.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	st := h.deps.ModelStatus()
	writeJSON(w, http.StatusOK, healthResponse{
		OK:          true,
		ModelLoaded: st.Loaded,
		ModelError:  loadFailureText(st.Err),
	})
}

// HandleModelHealth handles GET /health/model requests. It forces a
// fresh load from disk so operators can verify a model rollout without
// restarting the process.
func (h *HealthHandler) HandleModelHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	art, err := h.deps.ReloadModel(r.Context())
	st := h.deps.ModelStatus()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, modelHealthResponse{
			OK:          false,
			ModelLoaded: false,
			ModelError:  loadFailureText(err),
			ModelPath:   st.Path,
		})
		return
	}
	modelType := art.Type()
	writeJSON(w, http.StatusOK, modelHealthResponse{
		OK:          true,
		ModelLoaded: true,
		ModelType:   &modelType,
		ModelPath:   st.Path,
		Threshold:   art.Threshold,
	})
}

// loadFailureText renders a load failure the way consumers expect: the
// concrete reason, without the unavailability wrapper.
func loadFailureText(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	var unavailable *ml.UnavailableError
	if errors.As(err, &unavailable) && unavailable.Reason != nil {
		msg = unavailable.Reason.Error()
	}
	return &msg
}
