// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"

	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	ml "github.com/SanatanSinghVishen/Tracel/internal/ml"
)

// PredictHandler handles scoring requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// predictResponse mirrors the scoring contract: the raw decision score
// and the caller's correlation token, if any.
type predictResponse struct {
	Score float64 `json:"score"`
	ID    any     `json:"id"`
}

// predictUnavailable is the 503 body when the model cannot be loaded.
type predictUnavailable struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type predictError struct {
	Error string `json:"error"`
}

// HandlePredict handles POST /predict requests. The body is coerced
// field by field; a syntactically broken document scores the all-default
// payload rather than failing.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, predictError{Error: err.Error()})
		return
	}

	res, err := h.deps.Score(r.Context(), model.CoerceTelemetry(body))
	if err != nil {
		var unavailable *ml.UnavailableError
		if errors.As(err, &unavailable) {
			details := ml.ErrUnavailable.Error()
			if unavailable.Reason != nil {
				details = unavailable.Reason.Error()
			}
			writeJSON(w, http.StatusServiceUnavailable, predictUnavailable{
				Error:   ml.ErrUnavailable.Error(),
				Details: details,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, predictError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Score: res.Score, ID: res.ID})
}
