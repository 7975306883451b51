// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	report "github.com/SanatanSinghVishen/Tracel/internal/domain/report"
)

// ReportHandler handles threat-intelligence report requests.
type ReportHandler struct {
	deps    Dependencies
	timeout time.Duration
}

// NewReportHandler creates a new report handler. A zero timeout leaves
// the request deadline to the server.
func NewReportHandler(deps Dependencies, timeout time.Duration) *ReportHandler {
	return &ReportHandler{deps: deps, timeout: timeout}
}

// reportFailure is the error body for report requests.
type reportFailure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// HandleThreatIntel handles GET /report/threat-intel requests.
// Parameters: sinceHours (clamped to [1,168], default 24), limit (cap
// for the degraded pull path) and ownerUserId (optional scope).
func (h *ReportHandler) HandleThreatIntel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	query := r.URL.Query()
	rep, err := h.deps.ThreatIntel(ctx, report.Params{
		SinceHours: report.SinceHours(query.Get("sinceHours")),
		Limit:      report.PullLimit(query.Get("limit")),
		OwnerID:    strings.TrimSpace(query.Get("ownerUserId")),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, reportFailure{OK: false, Error: storeFailureText(err)})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// storeFailureText renders a report failure the way consumers expect:
// unavailability surfaces its concrete reason verbatim.
func storeFailureText(err error) string {
	var unavailable *report.StoreUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Error()
	}
	return err.Error()
}
