package ml

import (
	"encoding/json"
	"fmt"

	feature "github.com/SanatanSinghVishen/Tracel/internal/domain/feature"
)

// Artifact is a loaded model artifact, resolved once at load time into
// either the bundle or the bare shape. Scoring never re-inspects the
// document.
type Artifact struct {
	Forest      *Forest
	Columns     []string // inference column order; natural order for bare artifacts
	Threshold   *float64
	Version     int
	Algorithm   string
	Calibration *Calibration
	Bundled     bool
}

// Calibration is the trainer's threshold-selection metadata. It is
// stored and exposed as-is, never recomputed at runtime.
type Calibration struct {
	FPTarget     float64 `json:"fp_target"`
	FPMax        float64 `json:"fp_max"`
	FPEstimate   float64 `json:"fp_est"`
	AttackTPREst float64 `json:"attack_tpr_est"`
	CalN         int     `json:"cal_n"`
}

// bundleDoc mirrors the trainer's bundle layout.
type bundleDoc struct {
	Version        int             `json:"version"`
	Algorithm      string          `json:"algorithm"`
	FeatureColumns []string        `json:"feature_columns"`
	Threshold      *float64        `json:"threshold"`
	Calibration    *Calibration    `json:"calibration"`
	Model          json.RawMessage `json:"model"`
}

// Type names the resolved shape for health reporting.
func (a *Artifact) Type() string {
	if a.Bundled {
		return "bundle"
	}
	return "bare"
}

// Score runs the decision function over a transform vector using the
// artifact's column order.
func (a *Artifact) Score(v feature.Vector) (float64, error) {
	x, err := v.Select(a.Columns)
	if err != nil {
		return 0, err
	}
	return a.Forest.DecisionFunction(x), nil
}

// ParseArtifact resolves an artifact document. A top-level "model" object
// marks a bundle; a top-level "trees" array marks a bare forest. Bundle
// column declarations are checked against the transform here so a
// column-set mismatch fails the load, not the first request.
func ParseArtifact(data []byte) (*Artifact, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if _, ok := probe["model"]; ok {
		return parseBundle(data)
	}
	if _, ok := probe["trees"]; ok {
		return parseBare(data)
	}
	return nil, ErrArtifactFormat
}

func parseBundle(data []byte) (*Artifact, error) {
	var doc bundleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	var forest Forest
	if err := json.Unmarshal(doc.Model, &forest); err != nil {
		return nil, fmt.Errorf("decode bundled model: %w", err)
	}
	cols := doc.FeatureColumns
	if len(cols) == 0 {
		cols = feature.Columns()
	}
	if _, err := (feature.Vector{}).Select(cols); err != nil {
		return nil, fmt.Errorf("bundle feature columns: %w", err)
	}
	if err := forest.validate(len(cols)); err != nil {
		return nil, err
	}
	return &Artifact{
		Forest:      &forest,
		Columns:     cols,
		Threshold:   doc.Threshold,
		Version:     doc.Version,
		Algorithm:   doc.Algorithm,
		Calibration: doc.Calibration,
		Bundled:     true,
	}, nil
}

func parseBare(data []byte) (*Artifact, error) {
	var forest Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	cols := feature.Columns()
	if err := forest.validate(len(cols)); err != nil {
		return nil, err
	}
	return &Artifact{Forest: &forest, Columns: cols}, nil
}
