// Package ml evaluates serialized isolation-forest artifacts and owns the
// process-lifetime model reference. Training happens offline; this
// package only replays trained trees.
package ml

import "math"

// DefaultOffset is the decision-function offset assumed when an artifact
// does not declare one. It matches the trainer's default so scores keep
// the calibrated scale.
const DefaultOffset = -0.5

// Forest is a serialized isolation forest. Scoring walks every tree,
// averages the path lengths and normalizes by the expected path length
// for the training sample size.
type Forest struct {
	Trees      []*tree  `json:"trees"`
	NumTrees   int      `json:"num_trees"`
	SampleSize int      `json:"sample_size"`
	HeightLim  int      `json:"height_limit,omitempty"`
	Offset     *float64 `json:"offset,omitempty"`
	Scaler     *Scaler  `json:"scaler,omitempty"`
}

type tree struct {
	Root *node `json:"root"`
}

type node struct {
	Leaf     bool    `json:"leaf"`
	Size     int     `json:"size"`
	Dim      int     `json:"dim"`
	SplitVal float64 `json:"split_val"`
	Left     *node   `json:"left"`
	Right    *node   `json:"right"`
}

// Scaler is the standardization stage fitted alongside the forest. It is
// applied to vectors already ordered per the artifact's column order.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) apply(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		m, sc := 0.0, 1.0
		if i < len(s.Mean) {
			m = s.Mean[i]
		}
		if i < len(s.Scale) && s.Scale[i] != 0 {
			sc = s.Scale[i]
		}
		out[i] = (v - m) / sc
	}
	return out
}

// DecisionFunction scores one encoded vector. Lower values are more
// anomalous; the polarity and offset match the offline trainer's
// decision_function so calibrated thresholds stay valid.
func (f *Forest) DecisionFunction(x []float64) float64 {
	if f.Scaler != nil {
		x = f.Scaler.apply(x)
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += pathLength(t.Root, x, 0)
	}
	avg := sum / float64(len(f.Trees))
	c := cFactor(f.SampleSize)
	if c <= 0 {
		c = 1
	}
	return -math.Pow(2, -avg/c) - f.offset()
}

func (f *Forest) offset() float64 {
	if f.Offset != nil {
		return *f.Offset
	}
	return DefaultOffset
}

// validate walks every tree once at load time so scoring never has to
// bounds-check per request. width is the expected vector length.
func (f *Forest) validate(width int) error {
	if len(f.Trees) == 0 {
		return ErrEmptyForest
	}
	for _, t := range f.Trees {
		if t == nil || t.Root == nil {
			return ErrEmptyForest
		}
		if err := validateNode(t.Root, width); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(nd *node, width int) error {
	if nd.Leaf {
		return nil
	}
	if nd.Dim < 0 || nd.Dim >= width {
		return ErrDimOutOfRange
	}
	if nd.Left == nil || nd.Right == nil {
		return ErrTruncatedTree
	}
	if err := validateNode(nd.Left, width); err != nil {
		return err
	}
	return validateNode(nd.Right, width)
}

// cFactor is the average unsuccessful-search path length in a binary
// search tree of n nodes, used for normalization.
func cFactor(n int) float64 {
	if n <= 1 {
		return 0
	}
	return 2.0*(math.Log(float64(n-1))+0.5772156649) - 2.0*float64(n-1)/float64(n)
}

func pathLength(nd *node, x []float64, depth int) float64 {
	if nd.Leaf {
		if nd.Size <= 1 {
			return float64(depth)
		}
		return float64(depth) + cFactor(nd.Size)
	}
	if x[nd.Dim] < nd.SplitVal {
		return pathLength(nd.Left, x, depth+1)
	}
	return pathLength(nd.Right, x, depth+1)
}
