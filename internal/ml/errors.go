package ml

import "errors"

// Sentinel kinds for artifact and loader errors.
var (
	ErrUnavailable    = errors.New("model not loaded")
	ErrArtifactFormat = errors.New("unrecognized model artifact format")
	ErrEmptyForest    = errors.New("model artifact contains no trees")
	ErrTruncatedTree  = errors.New("model artifact contains a truncated tree")
	ErrDimOutOfRange  = errors.New("model artifact references a feature dimension outside the declared columns")
)

// UnavailableError carries the original load-failure reason. Every
// scoring attempt after a failed load returns the same reason until a
// forced reload succeeds.
type UnavailableError struct {
	Reason error
}

func (e *UnavailableError) Error() string {
	if e.Reason == nil {
		return ErrUnavailable.Error()
	}
	return ErrUnavailable.Error() + ": " + e.Reason.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Reason }

// Is lets errors.Is(err, ErrUnavailable) match without losing the reason.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
