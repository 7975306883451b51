package report

import "errors"

// Sentinel kinds for report errors.
var (
	// ErrStoreUnavailable marks failures that happened before any
	// aggregation ran: the store is unreachable or not configured.
	ErrStoreUnavailable = errors.New("event store unavailable")
	// ErrAggregationUnsupported is returned by stores that cannot run
	// server-side aggregation. The engine answers it by collecting raw
	// events and computing in-process.
	ErrAggregationUnsupported = errors.New("store-side aggregation unsupported")
)

// StoreUnavailableError carries the concrete reason the event store
// could not be reached. The reason is surfaced to callers verbatim.
type StoreUnavailableError struct {
	Reason error
}

func (e *StoreUnavailableError) Error() string {
	if e.Reason == nil {
		return ErrStoreUnavailable.Error()
	}
	return e.Reason.Error()
}

func (e *StoreUnavailableError) Unwrap() error { return e.Reason }

// Is lets errors.Is(err, ErrStoreUnavailable) match without losing the reason.
func (e *StoreUnavailableError) Is(target error) bool { return target == ErrStoreUnavailable }
