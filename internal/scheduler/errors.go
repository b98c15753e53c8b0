package scheduler

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when a second aggregation run is
// requested while one is in flight. Callers back off and retry later;
// runs are never queued.
var ErrAlreadyRunning = errors.New("aggregation run already in progress")

// ProviderError scopes a fetch failure to one source. It is recorded as
// a failed AggregationResult and never aborts the rest of the run.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistError scopes a save failure to one item. It is recorded
// per-item and never aborts the batch.
type PersistError struct {
	Item string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Item, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
