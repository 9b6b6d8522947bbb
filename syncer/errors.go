package syncer

import "fmt"

// RecordError is a single-record failure during reconciliation. It
// carries the offending MLS id and never aborts the batch.
type RecordError struct {
	MLSID string
	Err   error
}

func (e *RecordError) Error() string {
	if e.MLSID == "" {
		return fmt.Sprintf("record: %v", e.Err)
	}
	return fmt.Sprintf("record %s: %v", e.MLSID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ConflictError means a sync is already in the running state. Surfaced
// to callers distinctly from failure; never retried automatically.
type ConflictError struct{}

func (e *ConflictError) Error() string {
	return "a sync is already running"
}
