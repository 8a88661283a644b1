// Package bgoerr defines the error-kind vocabulary shared by every layer of
// the ingest and query pipelines, so that callers can distinguish expected
// outcomes (NotFound) from session-fatal ones (StoreFailure, Invariant)
// using errors.Is.
package bgoerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap these with fmt.Errorf("...: %w", ErrX) at the
// call site to add context; callers compare with errors.Is.
var (
	// ErrStoreFailure marks a backing-store I/O or constraint failure.
	// Fatal to the operation in progress.
	ErrStoreFailure = errors.New("store failure")

	// ErrNotFound marks a lookup that found nothing. Expected at several
	// call sites and never logged as an error there.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate marks an attempted insert of a Player or Game that
	// already exists. Recoverable locally by switching to a lookup.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvariant marks an internal consistency violation, such as an
	// out-of-range coordinate surfacing from the Store. Always fatal.
	ErrInvariant = errors.New("invariant violation")
)

// RecordPhase names the stage of record processing that rejected a record.
type RecordPhase string

const (
	PhaseParse     RecordPhase = "parse"
	PhaseAdmission RecordPhase = "admission"
	PhaseLegality  RecordPhase = "legality"
)

// RecordError reports why one record was rejected during ingestion. It is
// never session-fatal: the ingestor counts and logs it, then continues.
type RecordError struct {
	Phase  RecordPhase
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Reason)
}

// NewRecordError constructs a RecordError for the given phase and reason.
func NewRecordError(phase RecordPhase, reason string) *RecordError {
	return &RecordError{Phase: phase, Reason: reason}
}
