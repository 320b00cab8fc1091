package repository

import "errors"

var (
	// ErrNotFound is returned when a ticket, sequence, or service row is
	// missing.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict is returned by SaveStatus when the ticket's current
	// status no longer matches the expected one, i.e. a concurrent
	// transition won the race.
	ErrStatusConflict = errors.New("ticket status changed concurrently")

	// ErrSequenceConflict is returned by AdvanceIfUnchanged when the stored
	// next number no longer matches the expected value. Transient; the
	// allocator retries with a fresh read.
	ErrSequenceConflict = errors.New("sequence advanced concurrently")
)
