package service

import (
	"context"
	"errors"

	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// defaultAllocMaxRetries bounds the CAS retry loop before the allocator
// gives up and surfaces Unavailable.
const defaultAllocMaxRetries = 5

// SequenceAllocator issues the next ticket number for a service. Numbers
// are strictly increasing per service and never duplicated: the advance is
// a compare-and-swap against the stored sequence, so a concurrent caller
// that read the same pre-increment value loses the swap and retries with a
// fresh read.
type SequenceAllocator struct {
	sequences  repository.SequenceStore
	maxRetries int
}

// NewSequenceAllocator constructs the allocator. maxRetries <= 0 selects
// the default budget.
func NewSequenceAllocator(sequences repository.SequenceStore, maxRetries int) *SequenceAllocator {
	if maxRetries <= 0 {
		maxRetries = defaultAllocMaxRetries
	}
	return &SequenceAllocator{sequences: sequences, maxRetries: maxRetries}
}

// Allocate returns the next number for serviceID and durably advances the
// sequence before returning. A first request for a brand-new service
// creates the sequence with next number 1; concurrent first requests
// resolve to one row and the loser falls back to the increment path. When
// the retry budget is exhausted the call fails with Unavailable and no
// number is consumed.
func (a *SequenceAllocator) Allocate(ctx context.Context, serviceID string) (int, error) {
	var lastErr error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		seq, err := a.sequences.GetOrCreate(ctx, serviceID)
		if err != nil {
			return 0, apperrors.NewUnavailable("sequence read failed", err)
		}

		err = a.sequences.AdvanceIfUnchanged(ctx, serviceID, seq.NextNumber, seq.NextNumber+1)
		if err == nil {
			return seq.NextNumber, nil
		}
		if !errors.Is(err, repository.ErrSequenceConflict) {
			return 0, apperrors.NewUnavailable("sequence advance failed", err)
		}
		lastErr = err
	}
	return 0, apperrors.NewUnavailable("ticket number allocation kept conflicting", lastErr)
}
