package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/repository/memory"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

func TestAllocateFirstNumberIsOne(t *testing.T) {
	allocator := NewSequenceAllocator(memory.NewStore(), 0)

	number, err := allocator.Allocate(context.Background(), "svc-1")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if number != 1 {
		t.Fatalf("first allocation = %d, want 1", number)
	}

	number, err = allocator.Allocate(context.Background(), "svc-1")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if number != 2 {
		t.Fatalf("second allocation = %d, want 2", number)
	}
}

func TestAllocateIndependentPerService(t *testing.T) {
	allocator := NewSequenceAllocator(memory.NewStore(), 0)

	for _, serviceID := range []string{"svc-a", "svc-b"} {
		number, err := allocator.Allocate(context.Background(), serviceID)
		if err != nil {
			t.Fatalf("Allocate(%s): %v", serviceID, err)
		}
		if number != 1 {
			t.Fatalf("Allocate(%s) = %d, want 1 for a fresh service", serviceID, number)
		}
	}
}

func TestAllocateConcurrentNoDuplicatesNoGaps(t *testing.T) {
	const callers = 64
	// Every failed CAS means another caller succeeded, so `callers`
	// retries always suffice; double it to keep the test far from the
	// budget.
	allocator := NewSequenceAllocator(memory.NewStore(), callers*2)

	var wg sync.WaitGroup
	numbers := make(chan int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := allocator.Allocate(context.Background(), "svc-1")
			if err != nil {
				t.Errorf("Allocate: %v", err)
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("number %d allocated twice", number)
		}
		seen[number] = true
	}
	if len(seen) != callers {
		t.Fatalf("got %d distinct numbers, want %d", len(seen), callers)
	}
	for i := 1; i <= callers; i++ {
		if !seen[i] {
			t.Fatalf("number %d missing: allocations must form a contiguous range", i)
		}
	}
}

func TestAllocateConcurrentFirstRequests(t *testing.T) {
	allocator := NewSequenceAllocator(memory.NewStore(), 0)

	var wg sync.WaitGroup
	numbers := make(chan int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := allocator.Allocate(context.Background(), "fresh-svc")
			if err != nil {
				t.Errorf("Allocate: %v", err)
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	got := map[int]bool{}
	for number := range numbers {
		got[number] = true
	}
	if !got[1] || !got[2] || len(got) != 2 {
		t.Fatalf("concurrent first requests yielded %v, want {1,2}", got)
	}
}

type conflictingSequenceStore struct{}

func (conflictingSequenceStore) GetOrCreate(ctx context.Context, serviceID string) (*domain.ServiceSequence, error) {
	return &domain.ServiceSequence{ServiceID: serviceID, NextNumber: 1}, nil
}

func (conflictingSequenceStore) AdvanceIfUnchanged(ctx context.Context, serviceID string, expectedNext, newNext int) error {
	return repository.ErrSequenceConflict
}

func TestAllocateExhaustedRetriesSurfacesUnavailable(t *testing.T) {
	allocator := NewSequenceAllocator(conflictingSequenceStore{}, 3)

	_, err := allocator.Allocate(context.Background(), "svc-1")
	if err == nil {
		t.Fatal("Allocate succeeded against a store that always conflicts")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAVAILABLE" {
		t.Fatalf("got %v, want UNAVAILABLE domain error", err)
	}
}

type failingSequenceStore struct{}

func (failingSequenceStore) GetOrCreate(ctx context.Context, serviceID string) (*domain.ServiceSequence, error) {
	return nil, errors.New("connection refused")
}

func (failingSequenceStore) AdvanceIfUnchanged(ctx context.Context, serviceID string, expectedNext, newNext int) error {
	return errors.New("connection refused")
}

func TestAllocateStorageFailureSurfacesUnavailable(t *testing.T) {
	allocator := NewSequenceAllocator(failingSequenceStore{}, 0)

	_, err := allocator.Allocate(context.Background(), "svc-1")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAVAILABLE" {
		t.Fatalf("got %v, want UNAVAILABLE domain error", err)
	}
}
