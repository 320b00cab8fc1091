package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// SequenceStore persists per-service ticket number sequences. It exposes
// only get-or-create and a compare-and-swap advance; the allocator builds
// the retry loop on top.
type SequenceStore interface {
	GetOrCreate(ctx context.Context, serviceID string) (*domain.ServiceSequence, error)
	AdvanceIfUnchanged(ctx context.Context, serviceID string, expectedNext, newNext int) error
}

type sequenceRepository struct {
	db DB
}

// NewSequenceRepository instantiates the postgres-backed sequence store.
func NewSequenceRepository(db DB) SequenceStore {
	return &sequenceRepository{db: db}
}

// GetOrCreate returns the sequence row for serviceID, creating it with
// next_number = 1 on first use. ON CONFLICT DO NOTHING resolves concurrent
// first-requests to exactly one row; the loser reads the winner's row.
func (r *sequenceRepository) GetOrCreate(ctx context.Context, serviceID string) (*domain.ServiceSequence, error) {
	const insert = `
        INSERT INTO ticket_sequences (service_id, next_number)
        VALUES ($1, 1)
        ON CONFLICT (service_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, insert, serviceID); err != nil {
		return nil, err
	}

	const query = `SELECT service_id, next_number FROM ticket_sequences WHERE service_id=$1`
	var seq domain.ServiceSequence
	if err := r.db.QueryRow(ctx, query, serviceID).Scan(&seq.ServiceID, &seq.NextNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &seq, nil
}

// AdvanceIfUnchanged is the CAS primitive: the UPDATE matches only while
// next_number still equals expectedNext, so no two concurrent allocations
// can observe and advance the same pre-increment value.
func (r *sequenceRepository) AdvanceIfUnchanged(ctx context.Context, serviceID string, expectedNext, newNext int) error {
	const query = `
        UPDATE ticket_sequences SET next_number=$1
        WHERE service_id=$2 AND next_number=$3`
	cmd, err := r.db.Exec(ctx, query, newNext, serviceID, expectedNext)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSequenceConflict
	}
	return nil
}
