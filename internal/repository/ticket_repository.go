package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// TicketStore encapsulates ticket persistence. Status writes go through
// SaveStatus only, which is conditional on the expected current status so
// that two racing operators cannot both succeed on the same ticket.
type TicketStore interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	SaveStatus(ctx context.Context, id string, expected, next domain.TicketStatus) (*domain.Ticket, error)
	CountActiveAhead(ctx context.Context, serviceID string, before time.Time, beforeNumber int) (int, error)
	FindEarliestPending(ctx context.Context, serviceID string) (*domain.Ticket, error)
	ListActiveByService(ctx context.Context, serviceID string) ([]domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates the postgres-backed store.
func NewTicketRepository(db DB) TicketStore {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, service_id, owner_id, number, status, created_at`

// Create inserts the ticket and its audit event in one transaction. On any
// failure the whole insert rolls back; a ticket never becomes durable with
// an error returned to the caller.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (id, service_id, owner_id, number, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	if err := tx.QueryRow(ctx, query,
		ticket.ID,
		ticket.ServiceID,
		ticket.OwnerID,
		ticket.Number,
		ticket.Status,
	).Scan(&ticket.CreatedAt); err != nil {
		return err
	}
	if err := appendEvent(ctx, tx, ticket); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return fetchTicket(ctx, r.db, id)
}

// SaveStatus updates the ticket status only if it still equals expected.
// The WHERE clause is the per-ticket serialization unit: of two concurrent
// transitions exactly one matches and the other gets ErrStatusConflict.
// The status write and the audit event commit together or not at all.
func (r *ticketRepository) SaveStatus(ctx context.Context, id string, expected, next domain.TicketStatus) (*domain.Ticket, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET status=$1
        WHERE id=$2 AND status=$3
        RETURNING ` + ticketColumns
	ticket, err := scanTicketRow(tx.QueryRow(ctx, query, next, id, expected))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := fetchTicket(ctx, tx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrStatusConflict
		}
		return nil, err
	}
	if err := appendEvent(ctx, tx, ticket); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

// CountActiveAhead counts active tickets ordered strictly before the
// (before, beforeNumber) key. Same ordering as FindEarliestPending.
func (r *ticketRepository) CountActiveAhead(ctx context.Context, serviceID string, before time.Time, beforeNumber int) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE service_id=$1
          AND status = ANY($2)
          AND (created_at < $3 OR (created_at = $3 AND number < $4))`
	var count int
	err := r.db.QueryRow(ctx, query, serviceID, activeStatusStrings(), before, beforeNumber).Scan(&count)
	return count, err
}

// FindEarliestPending selects the next ticket to call. Call-next callers
// serialize per service before reading; a ticket a racing caller already
// moved fails the conditional status update that follows.
func (r *ticketRepository) FindEarliestPending(ctx context.Context, serviceID string) (*domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + ` FROM tickets
        WHERE service_id=$1 AND status=$2
        ORDER BY created_at, number
        LIMIT 1`
	return fetchSingle(ctx, r.db, query, serviceID, domain.TicketStatusPending)
}

func (r *ticketRepository) ListActiveByService(ctx context.Context, serviceID string) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + ` FROM tickets
        WHERE service_id=$1 AND status = ANY($2)
        ORDER BY created_at, number`
	rows, err := r.db.Query(ctx, query, serviceID, activeStatusStrings())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE owner_id=$1`
	args := []any{ownerID}
	if activeOnly {
		args = append(args, activeStatusStrings())
		query += ` AND status = ANY($2)`
	}
	query += ` ORDER BY created_at DESC, number DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// appendEvent records the mutation in the ticket_events audit log consumed
// by downstream analytics. Runs inside the mutation's transaction.
func appendEvent(ctx context.Context, tx execer, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO ticket_events (id, ticket_id, service_id, ticket_number, status)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := tx.Exec(ctx, query, uuid.NewString(), ticket.ID, ticket.ServiceID, ticket.Number, ticket.Status)
	return err
}

func fetchTicket(ctx context.Context, q rowQuerier, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return fetchSingle(ctx, q, query, id)
}

func fetchSingle(ctx context.Context, q rowQuerier, query string, args ...any) (*domain.Ticket, error) {
	ticket, err := scanTicketRow(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.ServiceID,
		&ticket.OwnerID,
		&ticket.Number,
		&ticket.Status,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ServiceID,
			&ticket.OwnerID,
			&ticket.Number,
			&ticket.Status,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func activeStatusStrings() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
