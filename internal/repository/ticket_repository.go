package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID   *int64
	TechnicianID  *int64
	InstitutionID *int64
	Statuses      []domain.TicketStatus
	Limit         int
	Offset        int
}

// TicketRepository encapsulates service-ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.ServiceTicket) error
	Update(ctx context.Context, ticket *domain.ServiceTicket) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	GetBySequenceNumber(ctx context.Context, seq string) (*domain.ServiceTicket, error)
	FindActiveByPrinter(ctx context.Context, printerID int64) (*domain.ServiceTicket, error)
	NextSequence(ctx context.Context, year int) (int64, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.ServiceTicket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates a standalone repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, sequence_number, institution_id, requester_id, printer_id,
               technician_id, priority, description, location, status,
               created_at, updated_at, started_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.ServiceTicket) error {
	const query = `
        INSERT INTO service_tickets (sequence_number, institution_id, requester_id, printer_id,
            technician_id, priority, description, location, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.SequenceNumber,
		ticket.InstitutionID,
		ticket.RequesterID,
		ticket.PrinterID,
		ticket.TechnicianID,
		ticket.Priority,
		ticket.Description,
		ticket.Location,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.ServiceTicket) error {
	const query = `
        UPDATE service_tickets SET technician_id=$1, priority=$2, description=$3, location=$4,
            status=$5, started_at=$6, resolved_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		ticket.TechnicianID,
		ticket.Priority,
		ticket.Description,
		ticket.Location,
		ticket.Status,
		ticket.StartedAt,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_tickets WHERE id=$1 FOR UPDATE`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetBySequenceNumber(ctx context.Context, seq string) (*domain.ServiceTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_tickets WHERE sequence_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, seq)
}

// FindActiveByPrinter returns the non-terminal ticket for the printer, or
// nil when none exists.
func (r *ticketRepository) FindActiveByPrinter(ctx context.Context, printerID int64) (*domain.ServiceTicket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM service_tickets
        WHERE printer_id=$1 AND status NOT IN ($2, $3)
        ORDER BY id LIMIT 1`, ticketColumns)
	ticket, err := r.fetchSingle(ctx, query, printerID, domain.TicketStatusCompleted, domain.TicketStatusCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

// NextSequence atomically advances the per-year counter row. Must run in
// the same transaction as the ticket insert so sequence numbers never
// repeat under concurrent creation.
func (r *ticketRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	const query = `
        INSERT INTO ticket_sequences (year, last_value) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_value = ticket_sequences.last_value + 1
        RETURNING last_value`
	var seq int64
	if err := r.db.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.ServiceTicket, error) {
	var ticket domain.ServiceTicket
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.SequenceNumber,
		&ticket.InstitutionID,
		&ticket.RequesterID,
		&ticket.PrinterID,
		&ticket.TechnicianID,
		&ticket.Priority,
		&ticket.Description,
		&ticket.Location,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.StartedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.ServiceTicket, error) {
	base := fmt.Sprintf(`SELECT %s FROM service_tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.InstitutionID != nil {
		args = append(args, *filter.InstitutionID)
		clauses = append(clauses, fmt.Sprintf("institution_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceTicket
	for rows.Next() {
		var ticket domain.ServiceTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.SequenceNumber,
			&ticket.InstitutionID,
			&ticket.RequesterID,
			&ticket.PrinterID,
			&ticket.TechnicianID,
			&ticket.Priority,
			&ticket.Description,
			&ticket.Location,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.StartedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
