package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// ApprovalRepository persists completion-submission approval records.
type ApprovalRepository interface {
	Create(ctx context.Context, record *domain.ApprovalRecord) error
	Update(ctx context.Context, record *domain.ApprovalRecord) error
	GetByID(ctx context.Context, id int64) (*domain.ApprovalRecord, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.ApprovalRecord, error)
	// OpenByTicket returns the undecided record for the ticket, or nil.
	OpenByTicket(ctx context.Context, ticketID int64) (*domain.ApprovalRecord, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.ApprovalRecord, error)
}

type approvalRepository struct {
	db DB
}

// NewApprovalRepository builds a standalone repository.
func NewApprovalRepository(db DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, record *domain.ApprovalRecord) error {
	const query = `
        INSERT INTO approval_records (ticket_id, technician_id, actions, notes, state)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, submitted_at`
	return r.db.QueryRow(ctx, query,
		record.TicketID,
		record.TechnicianID,
		record.Actions,
		record.Notes,
		record.State,
	).Scan(&record.ID, &record.SubmittedAt)
}

func (r *approvalRepository) Update(ctx context.Context, record *domain.ApprovalRecord) error {
	const query = `
        UPDATE approval_records SET state=$1, decision_note=$2, approver_id=$3, decided_at=$4
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		record.State,
		record.DecisionNote,
		record.ApproverID,
		record.DecidedAt,
		record.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *approvalRepository) GetByID(ctx context.Context, id int64) (*domain.ApprovalRecord, error) {
	const query = `
        SELECT id, ticket_id, technician_id, actions, notes, state, decision_note,
               approver_id, submitted_at, decided_at
        FROM approval_records WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *approvalRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ApprovalRecord, error) {
	const query = `
        SELECT id, ticket_id, technician_id, actions, notes, state, decision_note,
               approver_id, submitted_at, decided_at
        FROM approval_records WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *approvalRepository) OpenByTicket(ctx context.Context, ticketID int64) (*domain.ApprovalRecord, error) {
	const query = `
        SELECT id, ticket_id, technician_id, actions, notes, state, decision_note,
               approver_id, submitted_at, decided_at
        FROM approval_records WHERE ticket_id=$1 AND state=$2 LIMIT 1`
	record, err := r.fetchSingle(ctx, query, ticketID, domain.ApprovalAwaiting)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (r *approvalRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.ApprovalRecord, error) {
	const query = `
        SELECT id, ticket_id, technician_id, actions, notes, state, decision_note,
               approver_id, submitted_at, decided_at
        FROM approval_records WHERE ticket_id=$1 ORDER BY submitted_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApprovalRecord
	for rows.Next() {
		var record domain.ApprovalRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.TechnicianID,
			&record.Actions,
			&record.Notes,
			&record.State,
			&record.DecisionNote,
			&record.ApproverID,
			&record.SubmittedAt,
			&record.DecidedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *approvalRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.ApprovalRecord, error) {
	var record domain.ApprovalRecord
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&record.ID,
		&record.TicketID,
		&record.TechnicianID,
		&record.Actions,
		&record.Notes,
		&record.State,
		&record.DecisionNote,
		&record.ApproverID,
		&record.SubmittedAt,
		&record.DecidedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
