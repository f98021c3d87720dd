package repository

import (
	"context"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// PartUsageRepository persists declared part usages. Rows exist only while
// a submission is open or after it was accepted; rejected submissions
// delete theirs.
type PartUsageRepository interface {
	Create(ctx context.Context, usage *domain.PartUsageRecord) error
	ListByApproval(ctx context.Context, approvalID int64) ([]domain.PartUsageRecord, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.PartUsageRecord, error)
	DeleteByApproval(ctx context.Context, approvalID int64) error
}

type partUsageRepository struct {
	db DB
}

// NewPartUsageRepository builds a standalone repository.
func NewPartUsageRepository(db DB) PartUsageRepository {
	return &partUsageRepository{db: db}
}

func (r *partUsageRepository) Create(ctx context.Context, usage *domain.PartUsageRecord) error {
	const query = `
        INSERT INTO part_usage_records (approval_id, ticket_id, part_id, brand, quantity, unit, note, technician_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		usage.ApprovalID,
		usage.TicketID,
		usage.PartID,
		usage.Brand,
		usage.Quantity,
		usage.Unit,
		usage.Note,
		usage.TechnicianID,
	).Scan(&usage.ID, &usage.CreatedAt)
}

func (r *partUsageRepository) ListByApproval(ctx context.Context, approvalID int64) ([]domain.PartUsageRecord, error) {
	const query = `
        SELECT id, approval_id, ticket_id, part_id, brand, quantity, unit, note, technician_id, created_at
        FROM part_usage_records WHERE approval_id=$1 ORDER BY id ASC`
	return r.list(ctx, query, approvalID)
}

func (r *partUsageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.PartUsageRecord, error) {
	const query = `
        SELECT id, approval_id, ticket_id, part_id, brand, quantity, unit, note, technician_id, created_at
        FROM part_usage_records WHERE ticket_id=$1 ORDER BY id ASC`
	return r.list(ctx, query, ticketID)
}

func (r *partUsageRepository) DeleteByApproval(ctx context.Context, approvalID int64) error {
	const query = `DELETE FROM part_usage_records WHERE approval_id=$1`
	_, err := r.db.Exec(ctx, query, approvalID)
	return err
}

func (r *partUsageRepository) list(ctx context.Context, query string, arg any) ([]domain.PartUsageRecord, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PartUsageRecord
	for rows.Next() {
		var usage domain.PartUsageRecord
		if err := rows.Scan(
			&usage.ID,
			&usage.ApprovalID,
			&usage.TicketID,
			&usage.PartID,
			&usage.Brand,
			&usage.Quantity,
			&usage.Unit,
			&usage.Note,
			&usage.TechnicianID,
			&usage.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, usage)
	}
	return result, rows.Err()
}
