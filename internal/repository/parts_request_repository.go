package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// PartsRequestRepository persists technician draws against the central pool.
type PartsRequestRepository interface {
	Create(ctx context.Context, request *domain.PartsRequest) error
	Update(ctx context.Context, request *domain.PartsRequest) error
	GetByID(ctx context.Context, id int64) (*domain.PartsRequest, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.PartsRequest, error)
	ListByTechnician(ctx context.Context, technicianID int64) ([]domain.PartsRequest, error)
	ListPending(ctx context.Context) ([]domain.PartsRequest, error)
}

type partsRequestRepository struct {
	db DB
}

// NewPartsRequestRepository builds a standalone repository.
func NewPartsRequestRepository(db DB) PartsRequestRepository {
	return &partsRequestRepository{db: db}
}

func (r *partsRequestRepository) Create(ctx context.Context, request *domain.PartsRequest) error {
	const query = `
        INSERT INTO parts_requests (technician_id, part_id, quantity, reason, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		request.TechnicianID,
		request.PartID,
		request.Quantity,
		request.Reason,
		request.Priority,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *partsRequestRepository) Update(ctx context.Context, request *domain.PartsRequest) error {
	const query = `
        UPDATE parts_requests SET status=$1, admin_note=$2, decided_by=$3, decided_at=$4
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		request.Status,
		request.AdminNote,
		request.DecidedBy,
		request.DecidedAt,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *partsRequestRepository) GetByID(ctx context.Context, id int64) (*domain.PartsRequest, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, reason, priority, status, admin_note, decided_by, created_at, decided_at
        FROM parts_requests WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *partsRequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.PartsRequest, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, reason, priority, status, admin_note, decided_by, created_at, decided_at
        FROM parts_requests WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *partsRequestRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.PartsRequest, error) {
	var request domain.PartsRequest
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&request.ID,
		&request.TechnicianID,
		&request.PartID,
		&request.Quantity,
		&request.Reason,
		&request.Priority,
		&request.Status,
		&request.AdminNote,
		&request.DecidedBy,
		&request.CreatedAt,
		&request.DecidedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *partsRequestRepository) ListByTechnician(ctx context.Context, technicianID int64) ([]domain.PartsRequest, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, reason, priority, status, admin_note, decided_by, created_at, decided_at
        FROM parts_requests WHERE technician_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, technicianID)
}

func (r *partsRequestRepository) ListPending(ctx context.Context) ([]domain.PartsRequest, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, reason, priority, status, admin_note, decided_by, created_at, decided_at
        FROM parts_requests WHERE status=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, domain.PartsRequestPending)
}

func (r *partsRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.PartsRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PartsRequest
	for rows.Next() {
		var request domain.PartsRequest
		if err := rows.Scan(
			&request.ID,
			&request.TechnicianID,
			&request.PartID,
			&request.Quantity,
			&request.Reason,
			&request.Priority,
			&request.Status,
			&request.AdminNote,
			&request.DecidedBy,
			&request.CreatedAt,
			&request.DecidedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
