package repository

import (
	"context"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// AssignmentRepository persists institution-technician bindings.
type AssignmentRepository interface {
	Create(ctx context.Context, relation *domain.AssignmentRelation) error
	// ActiveByInstitution returns active relations ordered by id so the
	// primary-technician tie-break stays deterministic.
	ActiveByInstitution(ctx context.Context, institutionID int64) ([]domain.AssignmentRelation, error)
	ActiveByTechnician(ctx context.Context, technicianID int64) ([]domain.AssignmentRelation, error)
	// DeactivateByInstitution stamps deactivated_at on every active
	// relation for the institution. Relations are never deleted.
	DeactivateByInstitution(ctx context.Context, institutionID int64) error
}

type assignmentRepository struct {
	db DB
}

// NewAssignmentRepository builds a standalone repository.
func NewAssignmentRepository(db DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, relation *domain.AssignmentRelation) error {
	const query = `
        INSERT INTO assignment_relations (institution_id, technician_id, active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		relation.InstitutionID,
		relation.TechnicianID,
		relation.Active,
	).Scan(&relation.ID, &relation.CreatedAt)
}

func (r *assignmentRepository) ActiveByInstitution(ctx context.Context, institutionID int64) ([]domain.AssignmentRelation, error) {
	const query = `
        SELECT id, institution_id, technician_id, active, created_at, deactivated_at
        FROM assignment_relations WHERE institution_id=$1 AND active=TRUE ORDER BY id ASC`
	return r.list(ctx, query, institutionID)
}

func (r *assignmentRepository) ActiveByTechnician(ctx context.Context, technicianID int64) ([]domain.AssignmentRelation, error) {
	const query = `
        SELECT id, institution_id, technician_id, active, created_at, deactivated_at
        FROM assignment_relations WHERE technician_id=$1 AND active=TRUE ORDER BY id ASC`
	return r.list(ctx, query, technicianID)
}

func (r *assignmentRepository) DeactivateByInstitution(ctx context.Context, institutionID int64) error {
	const query = `
        UPDATE assignment_relations SET active=FALSE, deactivated_at=NOW()
        WHERE institution_id=$1 AND active=TRUE`
	_, err := r.db.Exec(ctx, query, institutionID)
	return err
}

func (r *assignmentRepository) list(ctx context.Context, query string, arg any) ([]domain.AssignmentRelation, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentRelation
	for rows.Next() {
		var relation domain.AssignmentRelation
		if err := rows.Scan(
			&relation.ID,
			&relation.InstitutionID,
			&relation.TechnicianID,
			&relation.Active,
			&relation.CreatedAt,
			&relation.DeactivatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, relation)
	}
	return result, rows.Err()
}
