package repository

import (
	"context"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// PartRepository is the read surface over the parts catalog. Catalog
// maintenance lives outside this service.
type PartRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Part, error)
	List(ctx context.Context) ([]domain.Part, error)
}

type partRepository struct {
	db DB
}

// NewPartRepository builds a standalone repository.
func NewPartRepository(db DB) PartRepository {
	return &partRepository{db: db}
}

func (r *partRepository) GetByID(ctx context.Context, id int64) (*domain.Part, error) {
	const query = `
        SELECT id, name, code, unit, created_at, updated_at
        FROM parts WHERE id=$1`
	var part domain.Part
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&part.ID,
		&part.Name,
		&part.Code,
		&part.Unit,
		&part.CreatedAt,
		&part.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) List(ctx context.Context) ([]domain.Part, error) {
	const query = `
        SELECT id, name, code, unit, created_at, updated_at
        FROM parts ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Part
	for rows.Next() {
		var part domain.Part
		if err := rows.Scan(&part.ID, &part.Name, &part.Code, &part.Unit, &part.CreatedAt, &part.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, part)
	}
	return result, rows.Err()
}
