package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// CentralInventoryRepository persists the shared stock pool.
type CentralInventoryRepository interface {
	GetByPart(ctx context.Context, partID int64) (*domain.CentralInventoryItem, error)
	// GetByPartForUpdate locks the row for the duration of the enclosing
	// transaction. Commit paths must use it before mutating.
	GetByPartForUpdate(ctx context.Context, partID int64) (*domain.CentralInventoryItem, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	List(ctx context.Context) ([]domain.CentralInventoryItem, error)
}

type centralInventoryRepository struct {
	db DB
}

// NewCentralInventoryRepository builds a standalone repository.
func NewCentralInventoryRepository(db DB) CentralInventoryRepository {
	return &centralInventoryRepository{db: db}
}

func (r *centralInventoryRepository) GetByPart(ctx context.Context, partID int64) (*domain.CentralInventoryItem, error) {
	const query = `
        SELECT id, part_id, quantity, minimum_stock, updated_at
        FROM central_inventory WHERE part_id=$1`
	return r.fetchSingle(ctx, query, partID)
}

func (r *centralInventoryRepository) GetByPartForUpdate(ctx context.Context, partID int64) (*domain.CentralInventoryItem, error) {
	const query = `
        SELECT id, part_id, quantity, minimum_stock, updated_at
        FROM central_inventory WHERE part_id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, partID)
}

func (r *centralInventoryRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	const query = `UPDATE central_inventory SET quantity=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *centralInventoryRepository) List(ctx context.Context) ([]domain.CentralInventoryItem, error) {
	const query = `
        SELECT id, part_id, quantity, minimum_stock, updated_at
        FROM central_inventory ORDER BY part_id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CentralInventoryItem
	for rows.Next() {
		var item domain.CentralInventoryItem
		if err := rows.Scan(&item.ID, &item.PartID, &item.Quantity, &item.MinimumStock, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *centralInventoryRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.CentralInventoryItem, error) {
	var item domain.CentralInventoryItem
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&item.ID,
		&item.PartID,
		&item.Quantity,
		&item.MinimumStock,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

// TechnicianInventoryRepository persists per-technician stock pools.
type TechnicianInventoryRepository interface {
	// GetByTechnicianAndPart returns the pool row, or nil when the
	// technician has never held the part.
	GetByTechnicianAndPart(ctx context.Context, technicianID, partID int64) (*domain.TechnicianInventoryEntry, error)
	GetByTechnicianAndPartForUpdate(ctx context.Context, technicianID, partID int64) (*domain.TechnicianInventoryEntry, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	// AddQuantity upserts the pool row, creating it on first receipt.
	AddQuantity(ctx context.Context, technicianID, partID int64, delta int) error
	ListByTechnician(ctx context.Context, technicianID int64) ([]domain.TechnicianInventoryEntry, error)
}

type technicianInventoryRepository struct {
	db DB
}

// NewTechnicianInventoryRepository builds a standalone repository.
func NewTechnicianInventoryRepository(db DB) TechnicianInventoryRepository {
	return &technicianInventoryRepository{db: db}
}

func (r *technicianInventoryRepository) GetByTechnicianAndPart(ctx context.Context, technicianID, partID int64) (*domain.TechnicianInventoryEntry, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, updated_at
        FROM technician_inventory WHERE technician_id=$1 AND part_id=$2`
	return r.fetchSingle(ctx, query, technicianID, partID)
}

func (r *technicianInventoryRepository) GetByTechnicianAndPartForUpdate(ctx context.Context, technicianID, partID int64) (*domain.TechnicianInventoryEntry, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, updated_at
        FROM technician_inventory WHERE technician_id=$1 AND part_id=$2 FOR UPDATE`
	return r.fetchSingle(ctx, query, technicianID, partID)
}

func (r *technicianInventoryRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.TechnicianInventoryEntry, error) {
	var entry domain.TechnicianInventoryEntry
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&entry.ID,
		&entry.TechnicianID,
		&entry.PartID,
		&entry.Quantity,
		&entry.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *technicianInventoryRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	const query = `UPDATE technician_inventory SET quantity=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianInventoryRepository) AddQuantity(ctx context.Context, technicianID, partID int64, delta int) error {
	const query = `
        INSERT INTO technician_inventory (technician_id, part_id, quantity)
        VALUES ($1,$2,$3)
        ON CONFLICT (technician_id, part_id)
        DO UPDATE SET quantity = technician_inventory.quantity + $3, updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, technicianID, partID, delta)
	return err
}

func (r *technicianInventoryRepository) ListByTechnician(ctx context.Context, technicianID int64) ([]domain.TechnicianInventoryEntry, error) {
	const query = `
        SELECT id, technician_id, part_id, quantity, updated_at
        FROM technician_inventory WHERE technician_id=$1 ORDER BY part_id ASC`
	rows, err := r.db.Query(ctx, query, technicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TechnicianInventoryEntry
	for rows.Next() {
		var entry domain.TechnicianInventoryEntry
		if err := rows.Scan(&entry.ID, &entry.TechnicianID, &entry.PartID, &entry.Quantity, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
