package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// InstitutionRepository is the read surface the assignment resolver needs.
// Institution CRUD lives outside this service.
type InstitutionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Institution, error)
	// GetByOwner returns the institution owned/administered by the user,
	// or nil when the user owns none.
	GetByOwner(ctx context.Context, userID int64) (*domain.Institution, error)
}

type institutionRepository struct {
	db DB
}

// NewInstitutionRepository builds a standalone repository.
func NewInstitutionRepository(db DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

func (r *institutionRepository) GetByID(ctx context.Context, id int64) (*domain.Institution, error) {
	const query = `
        SELECT id, name, owner_user_id, address, created_at, updated_at
        FROM institutions WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *institutionRepository) GetByOwner(ctx context.Context, userID int64) (*domain.Institution, error) {
	const query = `
        SELECT id, name, owner_user_id, address, created_at, updated_at
        FROM institutions WHERE owner_user_id=$1 ORDER BY id LIMIT 1`
	inst, err := r.fetchSingle(ctx, query, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inst, nil
}

func (r *institutionRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Institution, error) {
	var inst domain.Institution
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&inst.ID,
		&inst.Name,
		&inst.OwnerUserID,
		&inst.Address,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &inst, nil
}

// PrinterRepository is the equipment lookup surface.
type PrinterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Printer, error)
	// FirstByOwner returns a printer registered to the user, or nil. It
	// resolves end-users to their institution.
	FirstByOwner(ctx context.Context, userID int64) (*domain.Printer, error)
	ListByInstitution(ctx context.Context, institutionID int64) ([]domain.Printer, error)
}

type printerRepository struct {
	db DB
}

// NewPrinterRepository builds a standalone repository.
func NewPrinterRepository(db DB) PrinterRepository {
	return &printerRepository{db: db}
}

func (r *printerRepository) GetByID(ctx context.Context, id int64) (*domain.Printer, error) {
	const query = `
        SELECT id, institution_id, owner_user_id, model, serial_number, created_at, updated_at
        FROM printers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *printerRepository) FirstByOwner(ctx context.Context, userID int64) (*domain.Printer, error) {
	const query = `
        SELECT id, institution_id, owner_user_id, model, serial_number, created_at, updated_at
        FROM printers WHERE owner_user_id=$1 ORDER BY id LIMIT 1`
	printer, err := r.fetchSingle(ctx, query, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return printer, nil
}

func (r *printerRepository) ListByInstitution(ctx context.Context, institutionID int64) ([]domain.Printer, error) {
	const query = `
        SELECT id, institution_id, owner_user_id, model, serial_number, created_at, updated_at
        FROM printers WHERE institution_id=$1 ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, institutionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Printer
	for rows.Next() {
		var printer domain.Printer
		if err := rows.Scan(
			&printer.ID,
			&printer.InstitutionID,
			&printer.OwnerUserID,
			&printer.Model,
			&printer.SerialNumber,
			&printer.CreatedAt,
			&printer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, printer)
	}
	return result, rows.Err()
}

func (r *printerRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Printer, error) {
	var printer domain.Printer
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&printer.ID,
		&printer.InstitutionID,
		&printer.OwnerUserID,
		&printer.Model,
		&printer.SerialNumber,
		&printer.CreatedAt,
		&printer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &printer, nil
}

// MaintenanceRepository answers the pending-maintenance guard.
type MaintenanceRepository interface {
	HasPendingForPrinter(ctx context.Context, printerID int64) (bool, error)
}

type maintenanceRepository struct {
	db DB
}

// NewMaintenanceRepository builds a standalone repository.
func NewMaintenanceRepository(db DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) HasPendingForPrinter(ctx context.Context, printerID int64) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM maintenance_services WHERE printer_id=$1 AND status=$2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, printerID, domain.MaintenancePending).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
