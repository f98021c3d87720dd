package service

import (
	"context"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/repository"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// AssignmentService resolves which institution a submitter belongs to and
// which technicians cover it, and manages the active relation when an
// institution is handed to a different technician.
type AssignmentService struct {
	store repository.Store
}

// NewAssignmentService creates the service.
func NewAssignmentService(store repository.Store) *AssignmentService {
	return &AssignmentService{store: store}
}

// ResolveInstitution derives the institution a submitter acts for:
// institution ownership wins, otherwise the institution of a printer
// registered to the user.
func (s *AssignmentService) ResolveInstitution(ctx context.Context, submitterID int64) (int64, error) {
	inst, err := s.store.Institutions().GetByOwner(ctx, submitterID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if inst != nil {
		return inst.ID, nil
	}

	printer, err := s.store.Printers().FirstByOwner(ctx, submitterID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if printer != nil {
		return printer.InstitutionID, nil
	}
	return 0, apperrors.NewValidationError("submitter is not linked to any institution",
		map[string]any{"submitter_id": submitterID})
}

// ActiveTechnicians returns every technician with an active relation to the
// institution, ordered by relation id. The first entry is the primary
// assignee; an empty result is a NoTechnicianAssigned failure.
func (s *AssignmentService) ActiveTechnicians(ctx context.Context, institutionID int64) ([]domain.AssignmentRelation, error) {
	relations, err := s.store.Assignments().ActiveByInstitution(ctx, institutionID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(relations) == 0 {
		return nil, apperrors.NewNoTechnicianAssigned(institutionID)
	}
	return relations, nil
}

// Reassign deactivates the institution's current relations and binds a new
// technician. Old relations keep their rows for the audit trail.
func (s *AssignmentService) Reassign(ctx context.Context, institutionID, technicianID int64) (*domain.AssignmentRelation, error) {
	technician, err := s.store.Users().GetByID(ctx, technicianID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if technician.Role != domain.RoleTechnician || !technician.Active {
		return nil, apperrors.NewValidationError("assignee must be an active technician",
			map[string]any{"technician_id": technicianID})
	}

	relation := &domain.AssignmentRelation{
		InstitutionID: institutionID,
		TechnicianID:  technicianID,
		Active:        true,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Assignments().DeactivateByInstitution(ctx, institutionID); err != nil {
			return err
		}
		return tx.Assignments().Create(ctx, relation)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return relation, nil
}
