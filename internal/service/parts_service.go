package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/events"
	"github.com/spec-kit/equipment-service/internal/repository"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// PartsService owns the two-phase parts-request flow by which technicians
// pre-stock their pool from the central pool, plus the inventory read
// surfaces. The commit shape mirrors the approval engine: no stock moves
// at request time, and the accept transaction locks and re-checks the
// central row before transferring.
type PartsService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// NewPartsService constructs the service.
func NewPartsService(store repository.Store, dispatcher events.Dispatcher) *PartsService {
	return &PartsService{store: store, dispatcher: dispatcher}
}

// PartsRequestInput describes a technician's draw request.
type PartsRequestInput struct {
	PartID   int64
	Quantity int
	Reason   string
	Priority string
}

// RequestParts records a pending draw against the central pool. No ledger
// row moves until an admin decides.
func (s *PartsService) RequestParts(ctx context.Context, technicianID int64, input PartsRequestInput) (*domain.PartsRequest, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", nil)
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}
	priority, err := domain.NormalizePriority(input.Priority)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if _, err := s.store.Parts().GetByID(ctx, input.PartID); err != nil {
		return nil, apperrors.MapError(err)
	}

	request := &domain.PartsRequest{
		TechnicianID: technicianID,
		PartID:       input.PartID,
		Quantity:     input.Quantity,
		Reason:       reason,
		Priority:     priority,
		Status:       domain.PartsRequestPending,
	}
	if err := s.store.PartsRequests().Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventPartsRequestCreated,
		ActorID: ptrInt64(technicianID),
		Payload: events.PartsRequestCreatedPayload{
			RequestID:    request.ID,
			TechnicianID: technicianID,
			PartID:       request.PartID,
			Quantity:     request.Quantity,
		},
	})
	return request, nil
}

// DecidePartsRequest approves or denies a pending draw. Approval moves the
// quantity central -> technician inside one transaction; both sides commit
// together or neither does.
func (s *PartsService) DecidePartsRequest(ctx context.Context, requestID, adminID int64, approve bool, note string) (*domain.PartsRequest, error) {
	note = strings.TrimSpace(note)

	var (
		request *domain.PartsRequest
		central *domain.CentralInventoryItem
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.PartsRequests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Decided() {
			return apperrors.NewPartsRequestAlreadyDecided(request.ID)
		}

		now := time.Now()
		request.AdminNote = note
		request.DecidedBy = &adminID
		request.DecidedAt = &now

		if !approve {
			request.Status = domain.PartsRequestDenied
			return tx.PartsRequests().Update(ctx, request)
		}

		central, err = tx.CentralInventory().GetByPartForUpdate(ctx, request.PartID)
		if err != nil {
			return err
		}
		if central.Quantity < request.Quantity {
			return apperrors.NewInsufficientCentralStock(request.PartID, central.Quantity, request.Quantity)
		}
		if err := tx.CentralInventory().UpdateQuantity(ctx, central.ID, central.Quantity-request.Quantity); err != nil {
			return err
		}
		if err := tx.TechnicianInventory().AddQuantity(ctx, request.TechnicianID, request.PartID, request.Quantity); err != nil {
			return err
		}
		central.Quantity -= request.Quantity

		request.Status = domain.PartsRequestApproved
		return tx.PartsRequests().Update(ctx, request)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventPartsRequestDecided,
		ActorID: ptrInt64(adminID),
		Payload: events.PartsRequestDecidedPayload{
			RequestID:    request.ID,
			TechnicianID: request.TechnicianID,
			PartID:       request.PartID,
			Quantity:     request.Quantity,
			Status:       request.Status,
			Note:         note,
		},
	})
	if request.Status == domain.PartsRequestApproved && central != nil && central.BelowMinimum() {
		publish(ctx, s.dispatcher, events.Event{
			Type:    events.EventCentralStockBelowMin,
			ActorID: ptrInt64(adminID),
			Payload: events.CentralStockBelowMinPayload{
				PartID:    central.PartID,
				Remaining: central.Quantity,
				Minimum:   central.MinimumStock,
			},
		})
	}
	return request, nil
}

// ListPendingRequests returns undecided draws for the admin queue.
func (s *PartsService) ListPendingRequests(ctx context.Context) ([]domain.PartsRequest, error) {
	requests, err := s.store.PartsRequests().ListPending(ctx)
	return requests, apperrors.MapError(err)
}

// ListTechnicianRequests returns a technician's own draw history.
func (s *PartsService) ListTechnicianRequests(ctx context.Context, technicianID int64) ([]domain.PartsRequest, error) {
	requests, err := s.store.PartsRequests().ListByTechnician(ctx, technicianID)
	return requests, apperrors.MapError(err)
}

// CentralStock returns the central pool.
func (s *PartsService) CentralStock(ctx context.Context) ([]domain.CentralInventoryItem, error) {
	items, err := s.store.CentralInventory().List(ctx)
	return items, apperrors.MapError(err)
}

// TechnicianStock returns a technician's pool.
func (s *PartsService) TechnicianStock(ctx context.Context, technicianID int64) ([]domain.TechnicianInventoryEntry, error) {
	entries, err := s.store.TechnicianInventory().ListByTechnician(ctx, technicianID)
	return entries, apperrors.MapError(err)
}

// PartsCatalog returns the part definitions.
func (s *PartsService) PartsCatalog(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.store.Parts().List(ctx)
	return parts, apperrors.MapError(err)
}
