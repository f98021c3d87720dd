package service

import (
	"context"
	"strings"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/events"
	"github.com/spec-kit/equipment-service/internal/repository"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// CompletionService handles a technician's completion submission: it
// validates declared parts against the technician's own pool, records the
// usage intent and opens the approval record. No ledger row moves here;
// the check is advisory and the actual decrement waits for the approval
// engine.
type CompletionService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// NewCompletionService constructs the service.
func NewCompletionService(store repository.Store, dispatcher events.Dispatcher) *CompletionService {
	return &CompletionService{store: store, dispatcher: dispatcher}
}

// DeclaredPart is one claimed part usage in a submission.
type DeclaredPart struct {
	PartID   int64
	Brand    *string
	Quantity int
	Unit     string
	Note     string
}

// CompletionInput describes a submission payload. An empty Parts list is
// legitimate; a repair can consume nothing.
type CompletionInput struct {
	Actions string
	Notes   string
	Parts   []DeclaredPart
}

// SubmitCompletion validates and persists the submission, moving the
// ticket to pending_approval. All-or-nothing: the first insufficient part
// aborts before any row is written.
func (s *CompletionService) SubmitCompletion(ctx context.Context, ticketID, technicianID int64, input CompletionInput) (*domain.ApprovalRecord, error) {
	actions := strings.TrimSpace(input.Actions)
	if actions == "" {
		return nil, apperrors.NewValidationError("actions narrative required", nil)
	}
	for _, part := range input.Parts {
		if part.Quantity <= 0 {
			return nil, apperrors.NewValidationError("declared quantity must be positive",
				map[string]any{"part_id": part.PartID})
		}
	}

	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewTicketClosed(ticket.ID, string(ticket.Status))
	}
	if ticket.TechnicianID == nil || *ticket.TechnicianID != technicianID {
		return nil, apperrors.NewNotAssignedTechnician(ticket.ID, technicianID)
	}
	if ticket.Status == domain.TicketStatusPendingApproval {
		return nil, apperrors.NewApprovalAlreadyOpen(ticket.ID)
	}

	// Advisory sufficiency check against the technician's own pool.
	// Duplicate lines for the same part count together, so a split
	// declaration cannot slip past the check. The transactional re-check
	// at accept time is the real safety boundary.
	requested := make(map[int64]int, len(input.Parts))
	partOrder := make([]int64, 0, len(input.Parts))
	for _, part := range input.Parts {
		if _, seen := requested[part.PartID]; !seen {
			partOrder = append(partOrder, part.PartID)
		}
		requested[part.PartID] += part.Quantity
	}
	for _, partID := range partOrder {
		entry, err := s.store.TechnicianInventory().GetByTechnicianAndPart(ctx, technicianID, partID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		available := 0
		if entry != nil {
			available = entry.Quantity
		}
		if available < requested[partID] {
			return nil, apperrors.NewInsufficientTechnicianStock(partID, available, requested[partID])
		}
	}

	record := &domain.ApprovalRecord{
		TicketID:     ticket.ID,
		TechnicianID: technicianID,
		Actions:      actions,
		Notes:        strings.TrimSpace(input.Notes),
		State:        domain.ApprovalAwaiting,
	}

	var previous domain.TicketStatus
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Tickets().GetByIDForUpdate(ctx, ticket.ID)
		if err != nil {
			return err
		}
		previous = locked.Status
		if open, err := tx.Approvals().OpenByTicket(ctx, locked.ID); err != nil {
			return err
		} else if open != nil {
			return apperrors.NewApprovalAlreadyOpen(locked.ID)
		}
		if err := tx.Approvals().Create(ctx, record); err != nil {
			return err
		}
		for _, part := range input.Parts {
			usage := &domain.PartUsageRecord{
				ApprovalID:   record.ID,
				TicketID:     locked.ID,
				PartID:       part.PartID,
				Brand:        part.Brand,
				Quantity:     part.Quantity,
				Unit:         part.Unit,
				Note:         part.Note,
				TechnicianID: technicianID,
			}
			if err := tx.PartUsages().Create(ctx, usage); err != nil {
				return err
			}
		}
		if err := applyTransition(ctx, tx, locked, domain.TicketStatusPendingApproval, ptrInt64(technicianID), "completion_submitted"); err != nil {
			return err
		}
		*ticket = *locked
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publishStatusChange(ctx, s.dispatcher, ticket.ID, ptrInt64(technicianID), previous, ticket.Status, "completion_submitted")

	// Only the approver role hears about this; the requester is notified
	// after acceptance, never on submission.
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventCompletionSubmitted,
		TicketID: ticket.ID,
		ActorID:  ptrInt64(technicianID),
		Payload: events.CompletionSubmittedPayload{
			ApprovalID:   record.ID,
			TechnicianID: technicianID,
			PartCount:    len(input.Parts),
		},
	})
	return record, nil
}
