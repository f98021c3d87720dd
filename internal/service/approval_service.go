package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/events"
	"github.com/spec-kit/equipment-service/internal/repository"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// Decision is an approver's verdict on a completion submission.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision converts a raw verdict string.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", apperrors.NewValidationError("decision must be accept or reject",
			map[string]any{"decision": raw})
	}
}

// ApprovalService commits or discards a completion submission. The accept
// path is the only place a ticket consumes technician stock; it re-reads
// every pool row under the transaction with a row lock, because the
// submission-time check may be stale by decision time.
type ApprovalService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewApprovalService constructs the service.
func NewApprovalService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{store: store, dispatcher: dispatcher, logger: logger}
}

// DecideApproval applies an accept or reject decision to an open approval
// record. Re-deciding fails with ApprovalAlreadyDecided and mutates
// nothing.
func (s *ApprovalService) DecideApproval(ctx context.Context, approvalID, approverID int64, decision Decision, note string) (*domain.ServiceTicket, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, apperrors.NewValidationError("decision must be accept or reject",
			map[string]any{"decision": string(decision)})
	}
	note = strings.TrimSpace(note)

	var (
		ticket   *domain.ServiceTicket
		record   *domain.ApprovalRecord
		previous domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		record, err = tx.Approvals().GetByIDForUpdate(ctx, approvalID)
		if err != nil {
			return err
		}
		if record.Decided() {
			return apperrors.NewApprovalAlreadyDecided(record.ID)
		}
		ticket, err = tx.Tickets().GetByIDForUpdate(ctx, record.TicketID)
		if err != nil {
			return err
		}
		previous = ticket.Status

		if decision == DecisionAccept {
			return s.accept(ctx, tx, record, ticket, approverID, note)
		}
		return s.reject(ctx, tx, record, ticket, approverID, note)
	})
	if err != nil {
		if apperrors.CodeOf(err) == "INVENTORY_CONSISTENCY_VIOLATION" {
			// The advisory pre-check was raced. Nothing was committed;
			// the ticket stays pending_approval for retry.
			s.logger.Error("inventory consistency violation on approval accept",
				zap.Int64("approval_id", approvalID),
				zap.Error(err))
		}
		return nil, apperrors.MapError(err)
	}

	transitionNote := "approval_accepted"
	if decision == DecisionReject {
		transitionNote = "approval_rejected"
	}
	publishStatusChange(ctx, s.dispatcher, ticket.ID, ptrInt64(approverID), previous, ticket.Status, transitionNote)

	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventApprovalDecided,
		TicketID: ticket.ID,
		ActorID:  ptrInt64(approverID),
		Payload: events.ApprovalDecidedPayload{
			ApprovalID:   record.ID,
			Decision:     record.State,
			RequesterID:  ticket.RequesterID,
			TechnicianID: record.TechnicianID,
			Note:         note,
		},
	})
	return ticket, nil
}

// accept commits the declared usage: every technician pool row is locked,
// re-checked and decremented. A single would-go-negative row aborts the
// whole transaction.
func (s *ApprovalService) accept(ctx context.Context, tx repository.Store, record *domain.ApprovalRecord, ticket *domain.ServiceTicket, approverID int64, note string) error {
	usages, err := tx.PartUsages().ListByApproval(ctx, record.ID)
	if err != nil {
		return err
	}
	for _, usage := range usages {
		entry, err := tx.TechnicianInventory().GetByTechnicianAndPartForUpdate(ctx, record.TechnicianID, usage.PartID)
		if err != nil {
			return err
		}
		available := 0
		if entry != nil {
			available = entry.Quantity
		}
		if available < usage.Quantity {
			return apperrors.NewInventoryConsistencyViolation(usage.PartID, record.TechnicianID, available, usage.Quantity)
		}
		if err := tx.TechnicianInventory().UpdateQuantity(ctx, entry.ID, available-usage.Quantity); err != nil {
			return err
		}
	}

	now := time.Now()
	record.State = domain.ApprovalAccepted
	record.DecisionNote = note
	record.ApproverID = &approverID
	record.DecidedAt = &now
	if err := tx.Approvals().Update(ctx, record); err != nil {
		return err
	}

	ticket.ResolvedAt = &now
	return applyTransition(ctx, tx, ticket, domain.TicketStatusCompleted, ptrInt64(approverID), "approval_accepted")
}

// reject discards the declared usage. The rows were never committed to
// any ledger, so deleting them restores the pre-submission world exactly.
func (s *ApprovalService) reject(ctx context.Context, tx repository.Store, record *domain.ApprovalRecord, ticket *domain.ServiceTicket, approverID int64, note string) error {
	if err := tx.PartUsages().DeleteByApproval(ctx, record.ID); err != nil {
		return err
	}

	now := time.Now()
	record.State = domain.ApprovalRejected
	record.DecisionNote = note
	record.ApproverID = &approverID
	record.DecidedAt = &now
	if err := tx.Approvals().Update(ctx, record); err != nil {
		return err
	}

	return applyTransition(ctx, tx, ticket, domain.TicketStatusInProgress, ptrInt64(approverID), "approval_rejected")
}

// GetApproval returns an approval record with its declared usages.
func (s *ApprovalService) GetApproval(ctx context.Context, approvalID int64) (*domain.ApprovalRecord, []domain.PartUsageRecord, error) {
	record, err := s.store.Approvals().GetByID(ctx, approvalID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	usages, err := s.store.PartUsages().ListByApproval(ctx, approvalID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return record, usages, nil
}
