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

// TicketService owns the service-ticket lifecycle: creation with the
// duplicate/maintenance guards and assignment resolution, and every status
// transition outside the completion-approval flow.
type TicketService struct {
	store      repository.Store
	resolver   *AssignmentService
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Resolver   *AssignmentService
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	PrinterID   int64
	Priority    string
	Description string
	Location    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:      deps.Store,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket validates the submission, resolves the responsible
// technicians and creates the ticket with its per-year sequence number.
// The counter increment and the insert share one transaction so sequence
// numbers never repeat under concurrent creation.
func (s *TicketService) CreateTicket(ctx context.Context, submitterID int64, input TicketCreateInput) (*domain.ServiceTicket, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	priority, err := domain.NormalizePriority(input.Priority)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	institutionID, err := s.resolver.ResolveInstitution(ctx, submitterID)
	if err != nil {
		return nil, err
	}

	printer, err := s.store.Printers().GetByID(ctx, input.PrinterID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if printer.InstitutionID != institutionID {
		return nil, apperrors.NewValidationError("equipment does not belong to the submitter's institution",
			map[string]any{"printer_id": printer.ID, "institution_id": institutionID})
	}

	if existing, err := s.store.Tickets().FindActiveByPrinter(ctx, printer.ID); err != nil {
		return nil, apperrors.MapError(err)
	} else if existing != nil {
		return nil, apperrors.NewDuplicateActiveTicket(printer.ID, existing.SequenceNumber)
	}

	if pending, err := s.store.Maintenance().HasPendingForPrinter(ctx, printer.ID); err != nil {
		return nil, apperrors.MapError(err)
	} else if pending {
		return nil, apperrors.NewPendingMaintenanceBlocks(printer.ID)
	}

	relations, err := s.resolver.ActiveTechnicians(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	primary := relations[0].TechnicianID
	technicianIDs := make([]int64, 0, len(relations))
	for _, rel := range relations {
		technicianIDs = append(technicianIDs, rel.TechnicianID)
	}

	ticket := &domain.ServiceTicket{
		InstitutionID: institutionID,
		RequesterID:   submitterID,
		PrinterID:     printer.ID,
		TechnicianID:  &primary,
		Priority:      priority,
		Description:   description,
		Location:      strings.TrimSpace(input.Location),
		Status:        domain.TicketStatusPending,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		seq, err := tx.Tickets().NextSequence(ctx, time.Now().UTC().Year())
		if err != nil {
			return err
		}
		ticket.SequenceNumber = domain.FormatSequenceNumber(time.Now().UTC().Year(), seq)
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		return applyTransition(ctx, tx, ticket, domain.TicketStatusAssigned, nil, "auto_assigned")
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publishStatusChange(ctx, s.dispatcher, ticket.ID, nil, domain.TicketStatusPending, ticket.Status, "auto_assigned")
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  ptrInt64(submitterID),
		Payload: events.TicketCreatedPayload{
			SequenceNumber:      ticket.SequenceNumber,
			InstitutionID:       institutionID,
			PrinterID:           printer.ID,
			Priority:            priority,
			PrimaryTechnicianID: primary,
			TechnicianIDs:       technicianIDs,
		},
	})
	return ticket, nil
}

// StartService moves the ticket to in_progress for its assigned
// technician. The started_at stamp and the started notification both fire
// at most once per ticket, surviving hold/resume round trips.
func (s *TicketService) StartService(ctx context.Context, ticketID, technicianID int64) (*domain.ServiceTicket, error) {
	var (
		ticket   *domain.ServiceTicket
		previous domain.TicketStatus
		started  bool
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status.IsTerminal() {
			return apperrors.NewTicketClosed(ticket.ID, string(ticket.Status))
		}
		if ticket.TechnicianID == nil || *ticket.TechnicianID != technicianID {
			return apperrors.NewNotAssignedTechnician(ticket.ID, technicianID)
		}
		if ticket.StartedAt == nil {
			now := time.Now()
			ticket.StartedAt = &now
			started = true
		}
		previous = ticket.Status
		return applyTransition(ctx, tx, ticket, domain.TicketStatusInProgress, ptrInt64(technicianID), "service_started")
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publishStatusChange(ctx, s.dispatcher, ticket.ID, ptrInt64(technicianID), previous, ticket.Status, "service_started")
	if started {
		publish(ctx, s.dispatcher, events.Event{
			Type:     events.EventTicketStarted,
			TicketID: ticket.ID,
			ActorID:  ptrInt64(technicianID),
			Payload: events.TicketStartedPayload{
				RequesterID:  ticket.RequesterID,
				TechnicianID: technicianID,
				StartedAt:    *ticket.StartedAt,
			},
		})
	}
	return ticket, nil
}

// PlaceOnHold pauses an in-flight ticket.
func (s *TicketService) PlaceOnHold(ctx context.Context, ticketID, technicianID int64, reason string) (*domain.ServiceTicket, error) {
	return s.technicianTransition(ctx, ticketID, technicianID, domain.TicketStatusOnHold, reason)
}

// Resume returns an on-hold ticket to in_progress.
func (s *TicketService) Resume(ctx context.Context, ticketID, technicianID int64) (*domain.ServiceTicket, error) {
	return s.technicianTransition(ctx, ticketID, technicianID, domain.TicketStatusInProgress, "resumed")
}

// RequestReassignment flags the ticket for a different technician. The
// reason is mandatory and lands in the audit trail.
func (s *TicketService) RequestReassignment(ctx context.Context, ticketID, technicianID int64, reason string) (*domain.ServiceTicket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reassignment reason required", nil)
	}
	return s.technicianTransition(ctx, ticketID, technicianID, domain.TicketStatusNeedsReassignment, reason)
}

// Cancel aborts a non-terminal ticket. Allowed for the requester or any
// staff actor; the approval decision transaction holds the row lock, so a
// cancel cannot interleave with an in-flight decision.
func (s *TicketService) Cancel(ctx context.Context, ticketID int64, actorID int64, reason string) (*domain.ServiceTicket, error) {
	var (
		ticket   *domain.ServiceTicket
		previous domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		previous = ticket.Status
		return applyTransition(ctx, tx, ticket, domain.TicketStatusCancelled, ptrInt64(actorID), reason)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	publishStatusChange(ctx, s.dispatcher, ticket.ID, ptrInt64(actorID), previous, ticket.Status, reason)
	return ticket, nil
}

func (s *TicketService) technicianTransition(ctx context.Context, ticketID, technicianID int64, next domain.TicketStatus, note string) (*domain.ServiceTicket, error) {
	var (
		ticket   *domain.ServiceTicket
		previous domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status.IsTerminal() {
			return apperrors.NewTicketClosed(ticket.ID, string(ticket.Status))
		}
		if ticket.TechnicianID == nil || *ticket.TechnicianID != technicianID {
			return apperrors.NewNotAssignedTechnician(ticket.ID, technicianID)
		}
		previous = ticket.Status
		return applyTransition(ctx, tx, ticket, next, ptrInt64(technicianID), note)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	publishStatusChange(ctx, s.dispatcher, ticket.ID, ptrInt64(technicianID), previous, ticket.Status, note)
	return ticket, nil
}

// GetTicket returns the ticket with its audit trail and declared usages.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.ServiceTicket, []domain.TicketHistoryEntry, []domain.PartUsageRecord, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	history, err := s.store.History().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	usages, err := s.store.PartUsages().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, history, usages, nil
}

// ListForRequester returns the submitter's tickets.
func (s *TicketService) ListForRequester(ctx context.Context, requesterID int64, limit, offset int) ([]domain.ServiceTicket, error) {
	tickets, err := s.store.Tickets().ListWithFilter(ctx, repository.TicketFilter{
		RequesterID: &requesterID,
		Limit:       limit,
		Offset:      offset,
	})
	return tickets, apperrors.MapError(err)
}

// ListForTechnician returns tickets assigned to the technician.
func (s *TicketService) ListForTechnician(ctx context.Context, technicianID int64, statuses []domain.TicketStatus, limit, offset int) ([]domain.ServiceTicket, error) {
	tickets, err := s.store.Tickets().ListWithFilter(ctx, repository.TicketFilter{
		TechnicianID: &technicianID,
		Statuses:     statuses,
		Limit:        limit,
		Offset:       offset,
	})
	return tickets, apperrors.MapError(err)
}
