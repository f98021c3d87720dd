package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/events"
	"github.com/spec-kit/equipment-service/internal/repository"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// applyTransition moves a ticket to the next status, persists it and
// appends the audit entry, all on the caller's store (transaction-bound or
// not). Terminal tickets and illegal edges, including same-status no-ops,
// fail without writing anything.
func applyTransition(ctx context.Context, st repository.Store, ticket *domain.ServiceTicket, next domain.TicketStatus, actorID *int64, note string) error {
	if ticket.Status.IsTerminal() {
		return apperrors.NewTicketClosed(ticket.ID, string(ticket.Status))
	}
	if !domain.CanTransition(ticket.Status, next) {
		return apperrors.NewInvalidTransition(string(ticket.Status), string(next))
	}

	previous := ticket.Status
	ticket.Status = next
	if err := st.Tickets().Update(ctx, ticket); err != nil {
		return err
	}
	return st.History().Create(ctx, &domain.TicketHistoryEntry{
		TicketID:       ticket.ID,
		PreviousStatus: previous,
		NewStatus:      next,
		ActorID:        actorID,
		Note:           note,
	})
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func publishStatusChange(ctx context.Context, dispatcher events.Dispatcher, ticketID int64, actorID *int64, previous, next domain.TicketStatus, note string) {
	publish(ctx, dispatcher, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			PreviousStatus: previous,
			NewStatus:      next,
			Note:           note,
		},
	})
}

func ptrInt64(v int64) *int64 {
	return &v
}
