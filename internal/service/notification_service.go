package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/equipment-service/internal/config"
	"github.com/spec-kit/equipment-service/internal/events"
)

// NotificationService is the delivery adapter for domain events. The core
// emits opaque events; targeting and formatting live here. Created-ticket
// events fan out to every assigned technician, completion submissions go
// to the coordinator role only, and requesters hear about their ticket
// only on start and on accepted completion.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStarted, n.handleTicketStarted)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventCompletionSubmitted, n.handleCompletionSubmitted)
	n.dispatcher.Subscribe(events.EventApprovalDecided, n.handleApprovalDecided)
	n.dispatcher.Subscribe(events.EventPartsRequestCreated, n.handlePartsRequestCreated)
	n.dispatcher.Subscribe(events.EventPartsRequestDecided, n.handlePartsRequestDecided)
	n.dispatcher.Subscribe(events.EventCentralStockBelowMin, n.handleStockBelowMin)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	// Fan out to every technician covering the institution; the primary
	// is the one recorded on the ticket.
	n.logger.Info("notify: ticket created",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("sequence_number", payload.SequenceNumber),
		zap.Int64s("technician_ids", payload.TechnicianIDs))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStarted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStartedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("notify: service started",
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("requester_id", payload.RequesterID))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("notify: ticket status changed",
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCompletionSubmitted(ctx context.Context, event events.Event) error {
	// Coordinator role only. The requester must not see a premature
	// "resolved" signal.
	n.logger.Info("notify: completion awaiting approval",
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApprovalDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApprovalDecidedPayload)
	if !ok {
		return nil
	}
	// Accept notifies the requester the work is done; reject goes back to
	// the technician with the reason.
	n.logger.Info("notify: approval decided",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("decision", string(payload.Decision)),
		zap.Int64("requester_id", payload.RequesterID),
		zap.Int64("technician_id", payload.TechnicianID))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePartsRequestCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("notify: parts request created", zap.Any("payload", event.Payload))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePartsRequestDecided(ctx context.Context, event events.Event) error {
	n.logger.Info("notify: parts request decided", zap.Any("payload", event.Payload))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStockBelowMin(ctx context.Context, event events.Event) error {
	n.logger.Warn("notify: central stock below minimum", zap.Any("payload", event.Payload))
	n.deliverStub(ctx, event)
	return nil
}

func (n *NotificationService) deliverStub(_ context.Context, event events.Event) {
	if n.cfg.WebhookURL == "" && n.cfg.EmailFrom == "" {
		return
	}
	n.logger.Debug("notification delivery stub",
		zap.String("event_type", string(event.Type)),
		zap.String("webhook_url", n.cfg.WebhookURL),
		zap.String("email_from", n.cfg.EmailFrom))
}
