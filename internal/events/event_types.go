package events

import (
	"time"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStarted        EventType = "ticket_started"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventCompletionSubmitted  EventType = "completion_submitted"
	EventApprovalDecided      EventType = "approval_decided"
	EventPartsRequestCreated  EventType = "parts_request_created"
	EventPartsRequestDecided  EventType = "parts_request_decided"
	EventCentralStockBelowMin EventType = "central_stock_below_minimum"
)

// Event represents a domain event emitted by services. The core never
// constructs notification text; downstream adapters own formatting and
// delivery.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	ActorID   *int64      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload. Technicians carries every technician with
// an active assignment to the institution; PrimaryTechnicianID is the one
// recorded on the ticket.
type TicketCreatedPayload struct {
	SequenceNumber      string                `json:"sequence_number"`
	InstitutionID       int64                 `json:"institution_id"`
	PrinterID           int64                 `json:"printer_id"`
	Priority            domain.TicketPriority `json:"priority"`
	PrimaryTechnicianID int64                 `json:"primary_technician_id"`
	TechnicianIDs       []int64               `json:"technician_ids"`
}

// TicketStatusChangedPayload payload: the canonical opaque shape consumed
// by notification adapters.
type TicketStatusChangedPayload struct {
	PreviousStatus domain.TicketStatus `json:"previous_status"`
	NewStatus      domain.TicketStatus `json:"new_status"`
	Note           string              `json:"note,omitempty"`
}

// TicketStartedPayload payload, emitted at most once per ticket. The
// requester is the notification target.
type TicketStartedPayload struct {
	RequesterID  int64     `json:"requester_id"`
	TechnicianID int64     `json:"technician_id"`
	StartedAt    time.Time `json:"started_at"`
}

// CompletionSubmittedPayload payload. Addressed to the approver role, not
// the requester; the requester hears nothing until acceptance.
type CompletionSubmittedPayload struct {
	ApprovalID   int64 `json:"approval_id"`
	TechnicianID int64 `json:"technician_id"`
	PartCount    int   `json:"part_count"`
}

// ApprovalDecidedPayload payload.
type ApprovalDecidedPayload struct {
	ApprovalID   int64                `json:"approval_id"`
	Decision     domain.ApprovalState `json:"decision"`
	RequesterID  int64                `json:"requester_id"`
	TechnicianID int64                `json:"technician_id"`
	Note         string               `json:"note,omitempty"`
}

// PartsRequestCreatedPayload payload.
type PartsRequestCreatedPayload struct {
	RequestID    int64 `json:"request_id"`
	TechnicianID int64 `json:"technician_id"`
	PartID       int64 `json:"part_id"`
	Quantity     int   `json:"quantity"`
}

// PartsRequestDecidedPayload payload.
type PartsRequestDecidedPayload struct {
	RequestID    int64                     `json:"request_id"`
	TechnicianID int64                     `json:"technician_id"`
	PartID       int64                     `json:"part_id"`
	Quantity     int                       `json:"quantity"`
	Status       domain.PartsRequestStatus `json:"status"`
	Note         string                    `json:"note,omitempty"`
}

// CentralStockBelowMinPayload payload, emitted when a parts-request accept
// leaves the central pool under its minimum threshold.
type CentralStockBelowMinPayload struct {
	PartID    int64 `json:"part_id"`
	Remaining int   `json:"remaining"`
	Minimum   int   `json:"minimum"`
}
