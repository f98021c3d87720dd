package dto

import (
	"time"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	PrinterID   int64  `json:"printer_id"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// TransitionRequest carries a transition note or reason.
type TransitionRequest struct {
	Reason string `json:"reason"`
}

// TicketResponse is the ticket surface returned to every caller.
type TicketResponse struct {
	ID             int64                 `json:"id"`
	SequenceNumber string                `json:"sequence_number"`
	InstitutionID  int64                 `json:"institution_id"`
	RequesterID    int64                 `json:"requester_id"`
	PrinterID      int64                 `json:"printer_id"`
	TechnicianID   *int64                `json:"technician_id"`
	Priority       domain.TicketPriority `json:"priority"`
	Description    string                `json:"description"`
	Location       string                `json:"location"`
	Status         domain.TicketStatus   `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	StartedAt      *time.Time            `json:"started_at"`
	ResolvedAt     *time.Time            `json:"resolved_at"`
}

// TicketDetailResponse adds the audit trail and declared usages.
type TicketDetailResponse struct {
	TicketResponse
	History []TicketHistoryResponse `json:"history"`
	Parts   []PartUsageResponse     `json:"parts"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID             int64               `json:"id"`
	PreviousStatus domain.TicketStatus `json:"previous_status"`
	NewStatus      domain.TicketStatus `json:"new_status"`
	ActorID        *int64              `json:"actor_id"`
	Note           string              `json:"note,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}
