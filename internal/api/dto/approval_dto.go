package dto

import (
	"time"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// DeclaredPartRequest is one claimed part usage in a submission.
type DeclaredPartRequest struct {
	PartID   int64   `json:"part_id"`
	Brand    *string `json:"brand,omitempty"`
	Quantity int     `json:"quantity"`
	Unit     string  `json:"unit"`
	Note     string  `json:"note,omitempty"`
}

// SubmitCompletionRequest payload.
type SubmitCompletionRequest struct {
	Actions string                `json:"actions"`
	Notes   string                `json:"notes"`
	Parts   []DeclaredPartRequest `json:"parts"`
}

// DecideApprovalRequest payload.
type DecideApprovalRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

// ApprovalResponse is the decision envelope.
type ApprovalResponse struct {
	ID           int64                `json:"id"`
	TicketID     int64                `json:"ticket_id"`
	TechnicianID int64                `json:"technician_id"`
	Actions      string               `json:"actions"`
	Notes        string               `json:"notes,omitempty"`
	State        domain.ApprovalState `json:"state"`
	DecisionNote string               `json:"decision_note,omitempty"`
	ApproverID   *int64               `json:"approver_id"`
	SubmittedAt  time.Time            `json:"submitted_at"`
	DecidedAt    *time.Time           `json:"decided_at"`
}

// PartUsageResponse is one declared usage row.
type PartUsageResponse struct {
	ID       int64   `json:"id"`
	PartID   int64   `json:"part_id"`
	Brand    *string `json:"brand,omitempty"`
	Quantity int     `json:"quantity"`
	Unit     string  `json:"unit"`
	Note     string  `json:"note,omitempty"`
}
