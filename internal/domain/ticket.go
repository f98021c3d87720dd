package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusPending           TicketStatus = "pending"
	TicketStatusAssigned          TicketStatus = "assigned"
	TicketStatusInProgress        TicketStatus = "in_progress"
	TicketStatusPendingApproval   TicketStatus = "pending_approval"
	TicketStatusCompleted         TicketStatus = "completed"
	TicketStatusCancelled         TicketStatus = "cancelled"
	TicketStatusOnHold            TicketStatus = "on_hold"
	TicketStatusNeedsReassignment TicketStatus = "needs_reassignment"
)

// TicketPriority enumerates service urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// NormalizePriority maps raw priority input to a canonical value.
// "urgent" collapses into high; empty defaults to medium.
func NormalizePriority(raw string) (TicketPriority, error) {
	switch raw {
	case "low":
		return TicketPriorityLow, nil
	case "medium", "":
		return TicketPriorityMedium, nil
	case "high", "urgent":
		return TicketPriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// ServiceTicket is the aggregate for equipment service requests.
type ServiceTicket struct {
	ID             int64
	SequenceNumber string
	InstitutionID  int64
	RequesterID    int64
	PrinterID      int64
	TechnicianID   *int64
	Priority       TicketPriority
	Description    string
	Location       string
	Status         TicketStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	ResolvedAt     *time.Time
}

// FormatSequenceNumber renders the external ticket key: SR-<year>-<6-digit-seq>.
func FormatSequenceNumber(year int, seq int64) string {
	return fmt.Sprintf("SR-%04d-%06d", year, seq)
}

// IsTerminal reports whether the status admits no further transitions.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusPending:           {TicketStatusAssigned, TicketStatusInProgress, TicketStatusOnHold, TicketStatusNeedsReassignment, TicketStatusCancelled},
	TicketStatusAssigned:          {TicketStatusInProgress, TicketStatusPendingApproval, TicketStatusOnHold, TicketStatusNeedsReassignment, TicketStatusCancelled},
	TicketStatusInProgress:        {TicketStatusPendingApproval, TicketStatusOnHold, TicketStatusNeedsReassignment, TicketStatusCancelled},
	TicketStatusOnHold:            {TicketStatusInProgress, TicketStatusPendingApproval, TicketStatusNeedsReassignment, TicketStatusCancelled},
	TicketStatusPendingApproval:   {TicketStatusCompleted, TicketStatusInProgress, TicketStatusCancelled},
	TicketStatusNeedsReassignment: {TicketStatusAssigned, TicketStatusCancelled},
	TicketStatusCompleted:         {},
	TicketStatusCancelled:         {},
}

// CanTransition reports whether current -> next is a legal edge in the
// lifecycle graph. Same-status transitions are never legal; they would
// pollute the audit trail with no-op entries.
func CanTransition(current, next TicketStatus) bool {
	if current == next {
		return false
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
