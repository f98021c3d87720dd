package domain

import "time"

// TicketHistoryEntry is an immutable audit trail entry, appended once per
// status transition.
type TicketHistoryEntry struct {
	ID             int64
	TicketID       int64
	PreviousStatus TicketStatus
	NewStatus      TicketStatus
	ActorID        *int64
	Note           string
	CreatedAt      time.Time
}
