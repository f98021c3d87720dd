package domain

import "time"

// PartsRequestStatus enumerates the two-phase parts-request states.
type PartsRequestStatus string

const (
	PartsRequestPending  PartsRequestStatus = "pending"
	PartsRequestApproved PartsRequestStatus = "approved"
	PartsRequestDenied   PartsRequestStatus = "denied"
)

// PartsRequest is a technician's draw against the central pool. No stock
// moves until an admin approves; approval transfers the quantity from the
// central pool into the technician's pool in a single transaction.
type PartsRequest struct {
	ID           int64
	TechnicianID int64
	PartID       int64
	Quantity     int
	Reason       string
	Priority     TicketPriority
	Status       PartsRequestStatus
	AdminNote    string
	DecidedBy    *int64
	CreatedAt    time.Time
	DecidedAt    *time.Time
}

// Decided reports whether the request already carries a decision.
func (p *PartsRequest) Decided() bool {
	return p.Status != PartsRequestPending
}
