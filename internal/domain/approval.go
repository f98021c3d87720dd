package domain

import "time"

// ApprovalState enumerates decision states for a completion submission.
type ApprovalState string

const (
	ApprovalAwaiting ApprovalState = "awaiting_decision"
	ApprovalAccepted ApprovalState = "accepted"
	ApprovalRejected ApprovalState = "rejected"
)

// ApprovalRecord is the pending decision envelope wrapping a technician's
// completion submission. At most one record per ticket may be in
// awaiting_decision at any time.
type ApprovalRecord struct {
	ID           int64
	TicketID     int64
	TechnicianID int64
	Actions      string
	Notes        string
	State        ApprovalState
	DecisionNote string
	ApproverID   *int64
	SubmittedAt  time.Time
	DecidedAt    *time.Time
}

// Decided reports whether the record already carries a decision.
func (a *ApprovalRecord) Decided() bool {
	return a.State != ApprovalAwaiting
}

// PartUsageRecord declares parts a technician claims to have consumed on a
// ticket. Quantities are advisory until the approval is accepted; rejected
// submissions delete their rows without touching any ledger.
type PartUsageRecord struct {
	ID           int64
	ApprovalID   int64
	TicketID     int64
	PartID       int64
	Brand        *string
	Quantity     int
	Unit         string
	Note         string
	TechnicianID int64
	CreatedAt    time.Time
}
