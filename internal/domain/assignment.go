package domain

import "time"

// AssignmentRelation binds a technician to an institution's tickets.
// Relations are deactivated on reassignment, never deleted, so the audit
// trail of who covered which site survives.
type AssignmentRelation struct {
	ID            int64
	InstitutionID int64
	TechnicianID  int64
	Active        bool
	CreatedAt     time.Time
	DeactivatedAt *time.Time
}
