package domain

import "time"

// UserRole enumerates the actors in the service workflow.
type UserRole string

const (
	RoleEndUser     UserRole = "END_USER"
	RoleTechnician  UserRole = "TECHNICIAN"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleAdmin       UserRole = "ADMIN"
)

// User is the domain model for everyone who touches a ticket: institution
// end-users who submit, technicians who resolve, coordinators who approve
// completions and admins who approve parts requests.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
