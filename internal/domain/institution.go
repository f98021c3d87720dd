package domain

import "time"

// Institution is a client site whose equipment is serviced.
type Institution struct {
	ID          int64
	Name        string
	OwnerUserID *int64
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Printer is a serviceable piece of equipment installed at an institution.
// OwnerUserID links the end-user responsible for the device, which is how
// a submitter without direct institution ownership resolves to a site.
type Printer struct {
	ID            int64
	InstitutionID int64
	OwnerUserID   *int64
	Model         string
	SerialNumber  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MaintenanceStatus enumerates scheduled-maintenance states.
type MaintenanceStatus string

const (
	MaintenancePending   MaintenanceStatus = "pending"
	MaintenanceCompleted MaintenanceStatus = "completed"
	MaintenanceCancelled MaintenanceStatus = "cancelled"
)

// MaintenanceService is a scheduled maintenance visit for a printer. A
// pending record blocks new service tickets for the same device.
type MaintenanceService struct {
	ID          int64
	PrinterID   int64
	Status      MaintenanceStatus
	ScheduledAt time.Time
	CreatedAt   time.Time
}
