package domain

import "time"

// Part is a consumable or spare-part definition in the catalog.
type Part struct {
	ID        int64
	Name      string
	Code      string
	Unit      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CentralInventoryItem is the shared stock pool row for a part. Only the
// parts-request commit path decrements it.
type CentralInventoryItem struct {
	ID           int64
	PartID       int64
	Quantity     int
	MinimumStock int
	UpdatedAt    time.Time
}

// BelowMinimum reports whether on-hand stock has dropped under the
// configured threshold.
func (c *CentralInventoryItem) BelowMinimum() bool {
	return c.Quantity < c.MinimumStock
}

// TechnicianInventoryEntry is a technician's personally held stock of a
// part, drawn from the central pool via an approved parts request and
// consumed by accepted completion submissions. Quantity never goes
// negative; both mutation paths re-check under their transaction.
type TechnicianInventoryEntry struct {
	ID           int64
	TechnicianID int64
	PartID       int64
	Quantity     int
	UpdatedAt    time.Time
}
