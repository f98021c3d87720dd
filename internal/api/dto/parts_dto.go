package dto

import (
	"time"

	"github.com/spec-kit/equipment-service/internal/domain"
)

// RequestPartsRequest payload.
type RequestPartsRequest struct {
	PartID   int64  `json:"part_id"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// DecidePartsRequestRequest payload.
type DecidePartsRequestRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

// PartsRequestResponse is a draw against the central pool.
type PartsRequestResponse struct {
	ID           int64                     `json:"id"`
	TechnicianID int64                     `json:"technician_id"`
	PartID       int64                     `json:"part_id"`
	Quantity     int                       `json:"quantity"`
	Reason       string                    `json:"reason"`
	Priority     domain.TicketPriority     `json:"priority"`
	Status       domain.PartsRequestStatus `json:"status"`
	AdminNote    string                    `json:"admin_note,omitempty"`
	DecidedBy    *int64                    `json:"decided_by"`
	CreatedAt    time.Time                 `json:"created_at"`
	DecidedAt    *time.Time                `json:"decided_at"`
}

// CentralStockResponse is one central pool row.
type CentralStockResponse struct {
	PartID       int64 `json:"part_id"`
	Quantity     int   `json:"quantity"`
	MinimumStock int   `json:"minimum_stock"`
	BelowMinimum bool  `json:"below_minimum"`
}

// TechnicianStockResponse is one technician pool row.
type TechnicianStockResponse struct {
	PartID   int64 `json:"part_id"`
	Quantity int   `json:"quantity"`
}

// PartResponse is a catalog entry.
type PartResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Unit string `json:"unit"`
}
