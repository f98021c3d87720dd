package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-service/internal/api/dto"
	"github.com/spec-kit/equipment-service/internal/auth"
	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/service"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// PartsHandler manages the parts-request and inventory endpoints.
type PartsHandler struct {
	parts *service.PartsService
}

// NewPartsHandler constructs handler.
func NewPartsHandler(parts *service.PartsService) *PartsHandler {
	return &PartsHandler{parts: parts}
}

// RequestParts POST /parts/requests (technician).
func (h *PartsHandler) RequestParts(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RequestPartsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.parts.RequestParts(c.Context(), user.ID, service.PartsRequestInput{
		PartID:   req.PartID,
		Quantity: req.Quantity,
		Reason:   req.Reason,
		Priority: req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": partsRequestResponse(request)})
}

// ListRequests GET /parts/requests. Admins see the pending queue,
// technicians their own requests.
func (h *PartsHandler) ListRequests(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var (
		requests []domain.PartsRequest
		err      error
	)
	if user.Role == domain.RoleAdmin {
		requests, err = h.parts.ListPendingRequests(c.Context())
	} else {
		requests, err = h.parts.ListTechnicianRequests(c.Context(), user.ID)
	}
	if err != nil {
		return err
	}
	items := make([]dto.PartsRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, partsRequestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DecideRequest POST /parts/requests/:id/decision (admin).
func (h *PartsHandler) DecideRequest(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requestID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DecidePartsRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var approve bool
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approve":
		approve = true
	case "deny":
		approve = false
	default:
		return apperrors.NewValidationError("decision must be approve or deny",
			map[string]any{"decision": req.Decision})
	}
	request, err := h.parts.DecidePartsRequest(c.Context(), requestID, user.ID, approve, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": partsRequestResponse(request)})
}

// CentralStock GET /inventory/central (admin).
func (h *PartsHandler) CentralStock(c *fiber.Ctx) error {
	items, err := h.parts.CentralStock(c.Context())
	if err != nil {
		return err
	}
	rows := make([]dto.CentralStockResponse, 0, len(items))
	for i := range items {
		rows = append(rows, dto.CentralStockResponse{
			PartID:       items[i].PartID,
			Quantity:     items[i].Quantity,
			MinimumStock: items[i].MinimumStock,
			BelowMinimum: items[i].BelowMinimum(),
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}

// TechnicianStock GET /inventory/mine (technician).
func (h *PartsHandler) TechnicianStock(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	entries, err := h.parts.TechnicianStock(c.Context(), user.ID)
	if err != nil {
		return err
	}
	rows := make([]dto.TechnicianStockResponse, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, dto.TechnicianStockResponse{
			PartID:   entry.PartID,
			Quantity: entry.Quantity,
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}

// Catalog GET /parts.
func (h *PartsHandler) Catalog(c *fiber.Ctx) error {
	parts, err := h.parts.PartsCatalog(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for _, part := range parts {
		items = append(items, dto.PartResponse{
			ID:   part.ID,
			Name: part.Name,
			Code: part.Code,
			Unit: part.Unit,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func partsRequestResponse(request *domain.PartsRequest) dto.PartsRequestResponse {
	return dto.PartsRequestResponse{
		ID:           request.ID,
		TechnicianID: request.TechnicianID,
		PartID:       request.PartID,
		Quantity:     request.Quantity,
		Reason:       request.Reason,
		Priority:     request.Priority,
		Status:       request.Status,
		AdminNote:    request.AdminNote,
		DecidedBy:    request.DecidedBy,
		CreatedAt:    request.CreatedAt,
		DecidedAt:    request.DecidedAt,
	}
}
