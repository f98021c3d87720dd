package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-service/internal/api/dto"
	"github.com/spec-kit/equipment-service/internal/auth"
	"github.com/spec-kit/equipment-service/internal/service"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// ApprovalsHandler manages completion-review endpoints.
type ApprovalsHandler struct {
	approvals *service.ApprovalService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(approvals *service.ApprovalService) *ApprovalsHandler {
	return &ApprovalsHandler{approvals: approvals}
}

// GetApproval GET /approvals/:id.
func (h *ApprovalsHandler) GetApproval(c *fiber.Ctx) error {
	approvalID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, usages, err := h.approvals.GetApproval(c.Context(), approvalID)
	if err != nil {
		return err
	}
	parts := make([]dto.PartUsageResponse, 0, len(usages))
	for _, usage := range usages {
		parts = append(parts, partUsageResponse(usage))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"approval": approvalResponse(record),
		"parts":    parts,
	}})
}

// Decide POST /approvals/:id/decision (coordinator).
func (h *ApprovalsHandler) Decide(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	approvalID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DecideApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	decision, err := service.ParseDecision(req.Decision)
	if err != nil {
		return err
	}
	ticket, err := h.approvals.DecideApproval(c.Context(), approvalID, user.ID, decision, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}
