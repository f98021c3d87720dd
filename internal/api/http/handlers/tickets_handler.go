package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-service/internal/api/dto"
	"github.com/spec-kit/equipment-service/internal/auth"
	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/service"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	completions *service.CompletionService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, completions *service.CompletionService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, completions: completions}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.CreateTicket(c.Context(), user.ID, service.TicketCreateInput{
		PrinterID:   req.PrinterID,
		Priority:    req.Priority,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets. Requesters see their own tickets, technicians
// their assigned ones.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := parseInt(c.Query("page_size"), 20)
	page := parseInt(c.Query("page"), 1)
	offset := (page - 1) * limit

	var (
		tickets []domain.ServiceTicket
		err     error
	)
	if user.Role == domain.RoleTechnician {
		tickets, err = h.tickets.ListForTechnician(c.Context(), user.ID, parseStatuses(c.Query("status")), limit, offset)
	} else {
		tickets, err = h.tickets.ListForRequester(c.Context(), user.ID, limit, offset)
	}
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, history, usages, err := h.tickets.GetTicket(c.Context(), ticketID)
	if err != nil {
		return err
	}
	detail := dto.TicketDetailResponse{TicketResponse: ticketResponse(ticket)}
	for _, entry := range history {
		detail.History = append(detail.History, dto.TicketHistoryResponse{
			ID:             entry.ID,
			PreviousStatus: entry.PreviousStatus,
			NewStatus:      entry.NewStatus,
			ActorID:        entry.ActorID,
			Note:           entry.Note,
			CreatedAt:      entry.CreatedAt,
		})
	}
	for _, usage := range usages {
		detail.Parts = append(detail.Parts, partUsageResponse(usage))
	}
	return c.JSON(fiber.Map{"data": detail})
}

// StartService POST /tickets/:id/start (technician).
func (h *TicketsHandler) StartService(c *fiber.Ctx) error {
	return h.technicianAction(c, func(ticketID, technicianID int64, _ string) (*domain.ServiceTicket, error) {
		return h.tickets.StartService(c.Context(), ticketID, technicianID)
	})
}

// Hold POST /tickets/:id/hold (technician).
func (h *TicketsHandler) Hold(c *fiber.Ctx) error {
	return h.technicianAction(c, func(ticketID, technicianID int64, reason string) (*domain.ServiceTicket, error) {
		return h.tickets.PlaceOnHold(c.Context(), ticketID, technicianID, reason)
	})
}

// Resume POST /tickets/:id/resume (technician).
func (h *TicketsHandler) Resume(c *fiber.Ctx) error {
	return h.technicianAction(c, func(ticketID, technicianID int64, _ string) (*domain.ServiceTicket, error) {
		return h.tickets.Resume(c.Context(), ticketID, technicianID)
	})
}

// RequestReassignment POST /tickets/:id/reassign (technician).
func (h *TicketsHandler) RequestReassignment(c *fiber.Ctx) error {
	return h.technicianAction(c, func(ticketID, technicianID int64, reason string) (*domain.ServiceTicket, error) {
		return h.tickets.RequestReassignment(c.Context(), ticketID, technicianID, reason)
	})
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)
	ticket, err := h.tickets.Cancel(c.Context(), ticketID, user.ID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// SubmitCompletion POST /tickets/:id/completion (technician).
func (h *TicketsHandler) SubmitCompletion(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubmitCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	parts := make([]service.DeclaredPart, 0, len(req.Parts))
	for _, part := range req.Parts {
		parts = append(parts, service.DeclaredPart{
			PartID:   part.PartID,
			Brand:    part.Brand,
			Quantity: part.Quantity,
			Unit:     part.Unit,
			Note:     part.Note,
		})
	}
	record, err := h.completions.SubmitCompletion(c.Context(), ticketID, user.ID, service.CompletionInput{
		Actions: req.Actions,
		Notes:   req.Notes,
		Parts:   parts,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": approvalResponse(record)})
}

func (h *TicketsHandler) technicianAction(c *fiber.Ctx, fn func(ticketID, technicianID int64, reason string) (*domain.ServiceTicket, error)) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)
	ticket, err := fn(ticketID, user.ID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"param": name})
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseStatuses(raw string) []domain.TicketStatus {
	if raw == "" {
		return nil
	}
	var statuses []domain.TicketStatus
	for _, part := range strings.Split(raw, ",") {
		statuses = append(statuses, domain.TicketStatus(strings.TrimSpace(part)))
	}
	return statuses
}

func ticketResponse(ticket *domain.ServiceTicket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		SequenceNumber: ticket.SequenceNumber,
		InstitutionID:  ticket.InstitutionID,
		RequesterID:    ticket.RequesterID,
		PrinterID:      ticket.PrinterID,
		TechnicianID:   ticket.TechnicianID,
		Priority:       ticket.Priority,
		Description:    ticket.Description,
		Location:       ticket.Location,
		Status:         ticket.Status,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		StartedAt:      ticket.StartedAt,
		ResolvedAt:     ticket.ResolvedAt,
	}
}

func approvalResponse(record *domain.ApprovalRecord) dto.ApprovalResponse {
	return dto.ApprovalResponse{
		ID:           record.ID,
		TicketID:     record.TicketID,
		TechnicianID: record.TechnicianID,
		Actions:      record.Actions,
		Notes:        record.Notes,
		State:        record.State,
		DecisionNote: record.DecisionNote,
		ApproverID:   record.ApproverID,
		SubmittedAt:  record.SubmittedAt,
		DecidedAt:    record.DecidedAt,
	}
}

func partUsageResponse(usage domain.PartUsageRecord) dto.PartUsageResponse {
	return dto.PartUsageResponse{
		ID:       usage.ID,
		PartID:   usage.PartID,
		Brand:    usage.Brand,
		Quantity: usage.Quantity,
		Unit:     usage.Unit,
		Note:     usage.Note,
	}
}
