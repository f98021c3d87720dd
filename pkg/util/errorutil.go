package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Workflow error constructors. Codes are part of the API contract; callers
// branch on them to decide between retry-with-corrected-input and
// refresh-then-retry.

func NewNoTechnicianAssigned(institutionID int64) error {
	return NewDomainError("NO_TECHNICIAN_ASSIGNED",
		"no technician is assigned to the institution",
		http.StatusUnprocessableEntity,
		map[string]any{"institution_id": institutionID})
}

func NewDuplicateActiveTicket(printerID int64, sequenceNumber string) error {
	return NewConflict("DUPLICATE_ACTIVE_TICKET",
		"an active ticket already exists for this equipment",
		map[string]any{"printer_id": printerID, "existing_sequence_number": sequenceNumber})
}

func NewPendingMaintenanceBlocks(printerID int64) error {
	return NewConflict("PENDING_MAINTENANCE_BLOCKS",
		"a pending maintenance service exists for this equipment",
		map[string]any{"printer_id": printerID})
}

func NewTicketClosed(ticketID int64, status string) error {
	return NewConflict("TICKET_CLOSED",
		"ticket is in a terminal status and cannot be modified",
		map[string]any{"ticket_id": ticketID, "status": status})
}

func NewNotAssignedTechnician(ticketID, technicianID int64) error {
	return NewForbiddenWithCode("NOT_ASSIGNED_TECHNICIAN",
		"technician is not assigned to this ticket",
		map[string]any{"ticket_id": ticketID, "technician_id": technicianID})
}

func NewForbiddenWithCode(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusForbidden, details)
}

func NewInvalidTransition(from, to string) error {
	return NewConflict("INVALID_TRANSITION",
		fmt.Sprintf("transition from %s to %s is not allowed", from, to),
		map[string]any{"from": from, "to": to})
}

func NewApprovalAlreadyOpen(ticketID int64) error {
	return NewConflict("APPROVAL_ALREADY_OPEN",
		"an undecided approval record already exists for this ticket",
		map[string]any{"ticket_id": ticketID})
}

func NewApprovalAlreadyDecided(approvalID int64) error {
	return NewConflict("APPROVAL_ALREADY_DECIDED",
		"approval record has already been decided",
		map[string]any{"approval_id": approvalID})
}

func NewPartsRequestAlreadyDecided(requestID int64) error {
	return NewConflict("PARTS_REQUEST_ALREADY_DECIDED",
		"parts request has already been decided",
		map[string]any{"request_id": requestID})
}

func NewInsufficientTechnicianStock(partID int64, available, requested int) error {
	return NewDomainError("INSUFFICIENT_TECHNICIAN_STOCK",
		"declared quantity exceeds technician stock",
		http.StatusUnprocessableEntity,
		map[string]any{"part_id": partID, "available": available, "requested": requested})
}

func NewInsufficientCentralStock(partID int64, available, requested int) error {
	return NewDomainError("INSUFFICIENT_CENTRAL_STOCK",
		"requested quantity exceeds central stock",
		http.StatusUnprocessableEntity,
		map[string]any{"part_id": partID, "available": available, "requested": requested})
}

// NewInventoryConsistencyViolation flags a ledger decrement that would go
// negative inside the commit transaction. Reaching it means the advisory
// pre-check was raced; the whole transaction must abort.
func NewInventoryConsistencyViolation(partID, technicianID int64, available, requested int) error {
	return NewConflict("INVENTORY_CONSISTENCY_VIOLATION",
		"inventory decrement would drive technician stock negative",
		map[string]any{
			"part_id":       partID,
			"technician_id": technicianID,
			"available":     available,
			"requested":     requested,
		})
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// CodeOf extracts the domain error code, or empty for non-domain errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
