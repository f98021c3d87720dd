package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	err := NewDuplicateActiveTicket(7, "SR-2026-000003")
	domainErr := ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "DUPLICATE_ACTIVE_TICKET", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
	assert.Equal(t, "SR-2026-000003", domainErr.Details["existing_sequence_number"])
}

func TestToDomainErrorWrapsNoRows(t *testing.T) {
	domainErr := ToDomainError(fmt.Errorf("load ticket: %w", pgx.ErrNoRows))
	require.NotNil(t, domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	cause := errors.New("connection reset")
	domainErr := ToDomainError(cause)
	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.ErrorIs(t, domainErr, cause)
}

func TestMapErrorNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "TICKET_CLOSED", CodeOf(NewTicketClosed(1, "completed")))
	assert.Equal(t, "INVENTORY_CONSISTENCY_VIOLATION", CodeOf(NewInventoryConsistencyViolation(1, 2, 0, 1)))
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestWorkflowErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewNoTechnicianAssigned(1), http.StatusUnprocessableEntity},
		{NewPendingMaintenanceBlocks(1), http.StatusConflict},
		{NewNotAssignedTechnician(1, 2), http.StatusForbidden},
		{NewInvalidTransition("completed", "in_progress"), http.StatusConflict},
		{NewApprovalAlreadyOpen(1), http.StatusConflict},
		{NewApprovalAlreadyDecided(1), http.StatusConflict},
		{NewPartsRequestAlreadyDecided(1), http.StatusConflict},
		{NewInsufficientTechnicianStock(1, 0, 2), http.StatusUnprocessableEntity},
		{NewInsufficientCentralStock(1, 10, 12), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		domainErr := ToDomainError(tc.err)
		require.NotNil(t, domainErr)
		assert.Equal(t, tc.status, domainErr.HTTPStatus, domainErr.Code)
	}
}
