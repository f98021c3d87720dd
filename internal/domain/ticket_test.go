package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"pending to assigned", TicketStatusPending, TicketStatusAssigned, true},
		{"assigned to in_progress", TicketStatusAssigned, TicketStatusInProgress, true},
		{"assigned to pending_approval", TicketStatusAssigned, TicketStatusPendingApproval, true},
		{"in_progress to pending_approval", TicketStatusInProgress, TicketStatusPendingApproval, true},
		{"in_progress to on_hold", TicketStatusInProgress, TicketStatusOnHold, true},
		{"on_hold to in_progress", TicketStatusOnHold, TicketStatusInProgress, true},
		{"pending_approval to completed", TicketStatusPendingApproval, TicketStatusCompleted, true},
		{"pending_approval to in_progress", TicketStatusPendingApproval, TicketStatusInProgress, true},
		{"needs_reassignment to assigned", TicketStatusNeedsReassignment, TicketStatusAssigned, true},
		{"any active to cancelled", TicketStatusOnHold, TicketStatusCancelled, true},

		{"pending straight to completed", TicketStatusPending, TicketStatusCompleted, false},
		{"in_progress straight to completed", TicketStatusInProgress, TicketStatusCompleted, false},
		{"completed to anything", TicketStatusCompleted, TicketStatusInProgress, false},
		{"cancelled to anything", TicketStatusCancelled, TicketStatusAssigned, false},
		{"same status is a no-op edge", TicketStatusInProgress, TicketStatusInProgress, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, TicketStatusCompleted.IsTerminal())
	assert.True(t, TicketStatusCancelled.IsTerminal())
	assert.False(t, TicketStatusPendingApproval.IsTerminal())
	assert.False(t, TicketStatusOnHold.IsTerminal())
}

func TestNormalizePriority(t *testing.T) {
	for raw, want := range map[string]TicketPriority{
		"low":    TicketPriorityLow,
		"medium": TicketPriorityMedium,
		"":       TicketPriorityMedium,
		"high":   TicketPriorityHigh,
		"urgent": TicketPriorityHigh,
	} {
		got, err := NormalizePriority(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := NormalizePriority("critical")
	require.Error(t, err)
}

func TestFormatSequenceNumber(t *testing.T) {
	assert.Equal(t, "SR-2026-000001", FormatSequenceNumber(2026, 1))
	assert.Equal(t, "SR-2026-000042", FormatSequenceNumber(2026, 42))
	assert.Equal(t, "SR-2027-123456", FormatSequenceNumber(2027, 123456))
}
