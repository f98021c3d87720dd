package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/events"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

func (e *testEnv) submittedApproval(t *testing.T, printer int64, parts []DeclaredPart) (*domain.ServiceTicket, *domain.ApprovalRecord) {
	t.Helper()
	ticket := e.startedTicket(t, printer)
	record, err := e.completions.SubmitCompletion(context.Background(), ticket.ID, technicianID, CompletionInput{
		Actions: "replaced worn parts",
		Parts:   parts,
	})
	require.NoError(t, err)
	return ticket, record
}

func TestAcceptDecrementsTechnicianPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, record := env.submittedApproval(t, printerID, []DeclaredPart{
		{PartID: tonerPartID, Quantity: 3, Unit: "pcs"},
	})

	decided, err := env.approvals.DecideApproval(ctx, record.ID, coordinatorID, DecisionAccept, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, decided.Status)
	require.NotNil(t, decided.ResolvedAt)

	// 5 on hand, 3 declared: the pool lands on 2 and the central pool is
	// untouched by this flow.
	assert.Equal(t, 2, env.technicianStock(t, tonerPartID))
	assert.Equal(t, 10, env.store.central[tonerPartID].Quantity)

	stored, err := env.store.Approvals().GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalAccepted, stored.State)
	require.NotNil(t, stored.ApproverID)
	assert.Equal(t, coordinatorID, *stored.ApproverID)
	require.NotNil(t, stored.DecidedAt)

	usages, err := env.store.PartUsages().ListByApproval(ctx, record.ID)
	require.NoError(t, err)
	assert.Len(t, usages, 1, "accepted usage rows stay for the audit trail")

	decidedEvents := env.dispatcher.byType(events.EventApprovalDecided)
	require.Len(t, decidedEvents, 1)
	payload := decidedEvents[0].Payload.(events.ApprovalDecidedPayload)
	assert.Equal(t, domain.ApprovalAccepted, payload.Decision)
	assert.Equal(t, ticket.RequesterID, payload.RequesterID)
}

func TestRejectRestoresInProgressAndDeletesUsage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, record := env.submittedApproval(t, printerID, []DeclaredPart{
		{PartID: tonerPartID, Quantity: 3, Unit: "pcs"},
	})

	decided, err := env.approvals.DecideApproval(ctx, record.ID, coordinatorID, DecisionReject, "numbers look off")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, decided.Status)
	assert.Nil(t, decided.ResolvedAt)

	// Rejection restores the pre-submission world: stock untouched, usage
	// rows gone.
	assert.Equal(t, 5, env.technicianStock(t, tonerPartID))
	usages, err := env.store.PartUsages().ListByApproval(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, usages)

	// The technician can submit again after correcting the report.
	resubmitted, err := env.completions.SubmitCompletion(ctx, ticket.ID, technicianID, CompletionInput{
		Actions: "replaced toner, corrected count",
		Parts:   []DeclaredPart{{PartID: tonerPartID, Quantity: 2, Unit: "pcs"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalAwaiting, resubmitted.State)
}

func TestDecideApprovalIsIdempotentGuarded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, record := env.submittedApproval(t, printerID, []DeclaredPart{
		{PartID: tonerPartID, Quantity: 3, Unit: "pcs"},
	})

	_, err := env.approvals.DecideApproval(ctx, record.ID, coordinatorID, DecisionAccept, "")
	require.NoError(t, err)

	_, err = env.approvals.DecideApproval(ctx, record.ID, coordinatorID, DecisionAccept, "again")
	require.Error(t, err)
	assert.Equal(t, "APPROVAL_ALREADY_DECIDED", apperrors.CodeOf(err))

	// The second decision mutated nothing: stock decremented exactly once.
	assert.Equal(t, 2, env.technicianStock(t, tonerPartID))
}

func TestAcceptDetectsInventoryRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, record := env.submittedApproval(t, printerID, []DeclaredPart{
		{PartID: tonerPartID, Quantity: 3, Unit: "pcs"},
	})

	// Simulate a concurrent accept draining the pool between submission and
	// decision: the advisory pre-check passed at 5, but only 1 remains now.
	for i := range env.store.techInv {
		if env.store.techInv[i].TechnicianID == technicianID && env.store.techInv[i].PartID == tonerPartID {
			env.store.techInv[i].Quantity = 1
		}
	}

	_, err := env.approvals.DecideApproval(ctx, record.ID, coordinatorID, DecisionAccept, "")
	require.Error(t, err)
	assert.Equal(t, "INVENTORY_CONSISTENCY_VIOLATION", apperrors.CodeOf(err))

	// The whole transaction rolled back: record still awaiting, ticket
	// still pending_approval, stock untouched.
	stored, err := env.store.Approvals().GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalAwaiting, stored.State)
	updated, err := env.store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPendingApproval, updated.Status)
	assert.Equal(t, 1, env.technicianStock(t, tonerPartID))
}

func TestAcceptLastUnitTwiceFailsSecond(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Two tickets each declare the technician's single fuser unit.
	_, first := env.submittedApproval(t, printerID, []DeclaredPart{
		{PartID: fuserPartID, Quantity: 1, Unit: "pcs"},
	})
	_, second := env.submittedApproval(t, printer2ID, []DeclaredPart{
		{PartID: fuserPartID, Quantity: 1, Unit: "pcs"},
	})

	_, err := env.approvals.DecideApproval(ctx, first.ID, coordinatorID, DecisionAccept, "")
	require.NoError(t, err)
	assert.Equal(t, 0, env.technicianStock(t, fuserPartID))

	_, err = env.approvals.DecideApproval(ctx, second.ID, coordinatorID, DecisionAccept, "")
	require.Error(t, err)
	assert.Equal(t, "INVENTORY_CONSISTENCY_VIOLATION", apperrors.CodeOf(err))
	assert.Equal(t, 0, env.technicianStock(t, fuserPartID), "the pool never goes negative")

	// The raced submission stays open; rejecting it clears the ticket.
	stored, err := env.store.Approvals().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalAwaiting, stored.State)
	decided, err := env.approvals.DecideApproval(ctx, second.ID, coordinatorID, DecisionReject, "no stock left")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, decided.Status)
}

func TestGetApprovalReturnsUsages(t *testing.T) {
	env := newTestEnv(t)
	_, record := env.submittedApproval(t, printerID, []DeclaredPart{
		{PartID: tonerPartID, Quantity: 2, Unit: "pcs"},
		{PartID: fuserPartID, Quantity: 1, Unit: "pcs"},
	})

	stored, usages, err := env.approvals.GetApproval(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, stored.ID)
	assert.Len(t, usages, 2)
}
