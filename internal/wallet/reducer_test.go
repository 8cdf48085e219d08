package wallet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s TransactionStatus) *TransactionStatus { return &s }

func TestReduceBalanceUpdated(t *testing.T) {
	state := State{Balance: 1_000}
	next := reduce(state, BalanceUpdated{NewBalance: 42_000})

	assert.Equal(t, int64(42_000), next.Balance)
	assert.Equal(t, int64(1_000), state.Balance, "reduce must not mutate its input")
}

func TestReduceMergesTransactionInPlace(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	state := State{Transactions: []Transaction{
		{ID: "t0", Status: StatusSuccess},
		{ID: "t1", Status: StatusPending, Amount: 5_000, CreatedAt: created, Description: "Wallet top-up"},
		{ID: "t2", Status: StatusFailed},
	}}

	next := reduce(state, TransactionUpdated{Patch: TransactionPatch{
		ID:     "t1",
		Status: statusPtr(StatusSuccess),
	}})

	require.Len(t, next.Transactions, 3)
	merged := next.Transactions[1]
	assert.Equal(t, "t1", merged.ID, "position must be preserved")
	assert.Equal(t, StatusSuccess, merged.Status)
	assert.Equal(t, int64(5_000), merged.Amount, "fields absent from the patch stay put")
	assert.Equal(t, created, merged.CreatedAt)
	assert.Equal(t, "Wallet top-up", merged.Description)

	assert.Equal(t, StatusPending, state.Transactions[1].Status, "input state untouched")
}

func TestReduceUnknownTransactionIsNoop(t *testing.T) {
	state := State{Transactions: []Transaction{{ID: "t1", Status: StatusPending}}}

	next := reduce(state, TransactionUpdated{Patch: TransactionPatch{
		ID:     "t2",
		Status: statusPtr(StatusSuccess),
	}})

	assert.Equal(t, state.Transactions, next.Transactions, "unknown IDs never insert")
}

func TestReduceEmptyPatchIDIsNoop(t *testing.T) {
	state := State{Transactions: []Transaction{{ID: "t1"}}}
	next := reduce(state, TransactionUpdated{Patch: TransactionPatch{Status: statusPtr(StatusFailed)}})
	assert.Equal(t, state.Transactions, next.Transactions)
}

func TestReduceLeavesStateForSideEffectEvents(t *testing.T) {
	state := State{Balance: 7_000, Transactions: []Transaction{{ID: "t1"}}}

	for _, ev := range []Event{
		PaymentStatus{Payment: map[string]any{"orderId": "o-1"}},
		Maintenance{Message: "scheduled downtime"},
	} {
		next := reduce(state, ev)
		assert.Equal(t, state, next)
	}
}
