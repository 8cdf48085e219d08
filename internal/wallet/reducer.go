package wallet

// reduce applies one state-mutating push event and returns the next state.
// It is pure: the input state is never modified, so callers can apply it
// under a single lock and hand out earlier snapshots safely.
//
// PaymentStatus and Maintenance are side-effect events handled by the
// store; the reducer leaves state untouched for them.
func reduce(state State, event Event) State {
	switch e := event.(type) {
	case BalanceUpdated:
		state.Balance = e.NewBalance
	case TransactionUpdated:
		state.Transactions = mergeTransaction(state.Transactions, e.Patch)
	}
	return state
}

// mergeTransaction folds a patch into the entry with a matching ID,
// preserving its position. Unknown IDs are dropped: push updates only
// touch entries the user already sees, they never insert.
func mergeTransaction(list []Transaction, patch TransactionPatch) []Transaction {
	if patch.ID == "" {
		return list
	}
	for i, tx := range list {
		if tx.ID != patch.ID {
			continue
		}
		next := make([]Transaction, len(list))
		copy(next, list)
		next[i] = patched(tx, patch)
		return next
	}
	return list
}

func patched(tx Transaction, patch TransactionPatch) Transaction {
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Status != nil {
		tx.Status = *patch.Status
	}
	if patch.CreatedAt != nil {
		tx.CreatedAt = *patch.CreatedAt
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	return tx
}
