package model

import "time"

// OperationKind identifies what caused a balance change
type OperationKind string

const (
	OpTransfer OperationKind = "transfer"
	OpPayday   OperationKind = "payday"
	OpExpense  OperationKind = "expense"
	OpCredit   OperationKind = "credit"
	OpRepay    OperationKind = "repay"
	OpCharity  OperationKind = "charity"
)

// IsIncome reports whether the kind is system-generated income
func (k OperationKind) IsIncome() bool {
	return k == OpPayday
}

// IsExpense reports whether the kind is a system-generated expense
func (k OperationKind) IsExpense() bool {
	return k == OpExpense || k == OpCharity
}

// OperationStatus is the lifecycle state of a ledger entry
type OperationStatus string

const (
	StatusPending   OperationStatus = "pending"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
)

// LedgerEntry is one line of a member's append-only history.
// From is nil for system income, To is nil for system expenses.
type LedgerEntry struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"` // shared by both legs of a transfer
	Kind          OperationKind   `json:"kind"`
	Amount        int64           `json:"amount"`
	From          *PlayerID       `json:"from,omitempty"`
	To            *PlayerID       `json:"to,omitempty"`
	Counterparty  string          `json:"counterparty,omitempty"` // display name of the other party, if any
	BalanceAfter  int64           `json:"balance_after"`
	Status        OperationStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
