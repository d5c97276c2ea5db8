package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceOverflow indicates a credit that would overflow the account balance.
	ErrBalanceOverflow = errors.New("balance overflow")
	// ErrSameAccountTransfer indicates a transfer where both legs name the same account.
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
)

// PartyBank is the symbolic counterparty for deposits and withdrawals.
const PartyBank = "Bank"

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

// Transaction statuses.
const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is one immutable record of a balance change on the owning
// account's ledger. Records are append only and never deleted.
type Transaction struct {
	ID        int64             `json:"id"`
	AccountID string            `json:"account_id"`
	Amount    int64             `json:"amount"` // always positive
	Sender    string            `json:"sender"`
	Receiver  string            `json:"receiver"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateTransactionParams is the input data to append a ledger record.
type CreateTransactionParams struct {
	AccountID string            `json:"account_id"`
	Amount    int64             `json:"amount"`
	Sender    string            `json:"sender"`
	Receiver  string            `json:"receiver"`
	Status    TransactionStatus `json:"status"`
}

// ListTransactionsParams is the input data to page through an account's history.
type ListTransactionsParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	FromAccount     Account     `json:"from_account"`
	ToAccount       Account     `json:"to_account"`
	FromTransaction Transaction `json:"from_transaction"`
	ToTransaction   Transaction `json:"to_transaction"`
}
