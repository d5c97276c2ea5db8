// Package ledgerrepo manages repository layer of the transaction ledger.
//
// Every balance change commits together with its transaction record: a SQL
// transaction wraps the balance update(s) and the log append so readers
// never observe one without the other.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/accountrepo"
	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/dbpkg"
	"github.com/business-nexus/nexus/pkg/errorspkg"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
	transactions (account_id, amount, sender, receiver, status)
VALUES
	($1, $2, $3, $4, $5)
RETURNING id, account_id, amount, sender, receiver, status, created_at
`

func createTransaction(ctx context.Context, db dbpkg.SQLInterface, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := db.QueryRowContext(ctx, createQuery,
		arg.AccountID,
		arg.Amount,
		arg.Sender,
		arg.Receiver,
		arg.Status,
	)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Amount,
		&t.Sender,
		&t.Receiver,
		&t.Status,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("createTransaction(ctx, db, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

// Deposit credits the account and appends the matching ledger record within
// a single database transaction.
func (r *RepoPGS) Deposit(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var (
		account     domain.Account
		transaction domain.Transaction
	)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return account, transaction, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err = accountRepo.AddBalance(ctx, amount, accountID)
	if err != nil {
		return account, transaction, err
	}

	transaction, err = createTransaction(ctx, tx, domain.CreateTransactionParams{
		AccountID: accountID,
		Amount:    amount,
		Sender:    domain.PartyBank,
		Receiver:  accountID,
		Status:    domain.StatusCompleted,
	})
	if err != nil {
		return account, transaction, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return account, transaction, errorspkg.ErrInternal
	}

	return account, transaction, nil
}

// Withdraw debits the account and appends the matching ledger record within
// a single database transaction. The accounts_balance_check constraint
// rejects overdrafts atomically with the debit.
func (r *RepoPGS) Withdraw(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var (
		account     domain.Account
		transaction domain.Transaction
	)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return account, transaction, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err = accountRepo.AddBalance(ctx, -amount, accountID)
	if err != nil {
		return account, transaction, err
	}

	transaction, err = createTransaction(ctx, tx, domain.CreateTransactionParams{
		AccountID: accountID,
		Amount:    amount,
		Sender:    accountID,
		Receiver:  domain.PartyBank,
		Status:    domain.StatusCompleted,
	})
	if err != nil {
		return account, transaction, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return account, transaction, errorspkg.ErrInternal
	}

	return account, transaction, nil
}

// Transfer moves money between two accounts.
//
// It debits the sender, credits the receiver and appends one ledger record
// per leg within a single database transaction. Balance updates execute in
// account id order so that concurrent opposite-direction transfers cannot
// deadlock.
func (r *RepoPGS) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount int64) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)

	if fromAccountID < toAccountID {
		result.FromAccount, err = accountRepo.AddBalance(ctx, -amount, fromAccountID)
		if err == nil {
			result.ToAccount, err = accountRepo.AddBalance(ctx, amount, toAccountID)
		}
	} else {
		result.ToAccount, err = accountRepo.AddBalance(ctx, amount, toAccountID)
		if err == nil {
			result.FromAccount, err = accountRepo.AddBalance(ctx, -amount, fromAccountID)
		}
	}

	if err != nil {
		return result, err
	}

	result.FromTransaction, err = createTransaction(ctx, tx, domain.CreateTransactionParams{
		AccountID: fromAccountID,
		Amount:    amount,
		Sender:    fromAccountID,
		Receiver:  toAccountID,
		Status:    domain.StatusCompleted,
	})
	if err != nil {
		return result, err
	}

	result.ToTransaction, err = createTransaction(ctx, tx, domain.CreateTransactionParams{
		AccountID: toAccountID,
		Amount:    amount,
		Sender:    fromAccountID,
		Receiver:  toAccountID,
		Status:    domain.StatusCompleted,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

const listQuery = `
SELECT
	id, account_id, amount, sender, receiver, status, created_at
FROM transactions
WHERE account_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// List returns the account's transactions, most recent first.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Amount,
			&t.Sender,
			&t.Receiver,
			&t.Status,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
