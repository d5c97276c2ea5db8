package ledgerrepo

import (
	"context"
	"sync"
	"time"

	"github.com/business-nexus/nexus/internal/accountrepo"
	"github.com/business-nexus/nexus/internal/domain"
)

// RepoMem is an in-memory ledger over an in-memory account store.
//
// Each account has its own mutex; operations on one account serialize on it
// so the balance check, the balance change and the log append commit as one
// unit. Transfers take both account locks in id order to rule out deadlock
// between opposite-direction transfers.
type RepoMem struct {
	accounts *accountrepo.RepoMem

	mu    sync.Mutex // guards seq, log and locks
	seq   int64
	log   map[string][]domain.Transaction
	locks map[string]*sync.Mutex
}

// NewRepoMem returns an in-memory ledger backed by the given account store.
func NewRepoMem(accounts *accountrepo.RepoMem) *RepoMem {
	return &RepoMem{
		accounts: accounts,
		log:      make(map[string][]domain.Transaction),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (r *RepoMem) accountLock(accountID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[accountID] = lock
	}

	return lock
}

func (r *RepoMem) append(arg domain.CreateTransactionParams) domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++

	t := domain.Transaction{
		ID:        r.seq,
		AccountID: arg.AccountID,
		Amount:    arg.Amount,
		Sender:    arg.Sender,
		Receiver:  arg.Receiver,
		Status:    arg.Status,
		CreatedAt: time.Now().UTC(),
	}

	r.log[arg.AccountID] = append(r.log[arg.AccountID], t)

	return t
}

// Deposit credits the account and appends the matching ledger record.
func (r *RepoMem) Deposit(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error) {
	lock := r.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := r.accounts.AddBalance(ctx, amount, accountID)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	transaction := r.append(domain.CreateTransactionParams{
		AccountID: accountID,
		Amount:    amount,
		Sender:    domain.PartyBank,
		Receiver:  accountID,
		Status:    domain.StatusCompleted,
	})

	return account, transaction, nil
}

// Withdraw debits the account and appends the matching ledger record.
// Overdrafts fail with ErrInsufficientFunds and leave both the balance and
// the log untouched.
func (r *RepoMem) Withdraw(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error) {
	lock := r.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := r.accounts.AddBalance(ctx, -amount, accountID)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	transaction := r.append(domain.CreateTransactionParams{
		AccountID: accountID,
		Amount:    amount,
		Sender:    accountID,
		Receiver:  domain.PartyBank,
		Status:    domain.StatusCompleted,
	})

	return account, transaction, nil
}

// Transfer debits the sender, credits the receiver and appends one ledger
// record per leg, all-or-nothing.
func (r *RepoMem) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount int64) (domain.TransferTxResult, error) {
	var result domain.TransferTxResult

	if fromAccountID == toAccountID {
		return result, domain.ErrSameAccountTransfer
	}

	first, second := fromAccountID, toAccountID
	if second < first {
		first, second = second, first
	}

	firstLock, secondLock := r.accountLock(first), r.accountLock(second)

	firstLock.Lock()
	defer firstLock.Unlock()
	secondLock.Lock()
	defer secondLock.Unlock()

	// Resolve the receiver before debiting so a missing account cannot
	// leave a half-applied transfer behind.
	if _, err := r.accounts.Get(ctx, toAccountID); err != nil {
		return result, err
	}

	fromAccount, err := r.accounts.AddBalance(ctx, -amount, fromAccountID)
	if err != nil {
		return result, err
	}

	toAccount, err := r.accounts.AddBalance(ctx, amount, toAccountID)
	if err != nil {
		// Credit the sender back; restoring the exact debited amount
		// cannot fail.
		_, _ = r.accounts.AddBalance(ctx, amount, fromAccountID)
		return result, err
	}

	result.FromAccount = fromAccount
	result.ToAccount = toAccount

	result.FromTransaction = r.append(domain.CreateTransactionParams{
		AccountID: fromAccountID,
		Amount:    amount,
		Sender:    fromAccountID,
		Receiver:  toAccountID,
		Status:    domain.StatusCompleted,
	})

	result.ToTransaction = r.append(domain.CreateTransactionParams{
		AccountID: toAccountID,
		Amount:    amount,
		Sender:    fromAccountID,
		Receiver:  toAccountID,
		Status:    domain.StatusCompleted,
	})

	return result, nil
}

// List returns the account's transactions, most recent first.
func (r *RepoMem) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.log[arg.AccountID]

	items := []domain.Transaction{}

	for i := len(history) - 1 - int(arg.Offset); i >= 0 && len(items) < int(arg.Limit); i-- {
		items = append(items, history[i])
	}

	return items, nil
}
