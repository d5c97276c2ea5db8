// Package ledgerservice manages business logic layer of the wallet ledger.
package ledgerservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/accountdelivery"
	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/internal/events"
	"github.com/business-nexus/nexus/internal/rediscache"
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	Deposit(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error)
	Withdraw(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error)
	Transfer(ctx context.Context, fromAccountID, toAccountID string, amount int64) (domain.TransferTxResult, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// Invalidator drops cached account snapshots after balance changes.
type Invalidator interface {
	Del(ctx context.Context, key string) error
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
	publisher      events.Publisher
	cache          Invalidator
}

// New returns ledger service struct to manage wallet business logic.
// A nil cache disables snapshot invalidation.
func New(lr Repo, as accountdelivery.Service, pub events.Publisher, cache Invalidator) *Service {
	return &Service{
		repo:           lr,
		accountService: as,
		publisher:      pub,
		cache:          cache,
	}
}

func (s *Service) committed(ctx context.Context, transactions ...domain.Transaction) {
	l := zerolog.Ctx(ctx)

	for _, t := range transactions {
		if s.cache != nil {
			if err := s.cache.Del(ctx, rediscache.AccountKey(t.AccountID)); err != nil {
				l.Warn().Err(err).Send()
			}
		}

		if err := s.publisher.Publish(ctx, t); err != nil {
			l.Error().Err(err).Int64("transaction_id", t.ID).Msg("event publish failed")
		}
	}
}

// Deposit credits the account and returns the updated account together with
// the appended transaction.
func (s *Service) Deposit(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error) {
	if amount <= 0 {
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
	}

	account, transaction, err := s.repo.Deposit(ctx, accountID, amount)
	if err != nil {
		return account, transaction, err
	}

	s.committed(ctx, transaction)

	return account, transaction, nil
}

// Withdraw debits the account and returns the updated account together with
// the appended transaction. Overdrafts fail with ErrInsufficientFunds and
// mutate nothing.
func (s *Service) Withdraw(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error) {
	if amount <= 0 {
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
	}

	account, err := s.accountService.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	if account.Balance < amount {
		return domain.Account{}, domain.Transaction{}, domain.ErrInsufficientFunds
	}

	account, transaction, err := s.repo.Withdraw(ctx, accountID, amount)
	if err != nil {
		return account, transaction, err
	}

	s.committed(ctx, transaction)

	return account, transaction, nil
}

func (s *Service) validTransfer(ctx context.Context, fromAccountID, toAccountID string, amount int64) error {
	l := zerolog.Ctx(ctx)

	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	if fromAccountID == toAccountID {
		return domain.ErrSameAccountTransfer
	}

	fromAccount, err := s.accountService.Get(ctx, fromAccountID)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	if fromAccount.Balance < amount {
		return domain.ErrInsufficientFunds
	}

	if _, err := s.accountService.Get(ctx, toAccountID); err != nil {
		l.Info().Err(err).Send()
		return err
	}

	return nil
}

// Transfer checks the transfer request and then executes it atomically.
func (s *Service) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount int64) (domain.TransferTxResult, error) {
	if err := s.validTransfer(ctx, fromAccountID, toAccountID, amount); err != nil {
		return domain.TransferTxResult{}, err
	}

	result, err := s.repo.Transfer(ctx, fromAccountID, toAccountID, amount)
	if err != nil {
		return result, err
	}

	s.committed(ctx, result.FromTransaction, result.ToTransaction)

	return result, nil
}

// History returns one page of the account's transactions, most recent
// first.
func (s *Service) History(ctx context.Context, accountID string, pageSize, pageID int32) ([]domain.Transaction, error) {
	if _, err := s.accountService.Get(ctx, accountID); err != nil {
		return nil, err
	}

	arg := domain.ListTransactionsParams{
		AccountID: accountID,
		Limit:     pageSize,
		Offset:    (pageID - 1) * pageSize,
	}

	transactions, err := s.repo.List(ctx, arg)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
