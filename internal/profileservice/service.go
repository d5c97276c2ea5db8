// Package profileservice enforces role-scoped profile updates.
package profileservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/internal/rediscache"
)

// Repo provides data access layer interface needed by the profile service.
type Repo interface {
	Get(ctx context.Context, id string) (domain.Account, error)
	UpdateProfile(ctx context.Context, a domain.Account) (domain.Account, error)
}

// Invalidator drops cached account snapshots after profile changes so the
// session layer sees the fresh record.
type Invalidator interface {
	Del(ctx context.Context, key string) error
}

// Service facilitates profile update authorization and application.
type Service struct {
	repo  Repo
	cache Invalidator
}

// New returns profile service struct. A nil cache disables snapshot
// invalidation.
func New(r Repo, cache Invalidator) *Service {
	return &Service{
		repo:  r,
		cache: cache,
	}
}

// Update filters the proposed updates through the account role's allow list
// and applies the surviving subset atomically, returning the merged record.
//
// An account with a role outside the known set is a data integrity
// violation: the record is refused further mutation and ErrUnknownRole is
// returned.
func (s *Service) Update(ctx context.Context, accountID string, updates domain.ProfileUpdates) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	allowed, ok := allowedFields[account.Role]
	if !ok {
		l.Error().Str("account_id", accountID).Str("role", string(account.Role)).
			Msg("account has no valid role, refusing profile update")
		return domain.Account{}, domain.ErrUnknownRole
	}

	for field, value := range updates {
		if allowed[field] {
			applyField(&account, field, value)
		}
	}

	updated, err := s.repo.UpdateProfile(ctx, account)
	if err != nil {
		return domain.Account{}, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, rediscache.AccountKey(accountID)); err != nil {
			l.Warn().Err(err).Send()
		}
	}

	return updated, nil
}
