// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/internal/rediscache"
)

// Repo provides data access layer interface needed by account service layer.
type Repo interface {
	Get(ctx context.Context, id string) (domain.Account, error)
}

// Cache provides the snapshot cache interface needed by the account service.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Service facilitates account service layer logic.
type Service struct {
	repo  Repo
	cache Cache
}

// New returns account service struct to manage account business logic.
// A nil cache disables snapshot caching.
func New(ar Repo, cache Cache) *Service {
	return &Service{
		repo:  ar,
		cache: cache,
	}
}

// Get returns the account with the given id, reading through the snapshot
// cache when one is configured. Cache failures degrade to a repo read.
func (s *Service) Get(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if s.cache != nil {
		var cached domain.Account

		found, err := s.cache.Get(ctx, rediscache.AccountKey(id), &cached)
		if err != nil {
			l.Warn().Err(err).Send()
		} else if found {
			return cached, nil
		}
	}

	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return account, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rediscache.AccountKey(id), account); err != nil {
			l.Warn().Err(err).Send()
		}
	}

	return account, nil
}
