package accountrepo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/business-nexus/nexus/internal/domain"
)

// RepoMem is an in-memory account store guarded by a RWMutex.
//
// It backs tests and broker-less demo deployments; the same repository
// interface is served by RepoPGS in production.
type RepoMem struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewRepoMem returns an empty in-memory account store.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[string]domain.Account),
	}
}

// Seed loads fixture accounts, replacing existing records with the same id.
func (r *RepoMem) Seed(accounts ...domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
}

// Create creates the account with a zero balance and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == arg.Email {
			return domain.Account{}, domain.ErrEmailAlreadyExists
		}
	}

	if !domain.IsValidRole(arg.Role) {
		return domain.Account{}, domain.ErrUnknownRole
	}

	a := domain.Account{
		ID:             arg.ID,
		Role:           arg.Role,
		Name:           arg.Name,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		AvatarURL:      arg.AvatarURL,
		CreatedAt:      time.Now().UTC(),
	}

	r.accounts[a.ID] = a

	return a, nil
}

// Get returns the account with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetByEmail returns the account with the given email.
func (r *RepoMem) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}

	return domain.Account{}, domain.ErrAccountNotFound
}

// UpdateProfile replaces the profile fields of the account and returns the
// updated record. The stored balance and credentials always win over
// whatever the caller carries.
func (r *RepoMem) UpdateProfile(ctx context.Context, a domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[a.ID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a.Balance = stored.Balance
	a.HashedPassword = stored.HashedPassword
	a.Email = stored.Email
	a.Role = stored.Role
	a.CreatedAt = stored.CreatedAt

	r.accounts[a.ID] = a

	return a, nil
}

// UpdatePassword replaces the hashed password of the account.
func (r *RepoMem) UpdatePassword(ctx context.Context, id, hashedPassword string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a.HashedPassword = hashedPassword
	r.accounts[id] = a

	return a, nil
}

// AddBalance adds the given delta to the account balance. A delta that
// would take the balance below zero fails with ErrInsufficientFunds, one
// that would overflow it fails with ErrBalanceOverflow; either way the
// record is left unchanged.
func (r *RepoMem) AddBalance(ctx context.Context, delta int64, id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addBalanceLocked(delta, id)
}

func (r *RepoMem) addBalanceLocked(delta int64, id string) (domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if delta > 0 && a.Balance > math.MaxInt64-delta {
		return domain.Account{}, domain.ErrBalanceOverflow
	}

	if a.Balance+delta < 0 {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	a.Balance += delta
	r.accounts[id] = a

	return a, nil
}
