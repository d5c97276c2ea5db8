package otprepo

import (
	"context"
	"sync"
	"time"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/errorspkg"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// RepoMem is an in-memory credential store for tests and single-instance
// demo deployments.
type RepoMem struct {
	mu       sync.Mutex
	otps     map[string]entry
	resets   map[string]entry
	otpTTL   time.Duration
	resetTTL time.Duration
}

// NewRepoMem returns otp RepoMem with the given credential lifetimes.
func NewRepoMem(otpTTL, resetTTL time.Duration) *RepoMem {
	return &RepoMem{
		otps:     make(map[string]entry),
		resets:   make(map[string]entry),
		otpTTL:   otpTTL,
		resetTTL: resetTTL,
	}
}

// CreateOTP issues a fresh 6-digit code for the account, replacing any
// outstanding one.
func (r *RepoMem) CreateOTP(ctx context.Context, accountID string) (string, error) {
	code, err := newOTPCode()
	if err != nil {
		return "", errorspkg.ErrInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.otps[accountID] = entry{value: code, expiresAt: time.Now().Add(r.otpTTL)}

	return code, nil
}

// VerifyOTP consumes the outstanding code for the account. Any attempt,
// right or wrong, burns the code.
func (r *RepoMem) VerifyOTP(ctx context.Context, accountID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.otps[accountID]
	delete(r.otps, accountID)

	if !ok || time.Now().After(e.expiresAt) || e.value != code {
		return domain.ErrInvalidOTP
	}

	return nil
}

// CreateResetToken issues a fresh password reset token for the account.
func (r *RepoMem) CreateResetToken(ctx context.Context, accountID string) (string, error) {
	token, err := newResetToken()
	if err != nil {
		return "", errorspkg.ErrInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.resets[token] = entry{value: accountID, expiresAt: time.Now().Add(r.resetTTL)}

	return token, nil
}

// ConsumeResetToken redeems the token exactly once and returns the account
// it was issued for.
func (r *RepoMem) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.resets[token]
	delete(r.resets, token)

	if !ok || time.Now().After(e.expiresAt) {
		return "", domain.ErrInvalidResetToken
	}

	return e.value, nil
}
