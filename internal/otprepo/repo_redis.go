// Package otprepo stores one-time login codes and password reset tokens.
//
// Credentials are server issued, random, TTL bound and single use.
package otprepo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/errorspkg"
)

const (
	otpKeyPrefix   = "otp:"
	resetKeyPrefix = "reset:"
)

func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// RepoRedis keeps codes in redis so every instance of the service sees
// them and expiry needs no bookkeeping.
type RepoRedis struct {
	client   *redis.Client
	otpTTL   time.Duration
	resetTTL time.Duration
}

// NewRepoRedis returns otp RepoRedis with the given credential lifetimes.
func NewRepoRedis(client *redis.Client, otpTTL, resetTTL time.Duration) *RepoRedis {
	return &RepoRedis{
		client:   client,
		otpTTL:   otpTTL,
		resetTTL: resetTTL,
	}
}

// CreateOTP issues a fresh 6-digit code for the account, replacing any
// outstanding one.
func (r *RepoRedis) CreateOTP(ctx context.Context, accountID string) (string, error) {
	l := zerolog.Ctx(ctx)

	code, err := newOTPCode()
	if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	if err := r.client.Set(ctx, otpKeyPrefix+accountID, code, r.otpTTL).Err(); err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return code, nil
}

// VerifyOTP consumes the outstanding code for the account. Any attempt,
// right or wrong, burns the code; a failed guess forces a fresh login.
func (r *RepoRedis) VerifyOTP(ctx context.Context, accountID, code string) error {
	l := zerolog.Ctx(ctx)

	stored, err := r.client.GetDel(ctx, otpKeyPrefix+accountID).Result()
	if err == redis.Nil {
		return domain.ErrInvalidOTP
	} else if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if stored != code {
		return domain.ErrInvalidOTP
	}

	return nil
}

// CreateResetToken issues a fresh password reset token for the account.
func (r *RepoRedis) CreateResetToken(ctx context.Context, accountID string) (string, error) {
	l := zerolog.Ctx(ctx)

	token, err := newResetToken()
	if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	if err := r.client.Set(ctx, resetKeyPrefix+token, accountID, r.resetTTL).Err(); err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return token, nil
}

// ConsumeResetToken redeems the token exactly once and returns the account
// it was issued for.
func (r *RepoRedis) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	l := zerolog.Ctx(ctx)

	accountID, err := r.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", domain.ErrInvalidResetToken
	} else if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return accountID, nil
}
