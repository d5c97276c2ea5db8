// Package authservice manages registration, login and credential recovery.
package authservice

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/errorspkg"
	"github.com/business-nexus/nexus/pkg/passpkg"
)

// AccountRepo provides data access layer interface needed by auth service
// layer.
type AccountRepo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	UpdatePassword(ctx context.Context, id, hashedPassword string) (domain.Account, error)
}

// OTPRepo issues and redeems single-use credentials.
type OTPRepo interface {
	CreateOTP(ctx context.Context, accountID string) (string, error)
	VerifyOTP(ctx context.Context, accountID, code string) error
	CreateResetToken(ctx context.Context, accountID string) (string, error)
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// Service facilitates auth service layer logic.
type Service struct {
	repo AccountRepo
	otp  OTPRepo
}

// New returns auth service struct to manage auth business logic.
func New(ar AccountRepo, otp OTPRepo) *Service {
	return &Service{
		repo: ar,
		otp:  otp,
	}
}

func newAccountID(role domain.Role) string {
	return string(role[0]) + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func defaultAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name)
}

// Register creates an account with a zero balance for the given role.
func (s *Service) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if !domain.IsValidRole(role) {
		return domain.Account{}, domain.ErrUnknownRole
	}

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	arg := domain.CreateAccountParams{
		ID:             newAccountID(role),
		Role:           role,
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		AvatarURL:      defaultAvatarURL(name),
	}

	account, err := s.repo.Create(ctx, arg)
	if err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// Login checks the credentials and, on success, issues a one-time code.
// Code delivery over a mail rail is out of scope; the code is surfaced in
// the debug log instead.
func (s *Service) Login(ctx context.Context, email, password string) error {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := passpkg.Check(password, account.HashedPassword); err != nil {
		l.Warn().Err(err).Send()
		return domain.ErrWrongPassword
	}

	code, err := s.otp.CreateOTP(ctx, account.ID)
	if err != nil {
		return err
	}

	l.Info().Str("account_id", account.ID).Msg("one-time code issued")
	l.Debug().Str("code", code).Msg("one-time code (mail delivery stub)")

	return nil
}

// VerifyOTP redeems the one-time code and returns the authenticated
// account.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (domain.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.otp.VerifyOTP(ctx, account.ID, code); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// ForgotPassword issues a single-use reset token for the account with the
// given email. Token delivery is surfaced in the debug log in place of a
// mail rail.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.otp.CreateResetToken(ctx, account.ID)
	if err != nil {
		return err
	}

	l.Info().Str("account_id", account.ID).Msg("password reset token issued")
	l.Debug().Str("token", token).Msg("reset token (mail delivery stub)")

	return nil
}

// ResetPassword redeems the reset token and replaces the account password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := zerolog.Ctx(ctx)

	accountID, err := s.otp.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}

	hashedPassword, err := passpkg.Hash(newPassword)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if _, err := s.repo.UpdatePassword(ctx, accountID, hashedPassword); err != nil {
		return err
	}

	return nil
}
