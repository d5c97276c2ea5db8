// Package authdelivery manages delivery layer of authentication.
package authdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/errorspkg"
	"github.com/business-nexus/nexus/pkg/web"
)

// Service provides service layer interface needed by auth delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package authdelivery
type Service interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (domain.Account, error)
	Login(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) (domain.Account, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// SessionMaker facilitates session creation and renewal.
//
//go:generate mockgen -source http.go -destination http_mock.go -package authdelivery
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
	RenewAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error)
}

// Handler facilitates auth delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns auth handler.
func NewHandler(as Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      as,
		sessionMaker: sm,
	}
}

func bindJSON(gctx *gin.Context, req any) bool {
	l := zerolog.Ctx(gctx.Request.Context())

	if err := gctx.ShouldBindJSON(req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return false
	}

	return true
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,role"`
}

type accountData struct {
	Account domain.Account `json:"account"`
}

// Register handles http request to create an account.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req registerRequest
	if !bindJSON(gctx, &req) {
		return
	}

	account, err := h.service.Register(ctx, req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch err {
		case domain.ErrEmailAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrUnknownRole:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	arg := domain.CreateSessionParams{
		AccountID: account.ID,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		Data:                  accountData{account},
	}

	gctx.JSON(http.StatusOK, res)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles http request to start a login. On success a one-time code
// is issued out of band and the client proceeds to OTP verification.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if !bindJSON(gctx, &req) {
		return
	}

	err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound, domain.ErrWrongPassword:
			// One answer for both, so the endpoint does not leak which
			// emails are registered.
			gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrWrongPassword))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"status": "one-time code sent"}})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// VerifyOTP handles http request to finish a login with a one-time code.
func (h *Handler) VerifyOTP(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req verifyOTPRequest
	if !bindJSON(gctx, &req) {
		return
	}

	account, err := h.service.VerifyOTP(ctx, req.Email, req.Code)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound, domain.ErrInvalidOTP:
			gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrInvalidOTP))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	arg := domain.CreateSessionParams{
		AccountID: account.ID,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		Data:                  accountData{account},
	}

	gctx.JSON(http.StatusOK, res)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword handles http request to start a password reset.
func (h *Handler) ForgotPassword(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req forgotPasswordRequest
	if !bindJSON(gctx, &req) {
		return
	}

	err := h.service.ForgotPassword(ctx, req.Email)
	if err != nil && err != domain.ErrAccountNotFound {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	if err == domain.ErrAccountNotFound {
		l.Info().Str("email", req.Email).Msg("password reset requested for unknown email")
	}

	// Same answer whether or not the email exists.
	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"status": "reset instructions sent"}})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword handles http request to finish a password reset.
func (h *Handler) ResetPassword(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req resetPasswordRequest
	if !bindJSON(gctx, &req) {
		return
	}

	err := h.service.ResetPassword(ctx, req.Token, req.NewPassword)
	if err != nil {
		switch err {
		case domain.ErrInvalidResetToken:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"status": "password reset"}})
}

type renewRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RenewAccessToken handles http request to exchange a refresh token for a
// fresh access token.
func (h *Handler) RenewAccessToken(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req renewRequest
	if !bindJSON(gctx, &req) {
		return
	}

	accessToken, accessTokenExpiresAt, err := h.sessionMaker.RenewAccessToken(ctx, req.RefreshToken)
	if err != nil {
		switch err {
		case domain.ErrSessionNotFound,
			domain.ErrBlockedSession,
			domain.ErrInvalidSessionAccount,
			domain.ErrMismatchedRefreshToken,
			domain.ErrExpiredSession:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		if err == errorspkg.ErrInternal {
			gctx.JSON(http.StatusInternalServerError, web.Error(err))
			return
		}

		// Token verification failures.
		gctx.JSON(http.StatusUnauthorized, web.Error(err))

		return
	}

	res := web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessTokenExpiresAt,
	}

	gctx.JSON(http.StatusOK, res)
}
