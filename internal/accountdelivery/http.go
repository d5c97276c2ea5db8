// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/internal/middleware"
	"github.com/business-nexus/nexus/pkg/errorspkg"
	"github.com/business-nexus/nexus/pkg/tokenpkg"
	"github.com/business-nexus/nexus/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Get(ctx context.Context, id string) (domain.Account, error)
}

// ProfileService applies role-scoped profile updates.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type ProfileService interface {
	Update(ctx context.Context, accountID string, updates domain.ProfileUpdates) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service  Service
	profiles ProfileService
}

// NewHandler returns account handler.
func NewHandler(as Service, ps ProfileService) *Handler {
	return &Handler{
		service:  as,
		profiles: ps,
	}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type uriRequest struct {
	ID string `uri:"id" binding:"required"`
}

// Get handles http request to get an account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	if req.ID != authPayload.AccountID {
		l.Warn().Str("account_id", req.ID).Msg("account access denied")
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrAccountOwnerMismatch))

		return
	}

	account, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// UpdateProfile handles http request to update an account profile.
//
// The body is an arbitrary JSON object of proposed field updates; fields
// outside the role allow list are dropped silently.
func (h *Handler) UpdateProfile(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	if req.ID != authPayload.AccountID {
		l.Warn().Str("account_id", req.ID).Msg("profile update denied")
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrAccountOwnerMismatch))

		return
	}

	var updates domain.ProfileUpdates
	if err := gctx.ShouldBindJSON(&updates); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	account, err := h.profiles.Update(ctx, req.ID, updates)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrUnknownRole:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}
