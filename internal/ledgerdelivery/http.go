// Package ledgerdelivery manages delivery layer of the wallet ledger.
package ledgerdelivery

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
	"github.com/business-nexus/nexus/pkg/moneypkg"
	"github.com/business-nexus/nexus/pkg/tokenpkg"
	"github.com/business-nexus/nexus/pkg/web"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Deposit(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error)
	Withdraw(ctx context.Context, accountID string, amount int64) (domain.Account, domain.Transaction, error)
	Transfer(ctx context.Context, fromAccountID, toAccountID string, amount int64) (domain.TransferTxResult, error)
	History(ctx context.Context, accountID string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(ls Service) *Handler {
	return &Handler{service: ls}
}

type uriRequest struct {
	ID string `uri:"id" binding:"required"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type transferRequest struct {
	ToAccountID string `json:"to_account_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type walletData struct {
	Account     domain.Account     `json:"account"`
	Transaction domain.Transaction `json:"transaction"`
	// Balance is the account balance rendered as a decimal string.
	Balance string `json:"balance"`
}

func newWalletData(account domain.Account, transaction domain.Transaction) walletData {
	return walletData{
		Account:     account,
		Transaction: transaction,
		Balance:     moneypkg.Format(account.Balance),
	}
}

type walletResponse struct {
	Data walletData `json:"data,omitempty"`
}

func (h *Handler) authorizedAccountID(gctx *gin.Context) (string, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return "", false
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	if req.ID != authPayload.AccountID {
		l.Warn().Str("account_id", req.ID).Msg("wallet access denied")
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrAccountOwnerMismatch))

		return "", false
	}

	return req.ID, true
}

func errStatus(err error) int {
	switch err {
	case domain.ErrInvalidAmount, domain.ErrSameAccountTransfer, moneypkg.ErrMalformedAmount:
		return http.StatusBadRequest
	case domain.ErrInsufficientFunds:
		return http.StatusConflict
	case domain.ErrAccountNotFound:
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

func writeErr(gctx *gin.Context, err error) {
	status := errStatus(err)
	if status == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(status, web.Error(err))
}

func bindAmount(gctx *gin.Context) (int64, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return 0, false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return 0, false
	}

	amount, err := moneypkg.Parse(req.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return 0, false
	}

	return amount, true
}

// Deposit handles http request to credit the wallet.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	accountID, ok := h.authorizedAccountID(gctx)
	if !ok {
		return
	}

	amount, ok := bindAmount(gctx)
	if !ok {
		return
	}

	account, transaction, err := h.service.Deposit(ctx, accountID, amount)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, walletResponse{Data: newWalletData(account, transaction)})
}

// Withdraw handles http request to debit the wallet.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	accountID, ok := h.authorizedAccountID(gctx)
	if !ok {
		return
	}

	amount, ok := bindAmount(gctx)
	if !ok {
		return
	}

	account, transaction, err := h.service.Withdraw(ctx, accountID, amount)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, walletResponse{Data: newWalletData(account, transaction)})
}

type transferData struct {
	Result domain.TransferTxResult `json:"transfer"`
	// FromBalance and ToBalance are the post-transfer balances rendered
	// as decimal strings.
	FromBalance string `json:"from_balance"`
	ToBalance   string `json:"to_balance"`
}

type transferResponse struct {
	Data transferData `json:"data,omitempty"`
}

// Transfer handles http request to move money to another account.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	accountID, ok := h.authorizedAccountID(gctx)
	if !ok {
		return
	}

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	amount, err := moneypkg.Parse(req.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	result, err := h.service.Transfer(ctx, accountID, req.ToAccountID, amount)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, transferResponse{Data: transferData{
		Result:      result,
		FromBalance: moneypkg.Format(result.FromAccount.Balance),
		ToBalance:   moneypkg.Format(result.ToAccount.Balance),
	}})
}

type listData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// ListTransactions handles http request to page through wallet history.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	accountID, ok := h.authorizedAccountID(gctx)
	if !ok {
		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	transactions, err := h.service.History(ctx, accountID, req.PageSize, req.PageID)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, listResponse{Data: listData{transactions}})
}
