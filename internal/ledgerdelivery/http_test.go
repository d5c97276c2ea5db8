package ledgerdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/internal/middleware"
	"github.com/business-nexus/nexus/pkg/errorspkg"
	"github.com/business-nexus/nexus/pkg/moneypkg"
	"github.com/business-nexus/nexus/pkg/randompkg"
	"github.com/business-nexus/nexus/pkg/tokenpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupServer(t *testing.T, service Service, tokenMaker tokenpkg.Maker) *gin.Engine {
	t.Helper()

	handler := NewHandler(service)

	server := gin.New()
	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.POST("/accounts/:id/deposit", handler.Deposit)
	authRoutes.POST("/accounts/:id/withdraw", handler.Withdraw)
	authRoutes.POST("/accounts/:id/transfers", handler.Transfer)
	authRoutes.GET("/accounts/:id/transactions", handler.ListTransactions)

	return server
}

func newTokenMaker(t *testing.T) tokenpkg.Maker {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	return tokenMaker
}

type errorBody struct {
	Error string `json:"error,omitempty"`
}

func TestDeposit(t *testing.T) {
	accountID := randompkg.EntrepreneurID()
	tokenMaker := newTokenMaker(t)

	account := domain.Account{ID: accountID, Role: domain.RoleEntrepreneur, Balance: 21000}
	transaction := domain.Transaction{
		ID:        1,
		AccountID: accountID,
		Amount:    1000,
		Sender:    domain.PartyBank,
		Receiver:  accountID,
		Status:    domain.StatusCompleted,
	}

	testCases := []struct {
		name           string
		body           gin.H
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"amount": "10.00"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int64(1000))).
					Times(1).
					Return(account, transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NoAuthorization",
			body: gin.H{"amount": "10.00"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "WrongOwner",
			body: gin.H{"amount": "10.00"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, randompkg.InvestorID(), time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrAccountOwnerMismatch.Error(),
		},
		{
			name: "MalformedAmount",
			body: gin.H{"amount": "10.001"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      moneypkg.ErrMalformedAmount.Error(),
		},
		{
			name: "MissingAmount",
			body: gin.H{},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "NegativeAmount",
			body: gin.H{"amount": "-10.00"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int64(-1000))).
					Times(1).
					Return(domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name: "AccountNotFound",
			body: gin.H{"amount": "10.00"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int64(1000))).
					Times(1).
					Return(domain.Account{}, domain.Transaction{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name: "InternalServerError",
			body: gin.H{"amount": "10.00"},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int64(1000))).
					Times(1).
					Return(domain.Account{}, domain.Transaction{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, tokenMaker)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/accounts/"+accountID+"/deposit", bytes.NewReader(body))
			require.NoError(t, err)
			require.NoError(t, tc.setupAuth(t, req))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantError != "" {
				var got errorBody
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, tc.wantError, got.Error)
			}

			if tc.wantStatusCode == http.StatusOK {
				var got walletResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Empty(t, cmp.Diff(account, got.Data.Account))
				require.Empty(t, cmp.Diff(transaction, got.Data.Transaction))
				require.Equal(t, "210.00", got.Data.Balance)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	accountID := randompkg.EntrepreneurID()
	tokenMaker := newTokenMaker(t)

	account := domain.Account{ID: accountID, Role: domain.RoleEntrepreneur, Balance: 20500}
	transaction := domain.Transaction{
		ID:        2,
		AccountID: accountID,
		Amount:    500,
		Sender:    accountID,
		Receiver:  domain.PartyBank,
		Status:    domain.StatusCompleted,
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"amount": "5.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int64(500))).
					Times(1).
					Return(account, transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InsufficientFunds",
			body: gin.H{"amount": "5.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int64(500))).
					Times(1).
					Return(domain.Account{}, domain.Transaction{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, tokenMaker)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/accounts/"+accountID+"/withdraw", bytes.NewReader(body))
			require.NoError(t, err)
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantError != "" {
				var got errorBody
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, tc.wantError, got.Error)
			}
		})
	}
}

func TestTransferHandler(t *testing.T) {
	fromAccountID := randompkg.EntrepreneurID()
	toAccountID := randompkg.InvestorID()
	tokenMaker := newTokenMaker(t)

	result := domain.TransferTxResult{
		FromAccount: domain.Account{ID: fromAccountID, Balance: 18500},
		ToAccount:   domain.Account{ID: toAccountID, Balance: 52000},
		FromTransaction: domain.Transaction{
			ID: 3, AccountID: fromAccountID, Amount: 2000,
			Sender: fromAccountID, Receiver: toAccountID, Status: domain.StatusCompleted,
		},
		ToTransaction: domain.Transaction{
			ID: 4, AccountID: toAccountID, Amount: 2000,
			Sender: fromAccountID, Receiver: toAccountID, Status: domain.StatusCompleted,
		},
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"to_account_id": toAccountID, "amount": "20.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(fromAccountID), gomock.Eq(toAccountID), gomock.Eq(int64(2000))).
					Times(1).
					Return(result, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingReceiver",
			body: gin.H{"amount": "20.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "SelfTransfer",
			body: gin.H{"to_account_id": fromAccountID, "amount": "20.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(fromAccountID), gomock.Eq(fromAccountID), gomock.Eq(int64(2000))).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrSameAccountTransfer)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrSameAccountTransfer.Error(),
		},
		{
			name: "InsufficientFunds",
			body: gin.H{"to_account_id": toAccountID, "amount": "20.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(fromAccountID), gomock.Eq(toAccountID), gomock.Eq(int64(2000))).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, tokenMaker)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/accounts/"+fromAccountID+"/transfers", bytes.NewReader(body))
			require.NoError(t, err)
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthorizationTypeBearer, fromAccountID, time.Minute))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantError != "" {
				var got errorBody
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, tc.wantError, got.Error)
			}

			if tc.wantStatusCode == http.StatusOK {
				var got transferResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Empty(t, cmp.Diff(result, got.Data.Result))
				require.Equal(t, "185.00", got.Data.FromBalance)
				require.Equal(t, "520.00", got.Data.ToBalance)
			}
		})
	}
}

func TestListTransactions(t *testing.T) {
	accountID := randompkg.InvestorID()
	tokenMaker := newTokenMaker(t)

	transactions := []domain.Transaction{
		{ID: 2, AccountID: accountID, Amount: 500, Sender: accountID, Receiver: domain.PartyBank},
		{ID: 1, AccountID: accountID, Amount: 1000, Sender: domain.PartyBank, Receiver: accountID},
	}

	testCases := []struct {
		name           string
		query          string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name:  "OK",
			query: "?page_id=1&page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					History(gomock.Any(), gomock.Eq(accountID), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(transactions, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "MissingPage",
			query: "",
			buildStubs: func(service *MockService) {
				service.EXPECT().History(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:  "PageSizeTooLarge",
			query: "?page_id=1&page_size=500",
			buildStubs: func(service *MockService) {
				service.EXPECT().History(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, tokenMaker)

			req, err := http.NewRequest(http.MethodGet, "/accounts/"+accountID+"/transactions"+tc.query, nil)
			require.NoError(t, err)
			require.NoError(t, middleware.AddAuthorization(req, tokenMaker, middleware.AuthorizationTypeBearer, accountID, time.Minute))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantStatusCode == http.StatusOK {
				var got listResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Empty(t, cmp.Diff(transactions, got.Data.Transactions))
			}
		})
	}
}
