package authdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/errorspkg"
	"github.com/business-nexus/nexus/pkg/randompkg"
	"github.com/business-nexus/nexus/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("role", ValidRole); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

func setupServer(t *testing.T, service Service, sessionMaker SessionMaker) *gin.Engine {
	t.Helper()

	handler := NewHandler(service, sessionMaker)

	server := gin.New()
	server.POST("/auth/register", handler.Register)
	server.POST("/auth/login", handler.Login)
	server.POST("/auth/otp/verify", handler.VerifyOTP)
	server.POST("/auth/password/forgot", handler.ForgotPassword)
	server.POST("/auth/password/reset", handler.ResetPassword)
	server.POST("/sessions/renew", handler.RenewAccessToken)

	return server
}

func postJSON(t *testing.T, server *gin.Engine, path string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	return recorder
}

func TestRegister(t *testing.T) {
	name := randompkg.Name()
	email := randompkg.Email()

	account := domain.Account{
		ID:    randompkg.EntrepreneurID(),
		Role:  domain.RoleEntrepreneur,
		Name:  name,
		Email: email,
	}

	session := domain.Session{
		AccountID:    account.ID,
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second).UTC(),
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService, sessionMaker *MockSessionMaker)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"name": name, "email": email, "password": "secret123", "role": "entrepreneur"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Register(gomock.Any(), gomock.Eq(name), gomock.Eq(email), gomock.Eq("secret123"), gomock.Eq(domain.RoleEntrepreneur)).
					Times(1).
					Return(account, nil)
				sessionMaker.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					Return("access-token", time.Now().Add(15*time.Minute), session, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidRole",
			body: gin.H{"name": name, "email": email, "password": "secret123", "role": "admin"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "ShortPassword",
			body: gin.H{"name": name, "email": email, "password": "abc", "role": "investor"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "EmailAlreadyExists",
			body: gin.H{"name": name, "email": email, "password": "secret123", "role": "entrepreneur"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrEmailAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrEmailAlreadyExists.Error(),
		},
		{
			name: "InternalServerError",
			body: gin.H{"name": name, "email": email, "password": "secret123", "role": "entrepreneur"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
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
			sessionMaker := NewMockSessionMaker(ctrl)
			tc.buildStubs(service, sessionMaker)

			server := setupServer(t, service, sessionMaker)

			recorder := postJSON(t, server, "/auth/register", tc.body)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var got web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))

			if tc.wantError != "" {
				require.Equal(t, tc.wantError, got.Error)
			}

			if tc.wantStatusCode == http.StatusOK {
				require.Equal(t, "access-token", got.AccessToken)
				require.Equal(t, session.RefreshToken, got.RefreshToken)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	email := randompkg.Email()

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"email": email, "password": "secret123"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Login(gomock.Any(), gomock.Eq(email), gomock.Eq("secret123")).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "WrongPassword",
			body: gin.H{"email": email, "password": "wrongpass"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Login(gomock.Any(), gomock.Eq(email), gomock.Eq("wrongpass")).
					Times(1).
					Return(domain.ErrWrongPassword)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrWrongPassword.Error(),
		},
		{
			// Unknown emails answer exactly like wrong passwords.
			name: "UnknownEmail",
			body: gin.H{"email": email, "password": "secret123"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Login(gomock.Any(), gomock.Eq(email), gomock.Eq("secret123")).
					Times(1).
					Return(domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrWrongPassword.Error(),
		},
		{
			name: "MalformedEmail",
			body: gin.H{"email": "not-an-email", "password": "secret123"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
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
			sessionMaker := NewMockSessionMaker(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, sessionMaker)

			recorder := postJSON(t, server, "/auth/login", tc.body)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantError != "" {
				var got web.Response
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, tc.wantError, got.Error)
			}
		})
	}
}

func TestVerifyOTP(t *testing.T) {
	email := randompkg.Email()

	account := domain.Account{
		ID:    randompkg.InvestorID(),
		Role:  domain.RoleInvestor,
		Email: email,
	}

	session := domain.Session{
		AccountID:    account.ID,
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second).UTC(),
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService, sessionMaker *MockSessionMaker)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"email": email, "code": "123456"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					VerifyOTP(gomock.Any(), gomock.Eq(email), gomock.Eq("123456")).
					Times(1).
					Return(account, nil)
				sessionMaker.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateSessionParams{})).
					Times(1).
					Return("access-token", time.Now().Add(15*time.Minute), session, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidCode",
			body: gin.H{"email": email, "code": "999999"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().
					VerifyOTP(gomock.Any(), gomock.Eq(email), gomock.Eq("999999")).
					Times(1).
					Return(domain.Account{}, domain.ErrInvalidOTP)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrInvalidOTP.Error(),
		},
		{
			name: "CodeWrongLength",
			body: gin.H{"email": email, "code": "123"},
			buildStubs: func(service *MockService, sessionMaker *MockSessionMaker) {
				service.EXPECT().VerifyOTP(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
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
			sessionMaker := NewMockSessionMaker(ctrl)
			tc.buildStubs(service, sessionMaker)

			server := setupServer(t, service, sessionMaker)

			recorder := postJSON(t, server, "/auth/otp/verify", tc.body)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var got web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))

			if tc.wantError != "" {
				require.Equal(t, tc.wantError, got.Error)
			}

			if tc.wantStatusCode == http.StatusOK {
				require.Equal(t, "access-token", got.AccessToken)
				require.Equal(t, session.RefreshToken, got.RefreshToken)

				raw, err := json.Marshal(got.Data)
				require.NoError(t, err)

				var data accountData
				require.NoError(t, json.Unmarshal(raw, &data))
				require.Empty(t, cmp.Diff(account, data.Account))
			}
		})
	}
}

func TestForgotPassword(t *testing.T) {
	email := randompkg.Email()

	testCases := []struct {
		name           string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ForgotPassword(gomock.Any(), gomock.Eq(email)).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// Unknown emails get the same answer as known ones.
			name: "UnknownEmail",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ForgotPassword(gomock.Any(), gomock.Eq(email)).
					Times(1).
					Return(domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			sessionMaker := NewMockSessionMaker(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, sessionMaker)

			recorder := postJSON(t, server, "/auth/password/forgot", gin.H{"email": email})
			require.Equal(t, tc.wantStatusCode, recorder.Code)
		})
	}
}

func TestResetPassword(t *testing.T) {
	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"token": "reset-token", "new_password": "newpass1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ResetPassword(gomock.Any(), gomock.Eq("reset-token"), gomock.Eq("newpass1")).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidToken",
			body: gin.H{"token": "bogus", "new_password": "newpass1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ResetPassword(gomock.Any(), gomock.Eq("bogus"), gomock.Eq("newpass1")).
					Times(1).
					Return(domain.ErrInvalidResetToken)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrInvalidResetToken.Error(),
		},
		{
			name: "ShortPassword",
			body: gin.H{"token": "reset-token", "new_password": "abc"},
			buildStubs: func(service *MockService) {
				service.EXPECT().ResetPassword(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
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
			sessionMaker := NewMockSessionMaker(ctrl)
			tc.buildStubs(service)

			server := setupServer(t, service, sessionMaker)

			recorder := postJSON(t, server, "/auth/password/reset", tc.body)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantError != "" {
				var got web.Response
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, tc.wantError, got.Error)
			}
		})
	}
}

func TestRenewAccessToken(t *testing.T) {
	testCases := []struct {
		name           string
		buildStubs     func(sessionMaker *MockSessionMaker)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(sessionMaker *MockSessionMaker) {
				sessionMaker.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq("refresh-token")).
					Times(1).
					Return("new-access-token", time.Now().Add(15*time.Minute), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "ExpiredSession",
			buildStubs: func(sessionMaker *MockSessionMaker) {
				sessionMaker.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq("refresh-token")).
					Times(1).
					Return("", time.Time{}, domain.ErrExpiredSession)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrExpiredSession.Error(),
		},
		{
			name: "InternalServerError",
			buildStubs: func(sessionMaker *MockSessionMaker) {
				sessionMaker.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq("refresh-token")).
					Times(1).
					Return("", time.Time{}, errorspkg.ErrInternal)
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
			sessionMaker := NewMockSessionMaker(ctrl)
			tc.buildStubs(sessionMaker)

			server := setupServer(t, service, sessionMaker)

			recorder := postJSON(t, server, "/sessions/renew", gin.H{"refresh_token": "refresh-token"})
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var got web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))

			if tc.wantError != "" {
				require.Equal(t, tc.wantError, got.Error)
			}

			if tc.wantStatusCode == http.StatusOK {
				require.Equal(t, "new-access-token", got.AccessToken)
			}
		})
	}
}
