package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"splitpay/config"
	"splitpay/internal/delivery/http/middleware"
	"splitpay/internal/delivery/http/router"
	"splitpay/internal/delivery/http/router/handler"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/domain/service"
	"splitpay/internal/infra/ratelimit"
	mockSvc "splitpay/internal/mocks/service"
	mockUsecase "splitpay/internal/mocks/usecase"
	"splitpay/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serverFixtures struct {
	echo         *echo.Echo
	uc           *mockUsecase.MockAuthUsecase
	tokenService *mockSvc.MockTokenService
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"

	return cfg
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) serverFixtures {
	return newTestServerWithConfig(t, newTestConfig(), limiter)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, limiter ratelimit.Limiter) serverFixtures {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := mockUsecase.NewMockAuthUsecase(t)
	tokenService := mockSvc.NewMockTokenService(t)

	e, err := NewEcho(cfg, logger)
	require.NoError(t, err)
	router.NewRouter(router.RouterParams{
		AuthHandler:         handler.NewAuthHandler(uc, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(tokenService),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(limiter),
	}).RegisterRoutes(e)

	return serverFixtures{echo: e, uc: uc, tokenService: tokenService}
}

func (f serverFixtures) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestServer_Health(t *testing.T) {
	f := newTestServer(t, nil)

	rec := f.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_Register_Created(t *testing.T) {
	f := newTestServer(t, nil)
	id := uuid.New()

	f.uc.EXPECT().
		Register(mock.Anything, &usecase.RegisterInput{Name: "Alice", Email: "a@x.com", Password: "p1", UPIID: "alice@upi"}).
		Return(&usecase.RegisterOutput{User: &usecase.UserOutput{ID: id, Name: "Alice", Email: "a@x.com"}}, nil)

	rec := f.do(http.MethodPost, "/register",
		`{"name":"Alice","email":"a@x.com","password":"p1","upi_id":"alice@upi"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t,
		`{"message":"User registered","user":{"id":"`+id.String()+`","name":"Alice","email":"a@x.com"}}`,
		rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestServer_Register_ValidationFailed(t *testing.T) {
	f := newTestServer(t, nil)

	rec := f.do(http.MethodPost, "/register", `{"name":"Alice","password":"p1"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid input", body["message"])
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errInfo["code"])
	assert.Contains(t, errInfo["details"], "email is required")
}

func TestServer_Register_InvalidEmail(t *testing.T) {
	f := newTestServer(t, nil)

	rec := f.do(http.MethodPost, "/register", `{"name":"Alice","email":"not-an-email","password":"p1"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email must be a valid email address")
}

func TestServer_Register_MalformedBody(t *testing.T) {
	f := newTestServer(t, nil)

	rec := f.do(http.MethodPost, "/register", `{"name":`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeBody(t, rec)["error"].(map[string]any)["code"])
}

func TestServer_Register_DuplicateEmail(t *testing.T) {
	f := newTestServer(t, nil)

	f.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "create user"))

	rec := f.do(http.MethodPost, "/register", `{"name":"Alice","email":"a@x.com","password":"p1"}`, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email is already registered", body["message"])
	assert.Equal(t, "USER_ALREADY_EXISTS", body["error"].(map[string]any)["code"])
}

func TestServer_Register_InternalErrorHidesDetails(t *testing.T) {
	f := newTestServer(t, nil)

	f.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(nil, errors.New("pq: connection reset"))

	rec := f.do(http.MethodPost, "/register", `{"name":"Alice","email":"a@x.com","password":"p1"}`, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Equal(t, "INTERNAL_ERROR", decodeBody(t, rec)["error"].(map[string]any)["code"])
}

func TestServer_Login(t *testing.T) {
	tests := []struct {
		name       string
		output     *usecase.LoginOutput
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			output:     &usecase.LoginOutput{Token: "signed.jwt"},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Login successful","token":"signed.jwt"}`,
		},
		{
			name:       "unknown email",
			err:        errors.Wrap(domainerrors.ErrUserNotFound, "login"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"User not found","error":{"code":"USER_NOT_FOUND"}}`,
		},
		{
			name:       "wrong password",
			err:        errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Invalid credentials","error":{"code":"INVALID_CREDENTIALS"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestServer(t, nil)

			f.uc.EXPECT().
				Login(mock.Anything, &usecase.LoginInput{Email: "a@x.com", Password: "p1"}).
				Return(tt.output, tt.err)

			rec := f.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"p1"}`, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestServer_Profile_RequiresBearerToken(t *testing.T) {
	f := newTestServer(t, nil)

	rec := f.do(http.MethodGet, "/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/user/profile", "", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.tokenService.EXPECT().ValidateToken("expired").Return(nil, errors.New("token is expired"))
	rec = f.do(http.MethodGet, "/user/profile", "", map[string]string{"Authorization": "Bearer expired"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeBody(t, rec)["error"].(map[string]any)["code"])
}

func TestServer_Profile(t *testing.T) {
	f := newTestServer(t, nil)
	id := uuid.New()

	f.tokenService.EXPECT().ValidateToken("good").Return(&service.Claims{UserID: id}, nil)
	f.uc.EXPECT().
		GetProfile(mock.Anything, id).
		Return(&usecase.UserOutput{ID: id, Name: "Alice", Email: "a@x.com", UPIID: "alice@upi"}, nil)

	rec := f.do(http.MethodGet, "/user/profile", "", map[string]string{"Authorization": "Bearer good"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"message":"Profile retrieved","user":{"id":"`+id.String()+`","name":"Alice","email":"a@x.com","upi_id":"alice@upi"}}`,
		rec.Body.String())
}

func TestServer_RateLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })
	f := newTestServer(t, limiter)

	f.uc.EXPECT().
		Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(&usecase.LoginOutput{Token: "t"}, nil).
		Times(2)

	for range 2 {
		rec := f.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"p1"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"p1"}`, nil)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeBody(t, rec)["error"].(map[string]any)["code"])
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestServer_RateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })
	f := newTestServer(t, limiter)

	f.uc.EXPECT().
		Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(&usecase.LoginOutput{Token: "t"}, nil).
		Times(2)

	codes := make([]int, 0, 5)
	for i := range 5 {
		rec := f.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"p1"}`, map[string]string{
			echo.HeaderXForwardedFor: fmt.Sprintf("10.0.0.%d", i+1),
			echo.HeaderXRealIP:       fmt.Sprintf("10.0.1.%d", i+1),
		})
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 429, 429, 429}, codes)
}

func TestServer_RateLimit_TrustedProxyForwardedFor(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })

	cfg := newTestConfig()
	// httptest requests arrive from 192.0.2.1.
	cfg.HTTP.TrustedProxies = []string{"192.0.2.0/24"}
	f := newTestServerWithConfig(t, cfg, limiter)

	f.uc.EXPECT().
		Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(&usecase.LoginOutput{Token: "t"}, nil).
		Times(3)

	login := func(client string) int {
		return f.do(http.MethodPost, "/login", `{"email":"a@x.com","password":"p1"}`,
			map[string]string{echo.HeaderXForwardedFor: client}).Code
	}

	assert.Equal(t, http.StatusOK, login("198.51.100.7"))
	assert.Equal(t, http.StatusOK, login("198.51.100.7"))
	assert.Equal(t, http.StatusOK, login("198.51.100.8"))
	assert.Equal(t, http.StatusTooManyRequests, login("198.51.100.7"))
}

func TestNewEcho_InvalidTrustedProxy(t *testing.T) {
	cfg := newTestConfig()
	cfg.HTTP.TrustedProxies = []string{"not-a-cidr"}

	_, err := NewEcho(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.ErrorContains(t, err, "invalid trusted proxy")
}

func TestServer_RequestIDPropagated(t *testing.T) {
	f := newTestServer(t, nil)

	rec := f.do(http.MethodGet, "/health", "", map[string]string{echo.HeaderXRequestID: "req-123"})

	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
}
