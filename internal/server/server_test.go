package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reviewpromax/internal/dto"
	"reviewpromax/internal/model"
	"reviewpromax/internal/service"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type nopPaypal struct{ service.PaypalService }

func (nopPaypal) ReconcilePending(context.Context, string) (*dto.ReconcileResponse, error) {
	return &dto.ReconcileResponse{Success: true, ProcessedPayments: []*dto.ProcessedPayment{}}, nil
}

type nopChat struct{}

func (nopChat) Reply(context.Context, string) string { return service.ChatFallback }

type rolesOnly struct {
	service.UserService
	admins map[string]bool
}

func (r rolesOnly) DeleteUser(_ context.Context, callerID, _ string) error {
	if !r.admins[callerID] {
		return service.ErrForbidden
	}
	return nil
}

type emptyAccount struct{}

func (emptyAccount) ListPayments(context.Context, string) ([]*model.Payment, error) {
	return []*model.Payment{}, nil
}

func (emptyAccount) ListPlans(context.Context, string) ([]*model.ReviewPlan, error) {
	return []*model.ReviewPlan{}, nil
}

func newTestServer(chatRate float64) *Server {
	return NewServer(
		Options{JWTSecret: testSecret, ChatRatePerMin: chatRate},
		Services{
			Paypal:  nopPaypal{},
			Chat:    nopChat{},
			User:    rolesOnly{admins: map[string]bool{}},
			Account: emptyAccount{},
		},
		zap.NewNop(),
	)
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(20), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/create-paypal-order", nil)
	req.Header.Set(echo.HeaderOrigin, "https://reviewpromax.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)

	rec := serve(newTestServer(20), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(20)
	paths := []string{
		"/functions/v1/create-paypal-order",
		"/functions/v1/capture-paypal-order",
		"/functions/v1/fix-pending-payments",
		"/functions/v1/delete-user",
		"/api/paypal/orders",
		"/api/paypal/orders/capture",
		"/api/paypal/reconcile",
		"/api/braintree/checkout",
		"/api/admin/users/delete",
	}
	for _, path := range paths {
		rec := serve(s, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReconcileWithToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/fix-pending-payments", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-1"))

	rec := serve(newTestServer(20), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"processedPayments":[],"totalProcessed":0}`, rec.Body.String())
}

func TestDeleteUserForbiddenForNonAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/delete-user", strings.NewReader(`{"userId":"victim"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-1"))

	rec := serve(newTestServer(20), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatIsRateLimited(t *testing.T) {
	s := newTestServer(2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/functions/v1/ai-chatbot", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		codes = append(codes, serve(s, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
