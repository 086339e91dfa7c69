package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	valid := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	noSubject := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	noExpiry := jwt.RegisteredClaims{Subject: "user-1"}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, valid), http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", valid), http.StatusUnauthorized, ""},
		{"wrong alg", "Bearer " + signToken(t, jwt.SigningMethodHS512, testSecret, valid), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, expired), http.StatusUnauthorized, ""},
		{"no expiry", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, noExpiry), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, noSubject), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var gotUser string
			e.GET("/", func(c echo.Context) error {
				gotUser = UserID(c)
				return c.NoContent(http.StatusOK)
			}, AuthMiddleware(testSecret))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}
