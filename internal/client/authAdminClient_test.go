package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reviewpromax/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAuthUser(t *testing.T) {
	var gotPath, gotKey string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewAuthAdminClient(&config.Supabase{URL: srv.URL, ServiceRoleKey: "service-role"})

	require.NoError(t, c.DeleteUser(context.Background(), "user-1"))
	assert.Equal(t, "/auth/v1/admin/users/user-1", gotPath)
	assert.Equal(t, "service-role", gotKey)

	status = http.StatusNotFound
	assert.NoError(t, c.DeleteUser(context.Background(), "user-1"))

	status = http.StatusInternalServerError
	assert.Error(t, c.DeleteUser(context.Background(), "user-1"))
}

func TestDeleteAuthUserNotConfigured(t *testing.T) {
	err := NewAuthAdminClient(&config.Supabase{}).DeleteUser(context.Background(), "u")
	assert.ErrorIs(t, err, ErrAuthAdminNotConfigured)
}
