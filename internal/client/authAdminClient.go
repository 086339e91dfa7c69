package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reviewpromax/internal/config"
	"strings"
	"time"
)

var ErrAuthAdminNotConfigured = errors.New("supabase admin credentials are not configured")

// AuthAdminClient manages identities in the hosted auth service.
type AuthAdminClient interface {
	DeleteUser(ctx context.Context, userID string) error
}

type authAdminClientImpl struct {
	httpClient     *http.Client
	baseURL        string
	serviceRoleKey string
}

func NewAuthAdminClient(cfg *config.Supabase) AuthAdminClient {
	return &authAdminClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		serviceRoleKey: cfg.ServiceRoleKey,
	}
}

func (c *authAdminClientImpl) DeleteUser(ctx context.Context, userID string) error {
	if c.baseURL == "" || c.serviceRoleKey == "" {
		return ErrAuthAdminNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/auth/v1/admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)
	req.Header.Set("apikey", c.serviceRoleKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete auth user request failed: %w", err)
	}
	defer resp.Body.Close()

	// already gone is fine
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete auth user failed: status=%d body=%s", resp.StatusCode, string(b))
	}

	return nil
}
