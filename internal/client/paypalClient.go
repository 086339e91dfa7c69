package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reviewpromax/internal/cache"
	"reviewpromax/internal/config"
	"reviewpromax/internal/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaypalNotConfigured  = errors.New("paypal client credentials are not configured")
	ErrWebhookNotConfigured = errors.New("paypal webhook id is not configured")
)

// PaypalAPIError is a non-2xx answer from the PayPal REST API.
type PaypalAPIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *PaypalAPIError) Error() string {
	return fmt.Sprintf("paypal %s failed: status=%d body=%s", e.Op, e.StatusCode, e.Body)
}

type PaypalClient interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, description string) (*model.PaypalOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*model.PaypalOrder, error)
	GetOrder(ctx context.Context, orderID string) (*model.PaypalOrder, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type paypalClientImpl struct {
	httpClient         *http.Client
	tokens             cache.TokenCache
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	webhookID          string
	brandName          string
}

func NewPaypalClient(paypalCfg *config.Paypal, tokens cache.TokenCache) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens:             tokens,
		baseApiURL:         strings.TrimRight(paypalCfg.BaseApiURL, "/"),
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		webhookID:          paypalCfg.WebhookID,
		brandName:          paypalCfg.BrandName,
	}
}

// tokens are refreshed a minute before PayPal expires them
const tokenExpiryMargin = time.Minute

func (c *paypalClientImpl) tokenKey() string {
	return "paypal:" + c.paypalClientID
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	if c.paypalClientID == "" || c.paypalClientSecret == "" {
		return "", ErrPaypalNotConfigured
	}

	if token, ok, err := c.tokens.Get(ctx, c.tokenKey()); err == nil && ok {
		return token, nil
	}

	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", &PaypalAPIError{Op: "oauth token", StatusCode: resp.StatusCode, Body: string(b)}
	}

	var res struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", errors.New("paypal returned an empty access token")
	}

	if ttl := time.Duration(res.ExpiresIn)*time.Second - tokenExpiryMargin; ttl > 0 {
		// a cache failure only costs an extra token request
		_ = c.tokens.Set(ctx, c.tokenKey(), res.AccessToken, ttl)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, amount decimal.Decimal, description string) (*model.PaypalOrder, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"description": description,
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         amount.StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"brand_name":          c.brandName,
			"shipping_preference": "NO_SHIPPING",
			"user_action":         "PAY_NOW",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	return c.doOrder(ctx, "create order", http.MethodPost, "/v2/checkout/orders", body)
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string) (*model.PaypalOrder, error) {
	return c.doOrder(ctx, "capture order", http.MethodPost,
		fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID)), nil)
}

func (c *paypalClientImpl) GetOrder(ctx context.Context, orderID string) (*model.PaypalOrder, error) {
	return c.doOrder(ctx, "get order", http.MethodGet,
		fmt.Sprintf("/v2/checkout/orders/%s", url.PathEscape(orderID)), nil)
}

func (c *paypalClientImpl) doOrder(ctx context.Context, op, method, path string, body []byte) (*model.PaypalOrder, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PaypalAPIError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var order model.PaypalOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}
	order.Raw = raw

	return &order, nil
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	// unverifiable events are rejected
	if c.webhookID == "" {
		return ErrWebhookNotConfigured
	}

	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"auth_algo":         headers.Get("PAYPAL-AUTH-ALGO"),
		"cert_url":          headers.Get("PAYPAL-CERT-URL"),
		"transmission_id":   headers.Get("PAYPAL-TRANSMISSION-ID"),
		"transmission_sig":  headers.Get("PAYPAL-TRANSMISSION-SIG"),
		"transmission_time": headers.Get("PAYPAL-TRANSMISSION-TIME"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &PaypalAPIError{Op: "verify webhook", StatusCode: resp.StatusCode, Body: string(b)}
	}

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	if res.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook signature verification status %q", res.VerificationStatus)
	}

	return nil
}
