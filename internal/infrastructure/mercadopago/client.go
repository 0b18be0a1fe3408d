package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
)

const (
	// httpClientTimeout bounds every call to the gateway API
	httpClientTimeout = 30 * time.Second

	authURL       = "https://auth.mercadopago.com/authorization"
	tokenURL      = "https://api.mercadopago.com/oauth/token"
	apiBaseURL    = "https://api.mercadopago.com"
	defaultExpiry = 6 * time.Hour
)

// Config holds the platform application credentials for MercadoPago OAuth.
type Config struct {
	AppID       string
	AppSecret   string
	RedirectURL string
}

// Client implements gateway.Client against the MercadoPago REST API.
// OAuth flows go through golang.org/x/oauth2; resource calls use the
// tenant's access token directly.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg Config) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		baseURL: apiBaseURL,
	}
}

func (c *Client) AuthorizationURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

func (c *Client) ExchangeAuthCode(ctx context.Context, code string) (*gateway.Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tokensFromOAuth(token), nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*gateway.Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return tokensFromOAuth(token), nil
}

func (c *Client) CreatePreference(ctx context.Context, accessToken string, req gateway.PreferenceRequest) (*gateway.Preference, error) {
	body := preferenceRequestBody{
		ExternalReference: req.ExternalReference,
		Metadata:          req.Metadata,
		NotificationURL:   req.NotificationURL,
		AutoReturn:        "approved",
		BackURLs: backURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
	}
	if req.PayerEmail != "" {
		body.Payer = &payerBody{Email: req.PayerEmail}
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, preferenceItemBody{
			Title:       item.Title,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   float64(item.UnitPriceRaw) / 100,
			CurrencyID:  item.CurrencyID,
		})
	}
	if req.ExpiresAt != nil {
		body.Expires = true
		body.ExpirationDateTo = req.ExpiresAt.UTC().Format(time.RFC3339)
	}

	var resp preferenceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/checkout/preferences", accessToken, body, &resp); err != nil {
		return nil, err
	}

	return &gateway.Preference{
		ID:          resp.ID,
		CheckoutURL: resp.InitPoint,
		SandboxURL:  resp.SandboxInitPoint,
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, accessToken, paymentID string) (*gateway.PaymentInfo, error) {
	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+paymentID, accessToken, nil, &raw); err != nil {
		return nil, err
	}

	info := &gateway.PaymentInfo{
		ID:                paymentID,
		Status:            stringField(raw, "status"),
		StatusDetail:      stringField(raw, "status_detail"),
		ExternalReference: stringField(raw, "external_reference"),
		CurrencyID:        stringField(raw, "currency_id"),
		Raw:               raw,
	}
	if amount, ok := raw["transaction_amount"].(float64); ok {
		info.AmountInCents = int64(amount * 100)
	}
	if id, ok := raw["id"].(float64); ok {
		info.ID = fmt.Sprintf("%.0f", id)
	}
	return info, nil
}

// doJSON issues a request with the tenant's bearer token and decodes the
// response into out. Non-2xx responses become APIError values.
func (c *Client) doJSON(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}

func tokensFromOAuth(token *oauth2.Token) *gateway.Tokens {
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().UTC().Add(defaultExpiry)
	}

	tokens := &gateway.Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt.UTC(),
	}
	if pk, ok := token.Extra("public_key").(string); ok {
		tokens.PublicKey = pk
	}
	if live, ok := token.Extra("live_mode").(bool); ok {
		tokens.LiveMode = live
	}
	// user_id comes back as a JSON number
	if userID, ok := token.Extra("user_id").(float64); ok {
		tokens.ExternalAccountID = fmt.Sprintf("%.0f", userID)
	}
	return tokens
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}
