// Package idp talks to the identity provider's OAuth endpoints: token
// introspection for the decision pipeline and the authorization-code
// exchange backing the login passthrough.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"authgate/internal/observability/logging"
)

// ErrUpstream indicates the identity provider could not be reached or
// returned a response the client could not interpret. Timeouts are treated
// the same way; the gateway never retries.
var ErrUpstream = errors.New("identity provider unavailable")

// Introspection is the provider's view of a presented token. The decision
// pipeline consults only Active; the remaining fields are parsed for
// diagnostic logging and future extension.
type Introspection struct {
	Active   bool   `json:"active"`
	Scope    string `json:"scope,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Issuer   string `json:"iss,omitempty"`
	Subject  string `json:"sub,omitempty"`
	Expiry   int64  `json:"exp,omitempty"`
}

// TokenBundle is the provider's response to an authorization-code exchange.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// Config holds identity provider client configuration
type Config struct {
	// Endpoint is the base URL of the identity provider
	Endpoint string

	// ClientID is this gateway's own client ID at the provider
	ClientID string

	// ClientSecret is this gateway's client secret
	ClientSecret string

	// Timeout bounds every call to the provider
	Timeout time.Duration
}

// Client is an HTTP client for the identity provider
type Client struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *logging.Logger
}

// NewClient creates a new identity provider client
func NewClient(config Config, logger *logging.Logger) *Client {
	return &Client{
		endpoint:     config.Endpoint,
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		httpClient:   &http.Client{Timeout: config.Timeout},
		logger:       logger.WithModule("idp"),
	}
}

// Introspect asks the provider whether the token is currently active. Any
// transport failure or non-parseable response is reported as ErrUpstream.
func (c *Client) Introspect(ctx context.Context, token string) (*Introspection, error) {
	query := url.Values{}
	query.Set("token", token)
	query.Set("token_type_hint", "access_token")
	query.Set("client_id", c.clientID)
	query.Set("client_secret", c.clientSecret)

	result := &Introspection{}
	if err := c.post(ctx, "/api/login/oauth/introspect", query, result); err != nil {
		return nil, err
	}
	c.logger.Debug("Token introspected", "active", result.Active, "client_id", result.ClientID)
	return result, nil
}

// ExchangeCode trades an authorization code for a token bundle.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenBundle, error) {
	query := url.Values{}
	query.Set("grant_type", "authorization_code")
	query.Set("client_id", c.clientID)
	query.Set("client_secret", c.clientSecret)
	query.Set("code", code)

	result := &TokenBundle{}
	if err := c.post(ctx, "/api/login/oauth/access_token", query, result); err != nil {
		return nil, err
	}
	return result, nil
}

// post issues a query-parameter POST against the provider and decodes the
// JSON response body into out.
func (c *Client) post(ctx context.Context, path string, query url.Values, out interface{}) error {
	requestURL := c.endpoint + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrUpstream, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
