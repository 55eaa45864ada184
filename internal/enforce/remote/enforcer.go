// Package remote forwards authorization decisions to the identity
// provider's enforcement API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"authgate/internal/enforce"
	"authgate/internal/observability/logging"
)

// Config holds remote enforcer configuration
type Config struct {
	// Endpoint is the base URL of the enforcement API
	Endpoint string

	// Organization is the organization owning the permission resource
	Organization string

	// Permission names the permission resource evaluated on the remote side.
	// The remote strategy deliberately scopes decisions by this configured
	// org/permission resource, not by the caller's subject; the caller's
	// token still authenticates the call.
	Permission string

	// Timeout bounds every enforcement call
	Timeout time.Duration
}

// decisionRequest is the wire shape of a remote decision call
type decisionRequest struct {
	ID string `json:"id"`
	V1 string `json:"v1"`
	V2 string `json:"v2"`
}

// Enforcer asks the remote enforcement API for each verdict
type Enforcer struct {
	endpoint   string
	resourceID string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a remote enforcer
func New(config Config, logger *logging.Logger) *Enforcer {
	return &Enforcer{
		endpoint:   config.Endpoint,
		resourceID: config.Organization + "/" + config.Permission,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.WithModule("enforce.remote"),
	}
}

// Mode identifies the strategy
func (e *Enforcer) Mode() string {
	return enforce.ModeRemote
}

// Enforce POSTs the decision request and parses a literal textual boolean
// from the response body. Any transport failure, non-2xx status, or body
// other than "true"/"false" is ErrUpstream.
func (e *Enforcer) Enforce(ctx context.Context, req enforce.Request) (bool, error) {
	body, err := json.Marshal(decisionRequest{
		ID: e.resourceID,
		V1: req.Object,
		V2: req.Action,
	})
	if err != nil {
		return false, fmt.Errorf("%w: encode request: %v", enforce.ErrUpstream, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.endpoint+"/api/enforce", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: build request: %v", enforce.ErrUpstream, err)
	}
	// The enforcement API expects a text content type even though the
	// payload is JSON.
	httpReq.Header.Set("Content-Type", "text/plain")
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("%w: %v", enforce.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: unexpected status %d", enforce.ErrUpstream, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return false, fmt.Errorf("%w: read verdict: %v", enforce.ErrUpstream, err)
	}

	switch strings.TrimSpace(string(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: unexpected verdict body %q", enforce.ErrUpstream, strings.TrimSpace(string(raw)))
	}
}
