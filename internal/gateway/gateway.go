// Package gateway exposes the forward-auth HTTP surface: the /authenticate
// check endpoint the reverse proxy calls per request, and the /login
// passthrough that exchanges an authorization code for a token.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"authgate/internal/idp"
	"authgate/internal/observability/logging"
	"authgate/internal/pipeline"

	"github.com/gorilla/mux"
)

// RemoteUserHeader carries the verified caller identity to the downstream
// service on an allowed request.
const RemoteUserHeader = "Remote-User"

// Forwarded request headers set by the calling proxy
const (
	forwardedMethodHeader = "X-Forwarded-Method"
	forwardedURIHeader    = "X-Forwarded-Uri"
)

// CodeExchanger trades an authorization code for a token bundle
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*idp.TokenBundle, error)
}

// Config holds gateway configuration
type Config struct {
	// DebugResponses enables one-line operator diagnostics in rejection
	// bodies. Off by default: callers get only a status code.
	DebugResponses bool
}

// Gateway is the forward-auth HTTP handler
type Gateway struct {
	*mux.Router
	pipeline  *pipeline.Pipeline
	exchanger CodeExchanger
	verifier  pipeline.TokenVerifier
	logger    *logging.Logger
	debug     bool
}

// New creates a gateway router
func New(config Config, p *pipeline.Pipeline, exchanger CodeExchanger, verifier pipeline.TokenVerifier, logger *logging.Logger) *Gateway {
	g := &Gateway{
		Router:    mux.NewRouter(),
		pipeline:  p,
		exchanger: exchanger,
		verifier:  verifier,
		logger:    logger.WithModule("gateway"),
		debug:     config.DebugResponses,
	}

	g.Path("/authenticate").Methods(http.MethodGet).HandlerFunc(g.handleAuthenticate)
	g.Path("/login").Methods(http.MethodGet).HandlerFunc(g.handleLogin)

	g.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.logger.Warn("Request received for undefined route", "path", r.URL.Path)
		http.Error(w, "404 page not found", http.StatusNotFound)
	})

	return g
}

// handleAuthenticate runs the decision pipeline for one forwarded request
// and writes the verdict.
func (g *Gateway) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.LoggerFromContext(ctx)
	if logger == nil {
		logger = g.logger
	}

	method := r.Header.Get(forwardedMethodHeader)
	uri := r.Header.Get(forwardedURIHeader)
	if method == "" || uri == "" {
		// Only a misconfigured proxy omits the forwarded headers.
		logger.Error("Forwarded headers missing",
			"method_present", method != "",
			"uri_present", uri != "",
		)
		g.reject(w, "forwarded request headers missing")
		return
	}

	token := bearerToken(r)

	logger.Debug("Authenticate inbound request", "method", method, "uri", uri)

	res := g.pipeline.Decide(ctx, token, method, uri)
	g.writeVerdict(w, res)
}

// handleLogin exchanges an authorization code for a token, validates the
// token's signature, and returns it as JSON.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.LoggerFromContext(ctx)
	if logger == nil {
		logger = g.logger
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		logger.Warn("Login request without authorization code")
		g.reject(w, "missing authorization code")
		return
	}

	bundle, err := g.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Authorization code exchange failed", logging.Err(err))
		g.reject(w, "code exchange failed")
		return
	}

	// Never hand out a token this gateway could not verify itself.
	if _, err := g.verifier.Verify(bundle.AccessToken); err != nil {
		logger.Error("Exchanged token failed verification", logging.Err(err))
		g.reject(w, "token verification failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"token": bundle.AccessToken}); err != nil {
		logger.Error("Failed to write login response", logging.Err(err))
	}
}

// bearerToken extracts the bearer token from the Authorization header. A
// header that is absent, empty, or not a bearer credential yields "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
