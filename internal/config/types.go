package config

import (
	"time"
)

// Mode selects the enforcement strategy for the process lifetime
type Mode string

const (
	// ModeEmbedded evaluates policy in-process against the loaded model and
	// rule store
	ModeEmbedded Mode = "embedded"

	// ModeRemote forwards decisions to the identity provider's enforcement
	// API
	ModeRemote Mode = "remote"
)

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address the gateway listens on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address the metrics server listens on
		Address string
	}

	// IDP holds identity provider configuration
	IDP struct {
		// Endpoint is the base URL of the identity provider
		Endpoint string
		// ClientID is this gateway's client ID at the provider
		ClientID string
		// ClientSecret is this gateway's client secret
		ClientSecret string
		// Timeout bounds every call to the provider
		Timeout time.Duration
		// PublicKey is the PEM-encoded token signing key, in certificate or
		// public-key form
		PublicKey string
	}

	// Organization is the organization name at the identity provider
	Organization string

	// Application is the application name at the identity provider (optional)
	Application string

	// Enforcer holds enforcement strategy configuration. The mode is implied
	// by which fields are present and resolved at load time.
	Enforcer struct {
		// Mode is the resolved enforcement strategy
		Mode Mode
		// Permission names the remote permission resource (remote mode)
		Permission string
		// ModelPath is the path to the access-control model file (embedded mode)
		ModelPath string
		// PolicyDSN is the rule store connection string (embedded mode)
		PolicyDSN string
		// ReloadInterval refreshes the rule snapshot periodically; zero
		// disables background reloads (embedded mode)
		ReloadInterval time.Duration
	}

	// Observability holds logging configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
		// DebugResponses enables operator diagnostics in rejection bodies
		DebugResponses bool
	}
}
