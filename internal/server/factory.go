package server

import (
	"context"
	"fmt"

	"authgate/internal/config"
	"authgate/internal/enforce"
	"authgate/internal/enforce/embedded"
	"authgate/internal/enforce/remote"
	"authgate/internal/gateway"
	"authgate/internal/identity"
	"authgate/internal/idp"
	"authgate/internal/observability"
	"authgate/internal/observability/logging"
	"authgate/internal/pipeline"
)

// NewFromConfig assembles the full gateway from configuration. The context
// bounds background work (the embedded rule-store reloader); cancelling it
// stops that work.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize the identity verifier from the configured signing key
	verifier, err := identity.NewVerifier([]byte(cfg.IDP.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}

	// Initialize the identity provider client
	idpClient := idp.NewClient(idp.Config{
		Endpoint:     cfg.IDP.Endpoint,
		ClientID:     cfg.IDP.ClientID,
		ClientSecret: cfg.IDP.ClientSecret,
		Timeout:      cfg.IDP.Timeout,
	}, logger)

	// Initialize the configured enforcement strategy
	enforcer, err := newEnforcer(ctx, cfg, logger, obs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize enforcer: %w", err)
	}
	logger.Info("Enforcement strategy selected", "mode", enforcer.Mode())

	// Initialize the decision pipeline
	decisionPipeline := pipeline.New(idpClient, verifier, enforcer, logger, obs.Metrics)

	// Initialize the gateway router
	gw := gateway.New(gateway.Config{
		DebugResponses: cfg.Observability.DebugResponses,
	}, decisionPipeline, idpClient, verifier, logger)

	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	handler := obs.Middleware(gw)

	return New(serverConfig, handler, obs.MetricsHandler(), logger), nil
}

// newEnforcer builds the enforcement strategy the configuration selects
func newEnforcer(ctx context.Context, cfg *config.Config, logger *logging.Logger, obs *observability.Provider) (enforce.Enforcer, error) {
	switch cfg.Enforcer.Mode {
	case config.ModeRemote:
		logger.Info("Using remote enforcement",
			"endpoint", logging.RedactStringURL(cfg.IDP.Endpoint),
			"permission", cfg.Organization+"/"+cfg.Enforcer.Permission,
		)
		return remote.New(remote.Config{
			Endpoint:     cfg.IDP.Endpoint,
			Organization: cfg.Organization,
			Permission:   cfg.Enforcer.Permission,
			Timeout:      cfg.IDP.Timeout,
		}, logger), nil

	case config.ModeEmbedded:
		logger.Info("Using embedded enforcement",
			"model", cfg.Enforcer.ModelPath,
			"rule_store", logging.RedactMysqlDSN(cfg.Enforcer.PolicyDSN),
		)
		store, err := embedded.NewStore(ctx, cfg.Enforcer.PolicyDSN, logger, obs.Metrics)
		if err != nil {
			return nil, err
		}
		store.StartReloading(ctx, cfg.Enforcer.ReloadInterval)
		return embedded.New(cfg.Enforcer.ModelPath, store, logger)

	default:
		return nil, fmt.Errorf("unknown enforcement mode %q", cfg.Enforcer.Mode)
	}
}
