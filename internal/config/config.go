package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("AUTHGATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	config := &Config{}

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	config.Server.ShutdownTimeout = shutdownTimeout

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate identity provider configuration
	config.IDP.Endpoint = strings.TrimRight(v.GetString("IDP_ENDPOINT"), "/")
	config.IDP.ClientID = v.GetString("IDP_CLIENT_ID")
	config.IDP.ClientSecret = v.GetString("IDP_CLIENT_SECRET")
	config.IDP.PublicKey = v.GetString("JWT_PUBLIC_KEY")
	idpTimeout, err := time.ParseDuration(v.GetString("IDP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid identity provider timeout: %w", err)
	}
	config.IDP.Timeout = idpTimeout

	config.Organization = v.GetString("ORG_NAME")
	config.Application = v.GetString("APP_NAME")

	// Populate enforcement configuration
	config.Enforcer.Permission = v.GetString("ENFORCER_PERMISSION")
	config.Enforcer.ModelPath = v.GetString("ENFORCER_MODEL_PATH")
	config.Enforcer.PolicyDSN = v.GetString("ENFORCER_POLICY_DSN")
	reloadInterval, err := time.ParseDuration(v.GetString("ENFORCER_RELOAD_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid enforcer reload interval: %w", err)
	}
	config.Enforcer.ReloadInterval = reloadInterval

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")
	config.Observability.DebugResponses = v.GetBool("DEBUG_RESPONSES")

	// Resolve the enforcement mode from which fields are present
	mode, err := resolveMode(config)
	if err != nil {
		return nil, err
	}
	config.Enforcer.Mode = mode

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// resolveMode derives the enforcement strategy from the configured fields.
// Exactly one strategy must be identifiable; ambiguity is a load error, not
// something decided per request.
func resolveMode(cfg *Config) (Mode, error) {
	remote := cfg.Enforcer.Permission != ""
	embedded := cfg.Enforcer.ModelPath != "" || cfg.Enforcer.PolicyDSN != ""

	switch {
	case remote && embedded:
		return "", fmt.Errorf("ambiguous enforcement configuration: both a remote permission and an embedded model/rule store are set")
	case remote:
		return ModeRemote, nil
	case embedded:
		if cfg.Enforcer.ModelPath == "" {
			return "", fmt.Errorf("embedded enforcement requires a model file path")
		}
		if cfg.Enforcer.PolicyDSN == "" {
			return "", fmt.Errorf("embedded enforcement requires a rule store connection string")
		}
		return ModeEmbedded, nil
	default:
		return "", fmt.Errorf("no enforcement configured: set a remote permission or an embedded model path and rule store")
	}
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.IDP.Endpoint == "" {
		return fmt.Errorf("identity provider endpoint is required")
	}
	if cfg.IDP.ClientID == "" {
		return fmt.Errorf("identity provider client ID is required")
	}
	if cfg.IDP.ClientSecret == "" {
		return fmt.Errorf("identity provider client secret is required")
	}
	if cfg.IDP.PublicKey == "" {
		return fmt.Errorf("token signing public key is required")
	}
	if cfg.Organization == "" {
		return fmt.Errorf("organization name is required")
	}
	if cfg.IDP.Timeout <= 0 {
		return fmt.Errorf("identity provider timeout must be positive")
	}
	return nil
}
