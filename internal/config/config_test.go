package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfigFile writes a yaml config with the shared required settings
// plus any extra lines.
func writeConfigFile(t *testing.T, extra ...string) string {
	t.Helper()

	base := []string{
		"IDP_ENDPOINT: http://localhost:8000",
		"IDP_CLIENT_ID: gateway-id",
		"IDP_CLIENT_SECRET: gateway-secret",
		"JWT_PUBLIC_KEY: |",
		"  -----BEGIN CERTIFICATE-----",
		"  dGVzdA==",
		"  -----END CERTIFICATE-----",
		"ORG_NAME: acme",
	}
	content := strings.Join(append(base, extra...), "\n") + "\n"

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRemoteMode(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, "ENFORCER_PERMISSION: gateway-perm"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Enforcer.Mode != ModeRemote {
		t.Errorf("mode = %q, want remote", cfg.Enforcer.Mode)
	}
	if cfg.Enforcer.Permission != "gateway-perm" {
		t.Errorf("permission = %q", cfg.Enforcer.Permission)
	}
	if cfg.IDP.Endpoint != "http://localhost:8000" {
		t.Errorf("endpoint = %q", cfg.IDP.Endpoint)
	}
	if cfg.Organization != "acme" {
		t.Errorf("organization = %q", cfg.Organization)
	}
}

func TestLoadEmbeddedMode(t *testing.T) {
	cfg, err := Load(writeConfigFile(t,
		"ENFORCER_MODEL_PATH: /etc/authgate/model.conf",
		"ENFORCER_POLICY_DSN: user:pass@tcp(localhost:3306)/casdoor",
		"ENFORCER_RELOAD_INTERVAL: 30s",
	))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Enforcer.Mode != ModeEmbedded {
		t.Errorf("mode = %q, want embedded", cfg.Enforcer.Mode)
	}
	if cfg.Enforcer.ReloadInterval != 30*time.Second {
		t.Errorf("reload interval = %v, want 30s", cfg.Enforcer.ReloadInterval)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, "ENFORCER_PERMISSION: gateway-perm"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("server address = %q, want :8080", cfg.Server.Address)
	}
	if cfg.Metrics.Address != ":9090" {
		t.Errorf("metrics address = %q, want :9090", cfg.Metrics.Address)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.IDP.Timeout != 10*time.Second {
		t.Errorf("idp timeout = %v, want 10s", cfg.IDP.Timeout)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.Observability.LogLevel)
	}
	if cfg.Observability.DebugResponses {
		t.Error("debug responses should default to off")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AUTHGATE_LOG_LEVEL", "debug")
	t.Setenv("AUTHGATE_SERVER_ADDR", ":9999")

	cfg, err := Load(writeConfigFile(t, "ENFORCER_PERMISSION: gateway-perm"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("log level = %q, want env override", cfg.Observability.LogLevel)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("server address = %q, want env override", cfg.Server.Address)
	}
}

func TestLoadTrimsEndpointSlash(t *testing.T) {
	t.Setenv("AUTHGATE_IDP_ENDPOINT", "http://localhost:8000/")

	cfg, err := Load(writeConfigFile(t, "ENFORCER_PERMISSION: gateway-perm"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IDP.Endpoint != "http://localhost:8000" {
		t.Errorf("endpoint = %q, want trailing slash trimmed", cfg.IDP.Endpoint)
	}
}

func TestLoadModeErrors(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
	}{
		{"no enforcement configured", nil},
		{
			"ambiguous configuration",
			[]string{
				"ENFORCER_PERMISSION: gateway-perm",
				"ENFORCER_MODEL_PATH: /etc/authgate/model.conf",
				"ENFORCER_POLICY_DSN: user:pass@tcp(localhost:3306)/casdoor",
			},
		},
		{"embedded without dsn", []string{"ENFORCER_MODEL_PATH: /etc/authgate/model.conf"}},
		{"embedded without model", []string{"ENFORCER_POLICY_DSN: user:pass@tcp(localhost:3306)/casdoor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfigFile(t, tt.extra...)); err == nil {
				t.Error("expected load error")
			}
		})
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	content := "ENFORCER_PERMISSION: gateway-perm\nORG_NAME: acme\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for missing identity provider settings")
	}
}
