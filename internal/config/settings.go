package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Required indicates whether the setting must be provided
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the gateway listens",
		Type:    String,
		Default: ":8080",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    String,
		Default: "30s",
	},

	// Identity provider settings
	{
		Name:     "IDP_ENDPOINT",
		Short:    "Base URL of the identity provider",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:     "IDP_CLIENT_ID",
		Short:    "Client ID of this gateway at the identity provider",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:     "IDP_CLIENT_SECRET",
		Short:    "Client secret of this gateway at the identity provider",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:    "IDP_TIMEOUT",
		Short:   "Timeout for identity provider calls",
		Type:    String,
		Default: "10s",
	},
	{
		Name:     "JWT_PUBLIC_KEY",
		Short:    "PEM-encoded token signing key (certificate or public key form)",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:     "ORG_NAME",
		Short:    "Organization name at the identity provider",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:    "APP_NAME",
		Short:   "Application name at the identity provider",
		Type:    String,
		Default: "",
	},

	// Enforcement settings; the mode is implied by which fields are set
	{
		Name:    "ENFORCER_PERMISSION",
		Short:   "Remote permission resource name (selects remote mode)",
		Type:    String,
		Default: "",
	},
	{
		Name:    "ENFORCER_MODEL_PATH",
		Short:   "Path to the access-control model file (selects embedded mode)",
		Type:    String,
		Default: "",
	},
	{
		Name:    "ENFORCER_POLICY_DSN",
		Short:   "Rule store connection string (embedded mode)",
		Type:    String,
		Default: "",
	},
	{
		Name:    "ENFORCER_RELOAD_INTERVAL",
		Short:   "Interval between rule store reloads, 0s to disable",
		Type:    String,
		Default: "0s",
	},

	// Observability settings
	{
		Name:    "LOG_LEVEL",
		Short:   "Logging level",
		Type:    String,
		Default: "info",
	},
	{
		Name:    "DEBUG_RESPONSES",
		Short:   "Write operator diagnostics into rejection bodies",
		Type:    Bool,
		Default: false,
	},
}
