// Package config defines the authbridge configuration file format and its
// loading rules.
package config

// Sign-in mode selectors consumed client-side by the login page.
const (
	SignInModePopup    = "popup"
	SignInModeRedirect = "redirect"
)

// Config represents the main configuration structure.
type Config struct {
	DataDir string `json:"data_dir,omitempty" mapstructure:"data-dir"`

	// Firebase identity-provider configuration, rendered into the login page
	// URL as query parameters.
	Firebase *FirebaseConfig `json:"firebase" mapstructure:"firebase"`

	// Listener tuning. Zero values fall back to the listener defaults.
	Listener *ListenerConfig `json:"listener,omitempty" mapstructure:"listener"`

	// Logging configuration.
	Logging *LogConfig `json:"logging,omitempty" mapstructure:"logging"`
}

// FirebaseConfig holds the identity-provider fields the hosted login page
// needs to initialize its client-side SDK. None of these are secrets in the
// usual sense (a Firebase web API key is public), but they are still
// deployment-specific.
type FirebaseConfig struct {
	APIKey     string `json:"api_key" mapstructure:"api-key"`
	AuthDomain string `json:"auth_domain" mapstructure:"auth-domain"`
	ProjectID  string `json:"project_id" mapstructure:"project-id"`

	// SignInMode selects the popup or redirect flow. Defaults to popup.
	SignInMode string `json:"sign_in_mode,omitempty" mapstructure:"sign-in-mode"`
}

// ListenerConfig tunes the loopback callback listener.
type ListenerConfig struct {
	// MaxAccepts caps the number of accepted connections before the listener
	// gives up on ever seeing the callback.
	MaxAccepts int `json:"max_accepts,omitempty" mapstructure:"max-accepts"`

	// MaxRequestBytes is the hard ceiling on one accumulated request.
	MaxRequestBytes int `json:"max_request_bytes,omitempty" mapstructure:"max-request-bytes"`

	// LoginPagePath optionally overrides the embedded login page with an
	// on-disk file.
	LoginPagePath string `json:"login_page_path,omitempty" mapstructure:"login-page-path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level         string `json:"level" mapstructure:"level"`
	EnableFile    bool   `json:"enable_file" mapstructure:"enable-file"`
	EnableConsole bool   `json:"enable_console" mapstructure:"enable-console"`
	Filename      string `json:"filename" mapstructure:"filename"`
	LogDir        string `json:"log_dir,omitempty" mapstructure:"log-dir"` // Custom log directory
	MaxSize       int    `json:"max_size" mapstructure:"max-size"`         // MB
	MaxBackups    int    `json:"max_backups" mapstructure:"max-backups"`   // number of backup files
	MaxAge        int    `json:"max_age" mapstructure:"max-age"`           // days
	Compress      bool   `json:"compress" mapstructure:"compress"`
	JSONFormat    bool   `json:"json_format" mapstructure:"json-format"`
}

// DefaultConfig returns a configuration with all defaults applied. The
// Firebase block is intentionally empty: there is no sensible default
// deployment.
func DefaultConfig() *Config {
	return &Config{
		Firebase: &FirebaseConfig{
			SignInMode: SignInModePopup,
		},
		Listener: &ListenerConfig{},
	}
}
