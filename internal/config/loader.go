package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultDataDir = ".authbridge"
	ConfigFileName = "auth_config.json"

	envPrefix = "AUTHBRIDGE"
)

// LoadFromFile loads configuration from a specific file. An empty path loads
// defaults plus environment overrides only.
func LoadFromFile(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, DefaultDataDir)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfigPath returns ~/.authbridge/auth_config.json when it exists,
// otherwise empty string so defaults apply.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(homeDir, DefaultDataDir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnvOverrides lets deployment-specific Firebase fields come from the
// environment (AUTHBRIDGE_FIREBASE_API_KEY and friends), which is how CI and
// packaging pipelines inject them.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfg.Firebase == nil {
		cfg.Firebase = &FirebaseConfig{}
	}
	if s := v.GetString("firebase_api_key"); s != "" {
		cfg.Firebase.APIKey = s
	}
	if s := v.GetString("firebase_auth_domain"); s != "" {
		cfg.Firebase.AuthDomain = s
	}
	if s := v.GetString("firebase_project_id"); s != "" {
		cfg.Firebase.ProjectID = s
	}
	if s := v.GetString("sign_in_mode"); s != "" {
		cfg.Firebase.SignInMode = s
	}
	if s := v.GetString("data_dir"); s != "" {
		cfg.DataDir = s
	}
}

// SaveToFile writes the configuration as indented JSON, creating parent
// directories as needed.
func SaveToFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
