package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg.Firebase)
	assert.Equal(t, SignInModePopup, cfg.Firebase.SignInMode)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("missing firebase block", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid sign-in mode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Firebase.SignInMode = "iframe"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sign_in_mode")
	})

	t.Run("negative listener limits", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Listener.MaxAccepts = -1
		assert.Error(t, cfg.Validate())

		cfg = DefaultConfig()
		cfg.Listener.MaxRequestBytes = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestValidateForLogin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Firebase.APIKey = "AIzaTest"
	cfg.Firebase.AuthDomain = "todo-app.firebaseapp.com"
	cfg.Firebase.ProjectID = "todo-app"
	assert.NoError(t, cfg.ValidateForLogin())

	for name, mutate := range map[string]func(*Config){
		"api key":     func(c *Config) { c.Firebase.APIKey = "" },
		"auth domain": func(c *Config) { c.Firebase.AuthDomain = "" },
		"project id":  func(c *Config) { c.Firebase.ProjectID = "" },
	} {
		t.Run("missing "+name, func(t *testing.T) {
			broken := DefaultConfig()
			broken.Firebase.APIKey = "AIzaTest"
			broken.Firebase.AuthDomain = "todo-app.firebaseapp.com"
			broken.Firebase.ProjectID = "todo-app"
			mutate(broken)
			assert.Error(t, broken.ValidateForLogin())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `{
		"data_dir": "` + filepath.ToSlash(dir) + `",
		"firebase": {
			"api_key": "AIzaFromFile",
			"auth_domain": "file-app.firebaseapp.com",
			"project_id": "file-app"
		},
		"listener": {
			"max_accepts": 7
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "AIzaFromFile", cfg.Firebase.APIKey)
	assert.Equal(t, "file-app.firebaseapp.com", cfg.Firebase.AuthDomain)
	assert.Equal(t, "file-app", cfg.Firebase.ProjectID)
	assert.Equal(t, 7, cfg.Listener.MaxAccepts)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestLoadFromFileRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTHBRIDGE_FIREBASE_API_KEY", "AIzaFromEnv")
	t.Setenv("AUTHBRIDGE_FIREBASE_AUTH_DOMAIN", "env-app.firebaseapp.com")
	t.Setenv("AUTHBRIDGE_FIREBASE_PROJECT_ID", "env-app")
	t.Setenv("AUTHBRIDGE_DATA_DIR", dir)

	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, "AIzaFromEnv", cfg.Firebase.APIKey)
	assert.Equal(t, "env-app.firebaseapp.com", cfg.Firebase.AuthDomain)
	assert.Equal(t, "env-app", cfg.Firebase.ProjectID)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.Firebase.APIKey = "AIzaSaved"
	cfg.Firebase.AuthDomain = "saved.firebaseapp.com"
	cfg.Firebase.ProjectID = "saved"

	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSaved", loaded.Firebase.APIKey)
	assert.Equal(t, "saved", loaded.Firebase.ProjectID)
}
