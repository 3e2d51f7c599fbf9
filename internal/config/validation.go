package config

import "fmt"

// Validate checks the configuration for values that would make a sign-in
// attempt fail in confusing ways later.
func (c *Config) Validate() error {
	if c.Firebase == nil {
		return fmt.Errorf("firebase configuration is required")
	}
	switch c.Firebase.SignInMode {
	case "", SignInModePopup, SignInModeRedirect:
	default:
		return fmt.Errorf("invalid sign_in_mode %q: must be %q or %q",
			c.Firebase.SignInMode, SignInModePopup, SignInModeRedirect)
	}
	if c.Listener != nil {
		if c.Listener.MaxAccepts < 0 {
			return fmt.Errorf("listener max_accepts must not be negative")
		}
		if c.Listener.MaxRequestBytes < 0 {
			return fmt.Errorf("listener max_request_bytes must not be negative")
		}
	}
	return nil
}

// ValidateForLogin additionally requires the fields a real sign-in needs.
// Kept separate so commands that never open a browser (status, logout) work
// with a partial config.
func (c *Config) ValidateForLogin() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Firebase.APIKey == "" {
		return fmt.Errorf("firebase api_key is required for login")
	}
	if c.Firebase.AuthDomain == "" {
		return fmt.Errorf("firebase auth_domain is required for login")
	}
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase project_id is required for login")
	}
	return nil
}
