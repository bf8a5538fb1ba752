package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the settings the server cannot run without are
// present.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or db_password secret) is required")
	}
	if cfg.SitePassword == "" {
		errors = append(errors, "SITE_PASSWORD (or site_password secret) is required")
	}
	if cfg.AuthSecret == "" {
		errors = append(errors, "AUTH_SECRET (or auth_secret secret) is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
