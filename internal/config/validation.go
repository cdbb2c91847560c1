package config

import (
	"fmt"
	"net/url"
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

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// The server endpoint itself is optional here; commands that connect call
// RequireEndpoint separately so that offline commands keep working.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if c.Server.Endpoint != "" {
		if err := validateEndpoint(c.Server.Endpoint); err != nil {
			errors = append(errors, ValidationError{
				Field:   "server.endpoint",
				Message: err.Error(),
			})
		}
	}
	if c.Server.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.timeout_seconds",
			Message: "must be greater than zero",
		})
	}
	if c.Server.ProtocolVersion == "" {
		errors = append(errors, ValidationError{
			Field:   "server.protocol_version",
			Message: "must not be empty",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "must be between 0 and 2",
		})
	}
	if c.LLM.APIKey != "" && c.LLM.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.model",
			Message: "must be set when llm.api_key is configured",
		})
	}

	if c.Limits.MaxPreviewRows <= 0 {
		errors = append(errors, ValidationError{
			Field:   "limits.max_preview_rows",
			Message: "must be greater than zero",
		})
	}
	if c.Limits.MaxPlanSteps <= 0 {
		errors = append(errors, ValidationError{
			Field:   "limits.max_plan_steps",
			Message: "must be greater than zero",
		})
	}
	if c.Limits.MaxPromptBytes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "limits.max_prompt_bytes",
			Message: "must be greater than zero",
		})
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// RequireEndpoint returns an error when no server endpoint is configured.
// Commands that talk to the server call this before connecting.
func (c *Config) RequireEndpoint() error {
	if strings.TrimSpace(c.Server.Endpoint) == "" {
		return fmt.Errorf("server.endpoint is not configured (set it in the config file or export %s)", EnvEndpoint)
	}
	return validateEndpoint(c.Server.Endpoint)
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must use http or https, got %q", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint is missing a host: %q", endpoint)
	}
	return nil
}
