package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables honored when no config file value is present.
// These match the names the server and LLM vendors document.
const (
	EnvEndpoint    = "MCP_ENDPOINT"
	EnvBearerToken = "MCP_BEARER_TOKEN"
	EnvLLMAPIKey   = "OPENAI_API_KEY"
	EnvLLMModel    = "OPENAI_MODEL"
	EnvLLMBaseURL  = "OPENAI_BASE_URL"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Perform environment variable substitution
	substituteEnvVars(cfg)

	// Fill remaining blanks from well-known environment variables
	applyEnvDefaults(cfg)

	return cfg, nil
}

// LoadOrDefault behaves like Load but tolerates a missing config file,
// falling back to defaults plus well-known environment variables. This keeps
// the CLI usable with nothing but MCP_ENDPOINT exported.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnvDefaults(cfg)
		return cfg, nil
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)
	applyEnvDefaults(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Server.Endpoint = expandEnvVar(cfg.Server.Endpoint)
	cfg.Server.BearerToken = expandEnvVar(cfg.Server.BearerToken)

	cfg.LLM.APIKey = expandEnvVar(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = expandEnvVar(cfg.LLM.BaseURL)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// applyEnvDefaults fills empty fields from the well-known environment variables.
// Config file values always win over the ambient environment.
func applyEnvDefaults(cfg *Config) {
	if cfg.Server.Endpoint == "" {
		cfg.Server.Endpoint = strings.TrimSpace(os.Getenv(EnvEndpoint))
	}
	if cfg.Server.BearerToken == "" {
		cfg.Server.BearerToken = os.Getenv(EnvBearerToken)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(EnvLLMAPIKey)
	}
	if v := os.Getenv(EnvLLMModel); v != "" && cfg.LLM.Model == DefaultConfig().LLM.Model {
		cfg.LLM.Model = v
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = strings.TrimSpace(os.Getenv(EnvLLMBaseURL))
	}
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}
