// Package config provides configuration structures and loading for dqscout.
package config

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Limits  LimitsConfig  `yaml:"limits" mapstructure:"limits"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig represents the metadata/quality server connection configuration.
type ServerConfig struct {
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	BearerToken     string `yaml:"bearer_token" mapstructure:"bearer_token"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	ProtocolVersion string `yaml:"protocol_version" mapstructure:"protocol_version"`
}

// LLMConfig represents the OpenAI-compatible planner configuration.
// An empty APIKey switches the planner into deterministic fallback mode.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// LimitsConfig represents truncation and fan-out budgets for a run.
type LimitsConfig struct {
	MaxPreviewRows int `yaml:"max_preview_rows" mapstructure:"max_preview_rows"`
	MaxPlanSteps   int `yaml:"max_plan_steps" mapstructure:"max_plan_steps"`
	MaxPromptBytes int `yaml:"max_prompt_bytes" mapstructure:"max_prompt_bytes"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			TimeoutSeconds:  60,
			ProtocolVersion: "2025-03-26",
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Limits: LimitsConfig{
			MaxPreviewRows: 50,
			MaxPlanSteps:   8,
			MaxPromptBytes: 12000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, endpoint string, timeoutSeconds int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if endpoint != "" {
		c.Server.Endpoint = endpoint
	}
	if timeoutSeconds > 0 {
		c.Server.TimeoutSeconds = timeoutSeconds
	}
}
