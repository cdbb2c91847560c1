package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile        string
	logLevel       string
	logFormat      string
	endpoint       string
	timeoutSeconds int
)

var rootCmd = &cobra.Command{
	Use:   "dqscout",
	Short: "LLM-guided database data-quality scout",
	Long: `A CLI tool that turns a natural-language request into a data-quality
assessment of a remote database, driven through a JSON-RPC tool server.

Features:
  - Intent extraction and tool planning via an OpenAI-compatible model
  - Deterministic fallback plans when no model credential is configured
  - Schema discovery with best-effort parsing of tool output
  - Quality metric collection (missing values, distincts, statistics)
  - A final issues/recommendations report, human or JSON`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "dqscout.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Server overrides
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "",
		"Override tool server endpoint URL")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 0,
		"Override per-call timeout in seconds")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel       string
	LogFormat      string
	Endpoint       string
	TimeoutSeconds int
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:       logLevel,
		LogFormat:      logFormat,
		Endpoint:       endpoint,
		TimeoutSeconds: timeoutSeconds,
	}
}
