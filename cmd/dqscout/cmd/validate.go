package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dqscout/internal/config"
	"github.com/dbsmedya/dqscout/internal/mcp"
)

var validateConnect bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and optionally test the server connection",
	Long: `Validate checks the configuration file for syntax and value errors.

Checks performed:
  - Configuration syntax and required fields
  - Endpoint URL shape, timeout and limit bounds
  - LLM settings (model required when a credential is set)
  - Logging level and format values
  - Server handshake (with --connect)

Example:
  dqscout validate --config dqscout.yaml --connect`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateConnect, "connect", false,
		"Also perform the server handshake")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.Endpoint, overrides.TimeoutSeconds)

	cmd.Printf("=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n\n", configFile)

	if err := cfg.Validate(); err != nil {
		cmd.Printf("❌ %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}
	cmd.Printf("✅ Configuration values are valid\n")

	if cfg.Server.Endpoint == "" {
		cmd.Printf("⚠  No server endpoint configured (set server.endpoint or %s)\n", config.EnvEndpoint)
	} else {
		cmd.Printf("✅ Endpoint: %s\n", cfg.Server.Endpoint)
	}

	if cfg.LLM.APIKey == "" {
		cmd.Printf("⚠  No LLM credential; assessments will use deterministic fallback plans\n")
	} else {
		cmd.Printf("✅ LLM planner: %s\n", cfg.LLM.Model)
	}

	if validateConnect {
		if err := cfg.RequireEndpoint(); err != nil {
			cmd.Printf("❌ %v\n", err)
			return fmt.Errorf("connection check failed")
		}

		client, err := mcp.NewClient(mcp.ClientConfig{
			Endpoint:        cfg.Server.Endpoint,
			BearerToken:     cfg.Server.BearerToken,
			Timeout:         time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			ProtocolVersion: cfg.Server.ProtocolVersion,
			FrameWriter:     io.Discard,
		})
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		initResult, err := client.Connect(context.Background())
		if err != nil {
			cmd.Printf("❌ Handshake failed: %v\n", err)
			return fmt.Errorf("connection check failed")
		}
		if initResult.ServerInfo.Name != "" {
			cmd.Printf("✅ Connected to %s %s\n", initResult.ServerInfo.Name, initResult.ServerInfo.Version)
		} else {
			cmd.Printf("✅ Handshake completed\n")
		}
	}

	cmd.Printf("\n=== Validation Complete ===\n")
	return nil
}
