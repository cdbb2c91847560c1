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

var toolsNoFrames bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools exposed by the server",
	Long: `Tools connects to the configured server, performs the handshake and
prints the tool catalog the server advertises.

Example:
  dqscout tools --config dqscout.yaml`,
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsNoFrames, "no-frames", false,
		"Suppress the JSON-RPC wire frame trace")

	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
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

	if err := cfg.RequireEndpoint(); err != nil {
		return err
	}

	clientCfg := mcp.ClientConfig{
		Endpoint:        cfg.Server.Endpoint,
		BearerToken:     cfg.Server.BearerToken,
		Timeout:         time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		ProtocolVersion: cfg.Server.ProtocolVersion,
	}
	if toolsNoFrames {
		clientCfg.FrameWriter = io.Discard
	}

	client, err := mcp.NewClient(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx := context.Background()
	initResult, err := client.Connect(ctx)
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	if initResult.ServerInfo.Name != "" {
		cmd.Printf("Server: %s %s\n\n", initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	}

	if len(tools) == 0 {
		cmd.Printf("No tools advertised by %s\n", cfg.Server.Endpoint)
		return nil
	}

	cmd.Printf("Tools advertised by %s:\n\n", cfg.Server.Endpoint)
	for i, tool := range tools {
		canonical := mcp.CanonicalToolName(tool.Name)
		cmd.Printf("%d. %s\n", i+1, tool.Name)
		if canonical != tool.Name {
			cmd.Printf("   Canonical:   %s\n", canonical)
		}
		switch {
		case mcp.IsQualityTool(canonical):
			cmd.Printf("   Category:    quality\n")
		case mcp.IsDiscoveryTool(canonical):
			cmd.Printf("   Category:    discovery\n")
		}
		if tool.Description != "" {
			cmd.Printf("   Description: %s\n", tool.Description)
		}
	}

	cmd.Printf("\nTotal: %d tool(s)\n", len(tools))
	return nil
}
