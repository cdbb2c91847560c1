package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dqscout/internal/config"
	"github.com/dbsmedya/dqscout/internal/logger"
	"github.com/dbsmedya/dqscout/internal/orchestrator"
	"github.com/dbsmedya/dqscout/internal/report"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var (
	assessPrompt   string
	assessJSONOnly bool
	assessNoFrames bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a full data-quality assessment",
	Long: `Assess turns a natural-language request into a complete run against the
configured tool server.

The assessment follows these steps:
  1. Derive a structured intent from the prompt
  2. Connect to the server (initialize/initialized handshake)
  3. Discover databases, tables, DDL and previews
  4. Run quality metric tools over the discovered tables
  5. Summarize the findings into issues and recommendations

Individual tool failures are recorded in the report and do not stop the
run; only a failed handshake aborts it. The machine-readable run record is
always printed as JSON; --json-only suppresses the formatted report.

Example:
  dqscout assess --config dqscout.yaml --prompt "check nulls in the finance schema"`,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessPrompt, "prompt", "p", "",
		"Natural-language request (required)")
	assessCmd.MarkFlagRequired("prompt")

	assessCmd.Flags().BoolVar(&assessJSONOnly, "json-only", false,
		"Emit only the JSON run record, without the formatted report")
	assessCmd.Flags().BoolVar(&assessNoFrames, "no-frames", false,
		"Suppress the JSON-RPC wire frame trace")

	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration; a missing file falls back to env defaults
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.Endpoint, overrides.TimeoutSeconds)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireEndpoint(); err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Infow("Starting assessment",
		"endpoint", cfg.Server.Endpoint,
		"config", configFile,
	)

	orch := orchestrator.New(cfg, log)
	if assessNoFrames {
		orch.SetFrameWriter(io.Discard)
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - aborting run...")
		cancel()
	}()

	result, err := orch.RunFull(ctx, assessPrompt)
	if err != nil {
		if ctx.Err() == context.Canceled {
			log.Warn("Assessment cancelled by user")
			return nil
		}
		return fmt.Errorf("assessment failed: %w", err)
	}

	if !assessJSONOnly {
		renderer := report.NewRenderer(outputWriter)
		renderer.Color = outputWriter == os.Stdout
		renderer.Render(result)
		fmt.Fprintln(outputWriter)
	}

	return report.RenderJSON(outputWriter, result)
}
