package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dqscout/internal/config"
	"github.com/dbsmedya/dqscout/internal/discovery"
	"github.com/dbsmedya/dqscout/internal/logger"
	"github.com/dbsmedya/dqscout/internal/planner"
)

var planPrompt string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the tool plan for a prompt without executing it",
	Long: `Plan derives the intent from a prompt and displays the discovery and
quality tool invocations an assessment would run. Nothing is sent to the
tool server.

With an LLM credential configured the plan comes from the model; without
one the fixed fallback plan is shown.

Example:
  dqscout plan --config dqscout.yaml --prompt "profile the sales tables"`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planPrompt, "prompt", "p", "",
		"Natural-language request (required)")
	planCmd.MarkFlagRequired("prompt")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	p := planner.New(cfg.LLM, cfg.Limits, log)
	ctx := context.Background()

	intent := p.ParseIntent(ctx, planPrompt)
	discoveryPlan := p.PlanDiscovery(ctx, intent)
	// The schema is unknown before a run, so the quality plan is derived
	// from an empty snapshot.
	qualityPlan := p.PlanQuality(ctx, discovery.Snapshot{})

	printHeader("Assessment Plan")

	fmt.Fprintln(outputWriter)
	printSection("Intent")
	fmt.Fprintf(outputWriter, "  Goal: %s\n", intent.Goal)
	if len(intent.TargetPatterns) > 0 {
		fmt.Fprintf(outputWriter, "  Targets: %s\n", strings.Join(intent.TargetPatterns, ", "))
	}
	if len(intent.Constraints) > 0 {
		fmt.Fprintf(outputWriter, "  Constraints: %s\n", strings.Join(intent.Constraints, ", "))
	}
	if p.Available() {
		fmt.Fprintln(outputWriter, "  Planner: LLM")
	} else {
		fmt.Fprintln(outputWriter, "  Planner: deterministic fallback (no LLM credential)")
	}

	fmt.Fprintln(outputWriter)
	printSection("Discovery Steps")
	for i, step := range discoveryPlan.Steps {
		printPlanItem(i+1, step.Tool, step.Args, step.Why)
	}

	fmt.Fprintln(outputWriter)
	printSection("Quality Checks")
	for i, check := range qualityPlan.Checks {
		printPlanItem(i+1, check.Tool, check.Args, check.Reason)
	}
	fmt.Fprintln(outputWriter, "  (checks without a table argument fan out over discovered tables)")

	return nil
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}

// printPlanItem prints one tool invocation in a plan listing
func printPlanItem(num int, tool string, args map[string]interface{}, why string) {
	numStr := fmt.Sprintf("[%d]", num)

	line := fmt.Sprintf("  %s %s", numStr, tool)
	if len(args) > 0 {
		var parts []string
		for k, v := range args {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	if why != "" {
		line += " - " + why
	}
	fmt.Fprintln(outputWriter, line)
}
