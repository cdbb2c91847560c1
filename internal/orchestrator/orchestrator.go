package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dbsmedya/dqscout/internal/config"
	"github.com/dbsmedya/dqscout/internal/discovery"
	"github.com/dbsmedya/dqscout/internal/logger"
	"github.com/dbsmedya/dqscout/internal/mcp"
	"github.com/dbsmedya/dqscout/internal/planner"
	"github.com/dbsmedya/dqscout/internal/quality"
)

// toolClient is the slice of the JSON-RPC client the orchestrator needs.
// Satisfied by *mcp.Client.
type toolClient interface {
	Connect(ctx context.Context) (*mcp.InitializeResult, error)
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.Response, error)
	Connected() bool
}

// Orchestrator sequences one assessment run. It is single-use: create a new
// one per run.
type Orchestrator struct {
	cfg     *config.Config
	log     *logger.Logger
	planner *planner.Planner
	client  toolClient
	frames  io.Writer

	state         State
	prompt        string
	intent        planner.Intent
	discoveryPlan planner.DiscoveryPlan
	qualityPlan   planner.QualityPlan
	discovered    *discovery.Results
	checks        *quality.RunResults
	summary       planner.Summary
	startedAt     time.Time
}

// New creates an orchestrator for one run. The server connection is not
// opened until EnsureConnection.
func New(cfg *config.Config, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Orchestrator{
		cfg:        cfg,
		log:        log,
		planner:    planner.New(cfg.LLM, cfg.Limits, log),
		state:      StateStart,
		discovered: discovery.NewResults(),
		checks:     quality.NewRunResults(),
	}
}

// SetFrameWriter redirects the wire frame trace, which otherwise goes to
// stdout. Must be called before EnsureConnection.
func (o *Orchestrator) SetFrameWriter(w io.Writer) {
	o.frames = w
}

// State returns the phase the run has reached.
func (o *Orchestrator) State() State {
	return o.state
}

// IngestPrompt records the user's request. The prompt is trimmed and capped
// at the configured byte budget; an empty prompt fails the run before any
// network traffic happens.
func (o *Orchestrator) IngestPrompt(prompt string) error {
	if o.state != StateStart {
		return o.stateError("ingest prompt", StateStart)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if max := o.cfg.Limits.MaxPromptBytes; max > 0 && len(prompt) > max {
		o.log.Warnw("prompt truncated", "bytes", len(prompt), "max_bytes", max)
		prompt = prompt[:max]
	}
	o.prompt = prompt
	return nil
}

// DeriveIntent turns the ingested prompt into a structured intent.
func (o *Orchestrator) DeriveIntent(ctx context.Context) error {
	if o.state != StateStart {
		return o.stateError("derive intent", StateStart)
	}
	if o.prompt == "" {
		return fmt.Errorf("no prompt ingested")
	}

	o.intent = o.planner.ParseIntent(ctx, o.prompt)
	o.log.WithStep("intent").Infow("intent derived", "goal", o.intent.Goal,
		"targets", len(o.intent.TargetPatterns), "llm", o.planner.Available())
	o.state = StateIntentDerived
	return nil
}

// EnsureConnection opens the JSON-RPC session and performs the handshake.
// A handshake failure is fatal for the run.
func (o *Orchestrator) EnsureConnection(ctx context.Context) error {
	if o.state != StateIntentDerived {
		return o.stateError("connect", StateIntentDerived)
	}

	if o.client == nil {
		client, err := mcp.NewClient(mcp.ClientConfig{
			Endpoint:        o.cfg.Server.Endpoint,
			BearerToken:     o.cfg.Server.BearerToken,
			Timeout:         time.Duration(o.cfg.Server.TimeoutSeconds) * time.Second,
			ProtocolVersion: o.cfg.Server.ProtocolVersion,
			FrameWriter:     o.frames,
		})
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		o.client = client
	}

	result, err := o.client.Connect(ctx)
	if err != nil {
		return fmt.Errorf("handshake with %s failed: %w", o.cfg.Server.Endpoint, err)
	}
	if result != nil && result.ServerInfo.Name != "" {
		o.log.WithStep("connect").Infow("connected",
			"server", result.ServerInfo.Name, "version", result.ServerInfo.Version)
	} else {
		o.log.WithStep("connect").Infow("connected", "endpoint", o.cfg.Server.Endpoint)
	}
	o.state = StateConnected
	return nil
}

// DiscoverSchema runs the discovery plan and folds every response into the
// schema accumulator, then fetches DDL and previews for the discovered
// tables. Individual tool failures are logged and skipped; the step itself
// only fails on a broken state machine.
func (o *Orchestrator) DiscoverSchema(ctx context.Context) error {
	if o.state != StateConnected {
		return o.stateError("discover schema", StateConnected)
	}
	log := o.log.WithStep("discovery")

	o.discoveryPlan = o.planner.PlanDiscovery(ctx, o.intent)
	for _, step := range o.discoveryPlan.Steps {
		o.runDiscoveryTool(ctx, log, step.Tool, step.Args)
	}

	// Enrich each discovered table with its definition and a sample, within
	// the plan step budget.
	budget := o.cfg.Limits.MaxPlanSteps
	if budget <= 0 {
		budget = 8
	}
	for i, table := range o.discovered.Tables() {
		if i >= budget {
			log.Debugw("table enrichment budget reached", "budget", budget)
			break
		}
		args := map[string]interface{}{"table_name": table}
		if _, ok := o.discovered.DDL(table); !ok {
			o.runDiscoveryTool(ctx, log, "base_tableDDL", args)
		}
		o.runDiscoveryTool(ctx, log, "base_tablePreview", args)
	}

	log.Infow("schema discovered",
		"databases", len(o.discovered.Databases()), "tables", len(o.discovered.Tables()))
	o.state = StateSchemaDiscovered
	return nil
}

// runDiscoveryTool issues one discovery call and folds the result in.
// Transport failures and error responses are logged and dropped.
func (o *Orchestrator) runDiscoveryTool(ctx context.Context, log *logger.Logger, tool string, args map[string]interface{}) {
	resp, err := o.client.CallTool(ctx, tool, args)
	if err != nil {
		log.WithTool(tool).Warnw("tool call failed", "error", err)
		return
	}
	if resp.Error != nil {
		log.WithTool(tool).Warnw("tool returned error", "code", resp.Error.Code, "message", resp.Error.Message)
		return
	}
	discovery.Apply(tool, resp, o.discovered, o.cfg.Limits.MaxPreviewRows)
}

// RunQualityChecks runs the quality plan against the discovered tables.
// Checks without an explicit table fan out across the discovered tables,
// bounded by the plan step budget. Every invocation is recorded, including
// failed ones; server error payloads are kept verbatim.
func (o *Orchestrator) RunQualityChecks(ctx context.Context) error {
	if o.state != StateSchemaDiscovered {
		return o.stateError("run quality checks", StateSchemaDiscovered)
	}
	log := o.log.WithStep("quality")

	snapshot := o.discovered.Snapshot()
	o.qualityPlan = o.planner.PlanQuality(ctx, snapshot)

	budget := o.cfg.Limits.MaxPlanSteps
	if budget <= 0 {
		budget = 8
	}
	tables := snapshot.Tables
	if len(tables) > budget {
		tables = tables[:budget]
	}

	for _, check := range o.qualityPlan.Checks {
		if table := argTable(check.Args); table != "" {
			o.runQualityCheck(ctx, log, check.Tool, table, check.Args)
			continue
		}
		if len(tables) == 0 {
			// Nothing discovered: still run the check once so the server's
			// answer, error or not, lands in the report.
			o.runQualityCheck(ctx, log, check.Tool, "", check.Args)
			continue
		}
		for _, table := range tables {
			args := map[string]interface{}{"table_name": table}
			for k, v := range check.Args {
				args[k] = v
			}
			o.runQualityCheck(ctx, log, check.Tool, table, args)
		}
	}

	log.Infow("quality checks complete", "checks", o.checks.Len(), "failed", len(o.checks.Failed()))
	o.state = StateQualityChecked
	return nil
}

// runQualityCheck issues one quality call and records the outcome. Transport
// failures are recorded with a synthetic error payload so they show up in the
// report alongside server-reported errors.
func (o *Orchestrator) runQualityCheck(ctx context.Context, log *logger.Logger, tool, table string, args map[string]interface{}) {
	result := quality.CheckResult{Tool: tool, Table: table, Args: args}

	resp, err := o.client.CallTool(ctx, tool, args)
	switch {
	case err != nil:
		log.WithTool(tool).Warnw("check call failed", "table", table, "error", err)
		result.Error = &mcp.RPCError{Code: mcp.CodeTransportFailure, Message: err.Error()}
	case resp.Error != nil:
		log.WithTool(tool).Warnw("check returned error", "table", table,
			"code", resp.Error.Code, "message", resp.Error.Message)
		result.Error = resp.Error
	default:
		result.Raw = resp.Result
		result.Metrics = quality.ExtractMetrics(resp)
	}

	o.checks.Add(result)
}

// Summarize produces the final issues/recommendations report.
func (o *Orchestrator) Summarize(ctx context.Context) error {
	if o.state != StateQualityChecked {
		return o.stateError("summarize", StateQualityChecked)
	}

	o.summary = o.planner.Summarize(ctx, o.discovered.Snapshot(), o.checks.All())
	o.log.WithStep("summary").Infow("run summarized",
		"issues", len(o.summary.Issues), "recommendations", len(o.summary.Recommendations))
	o.state = StateSummarized
	return nil
}

// Result materializes the run record. Valid once the run is summarized.
func (o *Orchestrator) Result() *RunResult {
	elapsed := int64(0)
	if !o.startedAt.IsZero() {
		elapsed = time.Since(o.startedAt).Milliseconds()
	}
	return &RunResult{
		Prompt:        o.prompt,
		Intent:        o.intent,
		DiscoveryPlan: o.discoveryPlan,
		QualityPlan:   o.qualityPlan,
		Discovered:    o.discovered.Snapshot(),
		Checks:        o.checks.All(),
		Summary:       o.summary,
		StartedAt:     o.startedAt,
		DurationMS:    elapsed,
	}
}

// RunFull executes the whole pipeline for one prompt. Handshake failure is
// fatal; individual tool failures are recorded and the run continues.
func (o *Orchestrator) RunFull(ctx context.Context, prompt string) (*RunResult, error) {
	o.startedAt = time.Now()

	if err := o.IngestPrompt(prompt); err != nil {
		return nil, err
	}
	if err := o.DeriveIntent(ctx); err != nil {
		return nil, err
	}
	if err := o.EnsureConnection(ctx); err != nil {
		return nil, err
	}
	if err := o.DiscoverSchema(ctx); err != nil {
		return nil, err
	}
	if err := o.RunQualityChecks(ctx); err != nil {
		return nil, err
	}
	if err := o.Summarize(ctx); err != nil {
		return nil, err
	}

	o.state = StateDone
	return o.Result(), nil
}

func (o *Orchestrator) stateError(action string, want State) error {
	return fmt.Errorf("cannot %s in state %q (requires %q)", action, o.state, want)
}

// argTable reads an explicit table name out of planner-provided arguments.
func argTable(args map[string]interface{}) string {
	for _, key := range []string{"table_name", "table", "object_name"} {
		if s, ok := args[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
