package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dbsmedya/dqscout/internal/config"
	"github.com/dbsmedya/dqscout/internal/discovery"
	"github.com/dbsmedya/dqscout/internal/logger"
	"github.com/dbsmedya/dqscout/internal/quality"
)

// chatCompleter is the slice of the OpenAI client the planner uses.
// Satisfied by *openai.Client; tests substitute a stub.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Planner produces tool plans and result summaries. With no chat client it
// operates in deterministic fallback mode and never touches the network.
type Planner struct {
	chat           chatCompleter
	model          string
	temperature    float32
	maxPromptBytes int
	maxPlanSteps   int
	log            *logger.Logger
}

// New creates a Planner from configuration. An empty API key yields a planner
// in fallback mode.
func New(cfg config.LLMConfig, limits config.LimitsConfig, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.NewDefault()
	}
	p := &Planner{
		model:          cfg.Model,
		temperature:    float32(cfg.Temperature),
		maxPromptBytes: limits.MaxPromptBytes,
		maxPlanSteps:   limits.MaxPlanSteps,
		log:            log,
	}
	if p.maxPromptBytes <= 0 {
		p.maxPromptBytes = 12000
	}
	if p.maxPlanSteps <= 0 {
		p.maxPlanSteps = 8
	}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		p.chat = openai.NewClientWithConfig(clientCfg)
	}
	return p
}

// Available reports whether a model is configured.
func (p *Planner) Available() bool {
	return p.chat != nil
}

// ParseIntent turns the raw user prompt into a structured intent. Fallback:
// the prompt verbatim as the goal with no patterns or constraints.
func (p *Planner) ParseIntent(ctx context.Context, prompt string) Intent {
	fallback := Intent{Goal: prompt, TargetPatterns: []string{}, Constraints: []string{}}

	data := p.chatJSON(ctx, intentSystemPrompt, fmt.Sprintf(intentUserPrompt, prompt))
	if data == nil {
		return fallback
	}

	intent := Intent{
		Goal:           stringField(data, "goal"),
		TargetPatterns: stringListField(data, "target_patterns"),
		Constraints:    stringListField(data, "constraints"),
	}
	if intent.Goal == "" {
		intent.Goal = prompt
	}
	return intent
}

// PlanDiscovery chooses the metadata tools to invoke for an intent.
// Fallback: list databases, then list tables.
func (p *Planner) PlanDiscovery(ctx context.Context, intent Intent) DiscoveryPlan {
	intentJSON, _ := json.Marshal(intent)

	data := p.chatJSON(ctx, discoverySystemPrompt, fmt.Sprintf(discoveryUserPrompt, intentJSON))
	steps := planSteps(data, "steps")
	if len(steps) == 0 {
		return FallbackDiscoveryPlan()
	}
	if len(steps) > p.maxPlanSteps {
		steps = steps[:p.maxPlanSteps]
	}
	return DiscoveryPlan{Steps: steps}
}

// PlanQuality chooses the quality metric tools to run over the discovered
// schema. Fallback: missing values, distinct categories, univariate stats.
func (p *Planner) PlanQuality(ctx context.Context, discovered discovery.Snapshot) QualityPlan {
	discoJSON, _ := json.Marshal(discovered)

	data := p.chatJSON(ctx, qualitySystemPrompt,
		fmt.Sprintf(qualityUserPrompt, truncate(string(discoJSON), p.maxPromptBytes)))
	steps := planSteps(data, "dq_tools")
	if len(steps) == 0 {
		return FallbackQualityPlan()
	}
	if len(steps) > p.maxPlanSteps {
		steps = steps[:p.maxPlanSteps]
	}

	checks := make([]CheckSpec, 0, len(steps))
	for _, s := range steps {
		checks = append(checks, CheckSpec{Tool: s.Tool, Args: s.Args, Reason: s.Why})
	}
	return QualityPlan{Checks: checks}
}

// Summarize interprets the collected metrics into an issues/recommendations
// report. Fallback: a deterministic summary derived from the recorded
// results, with every per-tool error surfaced as an issue.
func (p *Planner) Summarize(ctx context.Context, discovered discovery.Snapshot, checks []quality.CheckResult) Summary {
	discoJSON, _ := json.Marshal(discovered)
	checksJSON, _ := json.Marshal(checks)

	data := p.chatJSON(ctx, summarySystemPrompt, fmt.Sprintf(summaryUserPrompt,
		truncate(string(discoJSON), p.maxPromptBytes/2),
		truncate(string(checksJSON), p.maxPromptBytes)))
	if data == nil {
		return FallbackSummary(discovered, checks)
	}

	summary := Summary{
		Summary:         stringField(data, "summary"),
		Issues:          stringListField(data, "issues"),
		Recommendations: stringListField(data, "recommendations"),
	}
	if summary.Summary == "" {
		summary.Summary = "(missing summary)"
	}
	return summary
}

// FallbackDiscoveryPlan is the fixed plan used without a model.
func FallbackDiscoveryPlan() DiscoveryPlan {
	return DiscoveryPlan{Steps: []PlanStep{
		{Tool: "base_databaseList", Why: "List databases"},
		{Tool: "base_tableList", Why: "List tables in targets"},
	}}
}

// FallbackQualityPlan is the fixed plan used without a model.
func FallbackQualityPlan() QualityPlan {
	return QualityPlan{Checks: []CheckSpec{
		{Tool: "qlty_missingValues", Reason: "Null ratios"},
		{Tool: "qlty_distinctCategories", Reason: "Distinct counts"},
		{Tool: "qlty_univariateStatistics", Reason: "Min/max"},
	}}
}

// FallbackSummary derives a report from the recorded results without a model.
// Per-tool errors are surfaced verbatim; non-zero null counts become issues.
func FallbackSummary(discovered discovery.Snapshot, checks []quality.CheckResult) Summary {
	failed := 0
	issues := []string{}
	for _, c := range checks {
		if c.Failed() {
			failed++
			subject := c.Tool
			if c.Table != "" {
				subject = fmt.Sprintf("%s on %s", c.Tool, c.Table)
			}
			issues = append(issues, fmt.Sprintf("%s failed: %s (code %d)", subject, c.Error.Message, c.Error.Code))
			continue
		}
		if nulls, ok := c.Metrics["null_count"]; ok && nulls > 0 {
			subject := c.Table
			if subject == "" {
				subject = c.Tool
			}
			issues = append(issues, fmt.Sprintf("%s has %d missing value(s)", subject, int64(nulls)))
		}
	}

	recommendations := []string{}
	if len(discovered.Tables) == 0 {
		recommendations = append(recommendations, "No tables were discovered; verify the target patterns and server permissions.")
	}
	if failed > 0 {
		recommendations = append(recommendations, "Re-run the failed checks once the reported tool errors are resolved.")
	}
	if len(issues) == 0 {
		recommendations = append(recommendations, "No issues detected by the executed checks; consider widening the check selection.")
	}

	return Summary{
		Summary: fmt.Sprintf("Assessed %d table(s) across %d database(s); %d check(s) executed, %d failed.",
			len(discovered.Tables), len(discovered.Databases), len(checks), failed),
		Issues:          issues,
		Recommendations: recommendations,
	}
}

// chatJSON sends one system/user exchange and decodes the reply as a JSON
// object. Any failure (no client, transport error, non-JSON reply) returns
// nil so the caller falls back.
func (p *Planner) chatJSON(ctx context.Context, system, user string) map[string]interface{} {
	if !p.Available() {
		return nil
	}

	resp, err := p.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: truncate(user, p.maxPromptBytes)},
		},
	})
	if err != nil {
		p.log.Warnw("LLM call failed, using fallback", "error", err)
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	content := stripFences(resp.Choices[0].Message.Content)
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		p.log.Debugw("LLM reply was not JSON, using fallback", "content_bytes", len(content))
		return nil
	}
	return data
}

// planSteps decodes a list of {tool, args, why/reason} objects under the
// given key. Entries without a tool name are dropped.
func planSteps(data map[string]interface{}, key string) []PlanStep {
	if data == nil {
		return nil
	}
	items, ok := data[key].([]interface{})
	if !ok {
		return nil
	}
	var steps []PlanStep
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		tool, _ := entry["tool"].(string)
		if strings.TrimSpace(tool) == "" {
			continue
		}
		step := PlanStep{Tool: tool}
		if args, ok := entry["args"].(map[string]interface{}); ok {
			step.Args = args
		}
		if why, ok := entry["why"].(string); ok {
			step.Why = why
		} else if reason, ok := entry["reason"].(string); ok {
			step.Why = reason
		}
		steps = append(steps, step)
	}
	return steps
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

// stringListField coerces a list field to strings; non-string members are
// JSON-encoded rather than dropped, since issue lists sometimes come back as
// objects.
func stringListField(data map[string]interface{}, key string) []string {
	out := []string{}
	items, ok := data[key].([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		if raw, err := json.Marshal(item); err == nil {
			out = append(out, string(raw))
		}
	}
	return out
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// stripFences removes a surrounding markdown code fence from a model reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
