// Package orchestrator drives a full assessment run: intent, handshake,
// schema discovery, quality checks and the final report, in that order.
package orchestrator

import (
	"time"

	"github.com/dbsmedya/dqscout/internal/discovery"
	"github.com/dbsmedya/dqscout/internal/planner"
	"github.com/dbsmedya/dqscout/internal/quality"
)

// State names the phase a run has reached. Steps may only fire from the
// state that precedes them.
type State string

const (
	StateStart            State = "start"
	StateIntentDerived    State = "intent-derived"
	StateConnected        State = "connected"
	StateSchemaDiscovered State = "schema-discovered"
	StateQualityChecked   State = "quality-checked"
	StateSummarized       State = "summarized"
	StateDone             State = "done"
)

// RunResult is the complete record of one assessment run.
type RunResult struct {
	Prompt        string                `json:"prompt"`
	Intent        planner.Intent        `json:"intent"`
	DiscoveryPlan planner.DiscoveryPlan `json:"discovery_plan"`
	QualityPlan   planner.QualityPlan   `json:"quality_plan"`
	Discovered    discovery.Snapshot    `json:"discovered"`
	Checks        []quality.CheckResult `json:"checks"`
	Summary       planner.Summary       `json:"report"`
	StartedAt     time.Time             `json:"started_at"`
	DurationMS    int64                 `json:"duration_ms"`
}
