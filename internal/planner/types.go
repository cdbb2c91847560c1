// Package planner chooses tool invocations and interprets results, delegating
// to an OpenAI-compatible model when a credential is configured and falling
// back to fixed deterministic plans when it is not.
package planner

// Intent is the structured reading of the user's free-text request. It is
// produced once per run and immutable afterwards.
type Intent struct {
	Goal           string   `json:"goal"`
	TargetPatterns []string `json:"target_patterns"`
	Constraints    []string `json:"constraints"`
}

// PlanStep names one discovery tool invocation.
type PlanStep struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args,omitempty"`
	Why  string                 `json:"why,omitempty"`
}

// DiscoveryPlan is an ordered list of metadata tools to invoke.
type DiscoveryPlan struct {
	Steps []PlanStep `json:"steps"`
}

// CheckSpec names one quality metric tool invocation.
type CheckSpec struct {
	Tool   string                 `json:"tool"`
	Args   map[string]interface{} `json:"args,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// QualityPlan is an ordered list of quality checks to run.
type QualityPlan struct {
	Checks []CheckSpec `json:"dq_tools"`
}

// Summary is the final issues/recommendations report.
type Summary struct {
	Summary         string   `json:"summary"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}
