// Package quality models the execution and outcome of remote quality checks.
package quality

import (
	"encoding/json"
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/dqscout/internal/mcp"
)

// CheckResult records one quality tool invocation: what was called, what came
// back, and any error payload the server returned. Errors are kept verbatim
// so the final report can surface them unmodified.
type CheckResult struct {
	Tool    string                 `json:"tool"`
	Table   string                 `json:"table,omitempty"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Metrics map[string]float64     `json:"metrics,omitempty"`
	Raw     json.RawMessage        `json:"raw,omitempty"`
	Error   *mcp.RPCError          `json:"error,omitempty"`
}

// Failed reports whether the server answered this check with an error.
func (c CheckResult) Failed() bool {
	return c.Error != nil
}

// RunResults accumulates check results keyed by (table, tool) in insertion
// order. A repeated invocation of the same check overwrites the earlier entry.
type RunResults struct {
	results *orderedmap.OrderedMap[string, CheckResult]
}

// NewRunResults creates an empty accumulator.
func NewRunResults() *RunResults {
	return &RunResults{results: orderedmap.NewOrderedMap[string, CheckResult]()}
}

// Add records a check result.
func (r *RunResults) Add(result CheckResult) {
	r.results.Set(resultKey(result.Table, result.Tool), result)
}

// Get returns the recorded result for a (table, tool) pair.
func (r *RunResults) Get(table, tool string) (CheckResult, bool) {
	return r.results.Get(resultKey(table, tool))
}

// All returns the recorded results in insertion order.
func (r *RunResults) All() []CheckResult {
	out := make([]CheckResult, 0, r.results.Len())
	for _, k := range r.results.Keys() {
		v, _ := r.results.Get(k)
		out = append(out, v)
	}
	return out
}

// Failed returns only the results that carry an error payload.
func (r *RunResults) Failed() []CheckResult {
	var out []CheckResult
	for _, res := range r.All() {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Len returns the number of recorded results.
func (r *RunResults) Len() int {
	return r.results.Len()
}

// MarshalJSON renders the results as an ordered list.
func (r *RunResults) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.All())
}

func resultKey(table, tool string) string {
	return table + "|" + mcp.CanonicalToolName(tool)
}

// metricKeys are the well-known metric fields quality tools return, mapped to
// the normalized names used in reports.
var metricKeys = map[string]string{
	"null_count":     "null_count",
	"nullcount":      "null_count",
	"missing_count":  "null_count",
	"missingvalues":  "null_count",
	"distinct_count": "distinct_count",
	"distinctcount":  "distinct_count",
	"unique_count":   "distinct_count",
	"row_count":      "row_count",
	"rowcount":       "row_count",
	"count":          "row_count",
	"min":            "min",
	"minimum":        "min",
	"max":            "max",
	"maximum":        "max",
	"mean":           "mean",
	"avg":            "mean",
	"stddev":         "stddev",
	"std_dev":        "stddev",
}

// ExtractMetrics pulls well-known numeric metrics out of a tool response,
// looking through MCP content wrappers and nested objects. Best-effort: an
// unrecognizable payload yields an empty map, never an error.
func ExtractMetrics(resp *mcp.Response) map[string]float64 {
	metrics := map[string]float64{}
	if resp == nil || resp.Error != nil || len(resp.Result) == 0 {
		return metrics
	}
	var payload interface{}
	if err := json.Unmarshal(resp.Result, &payload); err != nil {
		return metrics
	}
	collectMetrics(payload, metrics, 0)
	return metrics
}

// collectMetrics walks the payload tree looking for known metric keys.
// Depth is bounded to keep pathological payloads cheap.
func collectMetrics(payload interface{}, metrics map[string]float64, depth int) {
	if depth > 6 {
		return
	}
	switch v := payload.(type) {
	case map[string]interface{}:
		for key, value := range v {
			if key == "content" {
				collectMetrics(value, metrics, depth+1)
				continue
			}
			if key == "text" {
				if s, ok := value.(string); ok {
					var inner interface{}
					if err := json.Unmarshal([]byte(s), &inner); err == nil {
						collectMetrics(inner, metrics, depth+1)
					}
				}
				continue
			}
			normalized, known := metricKeys[strings.ToLower(key)]
			if known {
				if f, ok := ToFloat64(value); ok {
					metrics[normalized] = f
					continue
				}
			}
			collectMetrics(value, metrics, depth+1)
		}
	case []interface{}:
		for _, item := range v {
			collectMetrics(item, metrics, depth+1)
		}
	}
}
