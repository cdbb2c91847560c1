package quality

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/dqscout/internal/mcp"
)

func TestRunResults_OrderAndOverwrite(t *testing.T) {
	r := NewRunResults()

	r.Add(CheckResult{Tool: "qlty_missingValues", Table: "orders"})
	r.Add(CheckResult{Tool: "qlty_distinctCategories", Table: "orders"})
	r.Add(CheckResult{Tool: "qlty_missingValues", Table: "customers"})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "orders", all[0].Table)
	assert.Equal(t, "customers", all[2].Table)

	// Same (table, tool) pair overwrites in place
	r.Add(CheckResult{Tool: "qlty_missingValues", Table: "orders", Metrics: map[string]float64{"null_count": 5}})
	assert.Equal(t, 3, r.Len())

	got, ok := r.Get("orders", "qlty_missingValues")
	require.True(t, ok)
	assert.Equal(t, float64(5), got.Metrics["null_count"])
}

func TestRunResults_KeyUsesCanonicalToolName(t *testing.T) {
	r := NewRunResults()
	r.Add(CheckResult{Tool: "td_qlty_missingValues", Table: "orders"})

	_, ok := r.Get("orders", "qlty_missingValues")
	assert.True(t, ok)
}

func TestRunResults_Failed(t *testing.T) {
	r := NewRunResults()
	r.Add(CheckResult{Tool: "qlty_missingValues", Table: "orders"})
	r.Add(CheckResult{
		Tool:  "qlty_distinctCategories",
		Table: "orders",
		Error: &mcp.RPCError{Code: -32601, Message: "unknown tool"},
	})

	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "qlty_distinctCategories", failed[0].Tool)
	assert.Equal(t, -32601, failed[0].Error.Code)
	assert.Equal(t, "unknown tool", failed[0].Error.Message)
}

func TestRunResults_MarshalJSON(t *testing.T) {
	r := NewRunResults()
	r.Add(CheckResult{Tool: "qlty_missingValues", Table: "orders"})

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded []CheckResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "qlty_missingValues", decoded[0].Tool)
}

func TestExtractMetrics(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   map[string]float64
	}{
		{
			name:   "flat object",
			result: `{"null_count": 12, "distinct_count": 40}`,
			want:   map[string]float64{"null_count": 12, "distinct_count": 40},
		},
		{
			name:   "aliases normalized",
			result: `{"nullCount": 3, "avg": 1.5, "minimum": 0, "maximum": 10}`,
			want:   map[string]float64{"null_count": 3, "mean": 1.5, "min": 0, "max": 10},
		},
		{
			name:   "numeric strings",
			result: `{"row_count": "1200"}`,
			want:   map[string]float64{"row_count": 1200},
		},
		{
			name:   "mcp content wrapper",
			result: `{"content":[{"type":"text","text":"{\"null_count\": 7}"}]}`,
			want:   map[string]float64{"null_count": 7},
		},
		{
			name:   "nested per-column results",
			result: `{"columns":[{"name":"id","null_count":0},{"name":"email","null_count":4}]}`,
			want:   map[string]float64{"null_count": 4},
		},
		{
			name:   "garbage yields empty",
			result: `"not a metric payload"`,
			want:   map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &mcp.Response{Result: json.RawMessage(tt.result)}
			got := ExtractMetrics(resp)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMetrics_ErrorAndNil(t *testing.T) {
	assert.Empty(t, ExtractMetrics(nil))
	assert.Empty(t, ExtractMetrics(&mcp.Response{Error: &mcp.RPCError{Code: -1, Message: "x"}}))
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		input interface{}
		want  float64
		ok    bool
	}{
		{float64(1.5), 1.5, true},
		{int(3), 3, true},
		{"42", 42, true},
		{" 7.5 ", 7.5, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}

	for _, tt := range tests {
		got, ok := ToFloat64(tt.input)
		assert.Equal(t, tt.ok, ok, "input %v", tt.input)
		assert.Equal(t, tt.want, got, "input %v", tt.input)
	}
}

func TestToInt64(t *testing.T) {
	got, ok := ToInt64("12.9")
	assert.True(t, ok)
	assert.Equal(t, int64(12), got)

	_, ok = ToInt64(struct{}{})
	assert.False(t, ok)
}
