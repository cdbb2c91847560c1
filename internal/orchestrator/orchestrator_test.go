package orchestrator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/dqscout/internal/config"
	"github.com/dbsmedya/dqscout/internal/mcp"
)

// fakeServer simulates the remote tool server for full-pipeline tests. It
// answers the handshake and a small fixed tool catalog.
type fakeServer struct {
	mu         sync.Mutex
	toolCalls  []string
	rejectInit bool
	toolErrors map[string]*mcp.RPCError
}

func (f *fakeServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage        `json:"id"`
			Method string                 `json:"method"`
			Params map[string]interface{} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Mcp-Session-Id", "sess-42")
		w.Header().Set("Content-Type", "application/json")

		switch req.Method {
		case "initialize":
			if f.rejectInit {
				writeError(w, req.ID, &mcp.RPCError{Code: -32600, Message: "not today"})
				return
			}
			version, _ := req.Params["protocolVersion"].(string)
			writeResult(w, req.ID, map[string]interface{}{
				"protocolVersion": version,
				"serverInfo":      map[string]string{"name": "fake-dq-server", "version": "1.0"},
			})
		case "initialized":
			w.WriteHeader(http.StatusAccepted)
		case "tools/call":
			name, _ := req.Params["name"].(string)
			f.mu.Lock()
			f.toolCalls = append(f.toolCalls, name)
			f.mu.Unlock()
			f.handleTool(w, req.ID, name)
		default:
			writeError(w, req.ID, &mcp.RPCError{Code: mcp.CodeMethodNotFound, Message: "unknown method"})
		}
	}
}

func (f *fakeServer) handleTool(w http.ResponseWriter, id json.RawMessage, name string) {
	if rpcErr, ok := f.toolErrors[name]; ok {
		writeError(w, id, rpcErr)
		return
	}
	switch name {
	case "base_databaseList":
		writeResult(w, id, map[string]interface{}{"databases": []string{"FINANCE", "SALES"}})
	case "base_tableList":
		writeResult(w, id, map[string]interface{}{"tables": []string{"finance.orders", "finance.customers"}})
	case "base_tableDDL":
		writeResult(w, id, map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "CREATE MULTISET TABLE finance.orders (id INTEGER)"},
			},
		})
	case "base_tablePreview":
		writeResult(w, id, map[string]interface{}{
			"rows": []map[string]interface{}{{"id": 1}, {"id": 2}},
		})
	case "qlty_missingValues":
		writeResult(w, id, map[string]interface{}{"null_count": 4})
	case "qlty_distinctCategories":
		writeResult(w, id, map[string]interface{}{"distinct_count": 9})
	default:
		writeError(w, id, &mcp.RPCError{Code: mcp.CodeMethodNotFound, Message: "unknown tool: " + name})
	}
}

func (f *fakeServer) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.toolCalls {
		if c == name {
			n++
		}
	}
	return n
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": id, "result": result})
}

func writeError(w http.ResponseWriter, id json.RawMessage, rpcErr *mcp.RPCError) {
	json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": id, "error": rpcErr})
}

func testConfig(endpoint string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Endpoint = endpoint
	return cfg
}

func newTestOrchestrator(cfg *config.Config) *Orchestrator {
	o := New(cfg, nil)
	o.SetFrameWriter(io.Discard)
	return o
}

func TestRunFull_FallbackPipeline(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	o := newTestOrchestrator(testConfig(srv.URL))
	result, err := o.RunFull(context.Background(), "check data quality in finance")
	require.NoError(t, err)
	assert.Equal(t, StateDone, o.State())

	// Intent came from the deterministic fallback
	assert.Equal(t, "check data quality in finance", result.Intent.Goal)

	assert.Equal(t, []string{"FINANCE", "SALES"}, result.Discovered.Databases)
	assert.Equal(t, []string{"finance.orders", "finance.customers"}, result.Discovered.Tables)
	assert.Contains(t, result.Discovered.DDL, "finance.orders")
	assert.NotEmpty(t, result.Discovered.Previews)

	// Three fallback checks fanned out over two tables
	require.Len(t, result.Checks, 6)
	var missing, failed int
	for _, c := range result.Checks {
		if c.Tool == "qlty_missingValues" {
			assert.Equal(t, float64(4), c.Metrics["null_count"])
			missing++
		}
		if c.Failed() {
			failed++
		}
	}
	assert.Equal(t, 2, missing)
	assert.Equal(t, 2, failed, "qlty_univariateStatistics is not served")

	assert.Contains(t, result.Summary.Summary, "2 table(s)")
	assert.Contains(t, result.Summary.Summary, "6 check(s)")
	assert.NotEmpty(t, result.Summary.Issues)
	assert.NotEmpty(t, result.Summary.Recommendations)
}

func TestRunFull_ServerErrorPayloadPreserved(t *testing.T) {
	fake := &fakeServer{
		toolErrors: map[string]*mcp.RPCError{
			"qlty_missingValues": {Code: -32602, Message: "column list required"},
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	o := newTestOrchestrator(testConfig(srv.URL))
	result, err := o.RunFull(context.Background(), "nulls everywhere?")
	require.NoError(t, err)

	var found bool
	for _, c := range result.Checks {
		if c.Tool != "qlty_missingValues" {
			continue
		}
		found = true
		require.NotNil(t, c.Error)
		assert.Equal(t, -32602, c.Error.Code)
		assert.Equal(t, "column list required", c.Error.Message)
	}
	assert.True(t, found)
}

func TestRunFull_HandshakeFailureIsFatal(t *testing.T) {
	fake := &fakeServer{rejectInit: true}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	o := newTestOrchestrator(testConfig(srv.URL))
	_, err := o.RunFull(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handshake")
	assert.Empty(t, fake.toolCalls, "no tools may run after a failed handshake")
}

func TestRunFull_UnreachableServerIsFatal(t *testing.T) {
	o := newTestOrchestrator(testConfig("http://127.0.0.1:1/mcp"))
	_, err := o.RunFull(context.Background(), "anything")
	require.Error(t, err)
}

func TestRunFull_EmptyPromptFailsBeforeNetwork(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	o := newTestOrchestrator(testConfig(srv.URL))
	_, err := o.RunFull(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, fake.toolCalls)
}

func TestRunFull_DiscoveryErrorDoesNotAbort(t *testing.T) {
	fake := &fakeServer{
		toolErrors: map[string]*mcp.RPCError{
			"base_tableList": {Code: -32602, Message: "db_name required"},
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	o := newTestOrchestrator(testConfig(srv.URL))
	result, err := o.RunFull(context.Background(), "scan everything")
	require.NoError(t, err)

	assert.Equal(t, []string{"FINANCE", "SALES"}, result.Discovered.Databases)
	assert.Empty(t, result.Discovered.Tables)
	// No tables: each fallback check still runs exactly once
	assert.Len(t, result.Checks, 3)
}

func TestRunFull_EnrichmentRespectsStepBudget(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Limits.MaxPlanSteps = 1

	o := newTestOrchestrator(cfg)
	_, err := o.RunFull(context.Background(), "sample the tables")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls("base_tablePreview"))
}

func TestStepOrderEnforced(t *testing.T) {
	o := newTestOrchestrator(testConfig("http://localhost:9/mcp"))
	ctx := context.Background()

	err := o.DeriveIntent(ctx)
	require.Error(t, err, "deriving intent without a prompt")

	err = o.EnsureConnection(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state")

	require.NoError(t, o.IngestPrompt("look at the orders table"))
	require.NoError(t, o.DeriveIntent(ctx))
	assert.Equal(t, StateIntentDerived, o.State())

	err = o.DiscoverSchema(ctx)
	require.Error(t, err, "discovery requires a connection")
}

func TestIngestPrompt_TruncatesToBudget(t *testing.T) {
	cfg := testConfig("http://localhost:9/mcp")
	cfg.Limits.MaxPromptBytes = 10

	o := newTestOrchestrator(cfg)
	require.NoError(t, o.IngestPrompt("0123456789abcdef"))
	require.NoError(t, o.DeriveIntent(context.Background()))
	assert.Equal(t, "0123456789", o.intent.Goal)
}
