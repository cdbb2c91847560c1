package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// sessionIDHeader carries the server-assigned session across requests.
const sessionIDHeader = "Mcp-Session-Id"

// ClientConfig holds server connection details. All values are passed in
// explicitly; the client never reads the process environment.
type ClientConfig struct {
	Endpoint        string
	BearerToken     string
	Timeout         time.Duration
	ProtocolVersion string
	ClientName      string
	ClientVersion   string

	// FrameWriter receives the verbatim request/response frames. Defaults to
	// os.Stdout for traceability.
	FrameWriter io.Writer
}

// Client is a JSON-RPC over HTTP client for the tool server. It is not safe
// for concurrent use; the orchestrator issues one call at a time.
type Client struct {
	cfg       ClientConfig
	client    *http.Client
	frames    io.Writer
	sessionID string
	nextID    int64
	connected bool
}

// NewClient creates a client from the given configuration. The endpoint is
// normalized to a single trailing slash to avoid 307 redirects.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/") + "/"

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.ProtocolVersion == "" {
		cfg.ProtocolVersion = "2025-03-26"
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "dqscout"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "0.1.0"
	}

	frames := cfg.FrameWriter
	if frames == nil {
		frames = os.Stdout
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		frames: frames,
	}, nil
}

// Connected reports whether the handshake has completed.
func (c *Client) Connected() bool {
	return c.connected
}

// Connect performs the two-phase handshake: an initialize request negotiating
// protocol version and capabilities, followed by a best-effort initialized
// acknowledgment. It fails when the server returns an error or answers with a
// protocol version other than the one proposed.
func (c *Client) Connect(ctx context.Context) (*InitializeResult, error) {
	resp, err := c.Call(ctx, "initialize", initializeParams{
		ProtocolVersion: c.cfg.ProtocolVersion,
		Capabilities: map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
			"prompts":   map[string]interface{}{},
		},
		ClientInfo: clientInfo{Name: c.cfg.ClientName, Version: c.cfg.ClientVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize request failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("server rejected initialize: %w", resp.Error)
	}

	var result InitializeResult
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, fmt.Errorf("failed to decode initialize result: %w", err)
		}
	}
	if result.ProtocolVersion != "" && result.ProtocolVersion != c.cfg.ProtocolVersion {
		return nil, fmt.Errorf("server rejected protocol version %s (offered %s)",
			c.cfg.ProtocolVersion, result.ProtocolVersion)
	}

	// Acknowledgment notification; failures here do not undo the handshake.
	if _, err := c.Call(ctx, "initialized", map[string]interface{}{
		"clientCapabilities": map[string]interface{}{},
	}); err != nil {
		fmt.Fprintf(c.frames, "[mcp-client] initialized notification failed: %v\n", err)
	}

	c.connected = true
	return &result, nil
}

// Call sends a single JSON-RPC request and returns the decoded response.
// Both frames are written verbatim to the frame writer. There is no retry
// logic: a failed call is surfaced to the caller as-is.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (*Response, error) {
	c.nextID++
	req := Request{
		JSONRPC: "2.0",
		ID:      strconv.FormatInt(c.nextID, 10),
		Method:  method,
	}
	if params != nil {
		req.Params = params
	}

	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	fmt.Fprintln(c.frames, "[mcp-client => mcp-server]")
	fmt.Fprintln(c.frames, string(payload))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}
	if c.sessionID != "" {
		httpReq.Header.Set(sessionIDHeader, c.sessionID)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.cfg.Endpoint, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Fprintln(c.frames, "[mcp-client <= mcp-server]")
	fmt.Fprintln(c.frames, strings.TrimRight(string(body), "\n"))

	if sid := httpResp.Header.Get(sessionIDHeader); sid != "" {
		c.sessionID = sid
	}

	resp := decodeBody(body)
	if resp == nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return nil, fmt.Errorf("server returned %s with unparseable body", httpResp.Status)
		}
		// Notifications legitimately return empty bodies.
		return &Response{JSONRPC: "2.0"}, nil
	}
	return resp, nil
}

// CallTool invokes a named tool with the given arguments via tools/call. The
// name is canonicalized first, but it is dispatched even when the server never
// declared it; unknown names come back as ordinary error responses.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*Response, error) {
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	return c.Call(ctx, "tools/call", map[string]interface{}{
		"name":      CanonicalToolName(name),
		"arguments": arguments,
	})
}

// ListTools fetches the server tool catalog via tools/list.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	resp, err := c.Call(ctx, "tools/list", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("tools/list failed: %w", resp.Error)
	}

	var result struct {
		Tools []ToolInfo `json:"tools"`
	}
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, fmt.Errorf("failed to decode tool catalog: %w", err)
		}
	}
	return result.Tools, nil
}

// decodeBody parses a response body that is either plain JSON or an SSE
// stream. For SSE bodies the last parseable data: object wins, since a single
// response is expected per request.
func decodeBody(body []byte) *Response {
	text := strings.ReplaceAll(string(body), "\r\n", "\n")

	if strings.Contains(text, "data:") {
		var last *Response
		for _, line := range strings.Split(text, "\n") {
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			candidate := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if candidate == "" {
				continue
			}
			var resp Response
			if err := json.Unmarshal([]byte(candidate), &resp); err == nil {
				last = &resp
			}
		}
		if last != nil {
			return last
		}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return &resp
}
