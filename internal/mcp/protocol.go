// Package mcp implements the JSON-RPC transport client for the remote
// metadata/quality tool server.
package mcp

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC error codes the client inspects.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602

	// CodeTransportFailure marks a synthetic error recorded when a call never
	// produced a server response. Not a server-assigned code.
	CodeTransportFailure = -32000
)

// Request is a JSON-RPC 2.0 request frame.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response frame.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object of a failed JSON-RPC call.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsInvalidParams reports whether the response carries an invalid-params error.
func (r *Response) IsInvalidParams() bool {
	return r != nil && r.Error != nil && r.Error.Code == CodeInvalidParams
}

// ResultMap decodes the result payload into a generic map. Returns an empty
// map when the result is absent or not an object; callers treat tool output
// as best-effort data.
func (r *Response) ResultMap() map[string]interface{} {
	if r == nil || len(r.Result) == 0 {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(r.Result, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// ToolInfo describes a tool exposed by the server.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// initializeParams is the payload of the initialize handshake request.
type initializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ClientInfo      clientInfo             `json:"clientInfo"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the decoded result of a successful initialize call.
type InitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ServerInfo      ServerInfo      `json:"serverInfo,omitempty"`
}

// ServerInfo identifies the remote server implementation.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
