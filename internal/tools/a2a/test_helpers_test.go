package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/config"
	"github.com/splitmind/a2amcp/internal/coord"
	"github.com/splitmind/a2amcp/internal/store/memory"
)

// newTestService returns a coordination service on the in-memory store,
// wired like production but with a fast poll interval.
func newTestService(t *testing.T) (*coord.Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	cfg := config.DefaultConfig()
	cfg.StatusDir = t.TempDir()
	logger := log.New(io.Discard, "", 0)
	return coord.NewService(st, cfg, logger, coord.WithPollInterval(5*time.Millisecond)), st
}

// testServer creates a MCPServer with all tools registered for testing. The
// heartbeat/error middleware is part of every production call path, so it is
// installed here too.
func testServer(svc *coord.Service, logger *log.Logger) *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0",
		server.WithToolHandlerMiddleware(Middleware(svc, logger)),
	)
	Register(s, svc, logger)
	return s
}

// callTool calls a registered tool via the MCPServer's HandleMessage.
// Returns the parsed CallToolResult or an error.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()

	reqJSON, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	respJSON := s.HandleMessage(context.Background(), reqJSON)

	respBytes, marshalErr := json.Marshal(respJSON)
	if marshalErr != nil {
		t.Fatalf("marshal response: %v", marshalErr)
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	var result mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	return &result, nil
}

// resultText extracts the first text content from a CallToolResult.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

// decodeResult parses a tool result's JSON object payload.
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return payload
}

// decodeArray parses a tool result's JSON array payload.
func decodeArray(t *testing.T, result *mcp.CallToolResult) []any {
	t.Helper()
	var payload []any
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return payload
}

// registerAgent registers a session through the register_agent tool.
func registerAgent(t *testing.T, s *server.MCPServer, projectID, session string) {
	t.Helper()
	result, err := callTool(t, s, "register_agent", map[string]any{
		"project_id":   projectID,
		"session_name": session,
		"task_id":      session + "-task",
		"branch":       session + "-branch",
		"description":  "works on " + session,
	})
	if err != nil {
		t.Fatalf("register %s: %v", session, err)
	}
	payload := decodeResult(t, result)
	if payload["status"] != "registered" {
		t.Fatalf("register %s: %v", session, payload)
	}
}
