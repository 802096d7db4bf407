package a2a

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/keys"
)

func TestMiddlewareConvertsHandlerErrors(t *testing.T) {
	svc, _ := newTestService(t)
	logger := log.New(io.Discard, "", 0)

	s := server.NewMCPServer("test", "1.0.0",
		server.WithToolHandlerMiddleware(Middleware(svc, logger)),
	)
	s.AddTool(
		mcp.NewTool("always_fails", mcp.WithDescription("fails for the test")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("store unavailable")
		},
	)

	result, err := callTool(t, s, "always_fails", map[string]any{})
	if err != nil {
		t.Fatalf("handler error should not become an RPC error: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["error"] != "store unavailable" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestMiddlewareRearmsHeartbeat(t *testing.T) {
	svc, st := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)
	ctx := context.Background()

	registerAgent(t, srv, "p1", "task-auth")
	st.FastForward(121 * time.Second)
	if ok, _ := st.Exists(ctx, keys.Heartbeat("p1", "task-auth")); ok {
		t.Fatal("heartbeat should have lapsed")
	}

	// Any successful tool call naming the session counts as a heartbeat.
	if _, err := callTool(t, srv, "check_messages", map[string]any{
		"project_id":   "p1",
		"session_name": "task-auth",
	}); err != nil {
		t.Fatalf("check_messages: %v", err)
	}
	if ok, _ := st.Exists(ctx, keys.Heartbeat("p1", "task-auth")); !ok {
		t.Error("tool call should re-arm the heartbeat")
	}
}

func TestMiddlewareRearmsFromSession(t *testing.T) {
	svc, st := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)
	ctx := context.Background()

	registerAgent(t, srv, "p1", "task-auth")
	registerAgent(t, srv, "p1", "task-api")
	st.FastForward(121 * time.Second)

	if _, err := callTool(t, srv, "query_agent", map[string]any{
		"project_id":        "p1",
		"from_session":      "task-auth",
		"to_session":        "task-api",
		"query_type":        "status",
		"query":             "ping",
		"wait_for_response": false,
	}); err != nil {
		t.Fatalf("query_agent: %v", err)
	}
	if ok, _ := st.Exists(ctx, keys.Heartbeat("p1", "task-auth")); !ok {
		t.Error("messaging tools should re-arm the sender's heartbeat")
	}
	if ok, _ := st.Exists(ctx, keys.Heartbeat("p1", "task-api")); ok {
		t.Error("recipient's heartbeat should stay lapsed")
	}
}

func TestMiddlewareSkipsUnregister(t *testing.T) {
	svc, st := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)
	ctx := context.Background()

	registerAgent(t, srv, "p1", "task-auth")
	if _, err := callTool(t, srv, "unregister_agent", map[string]any{
		"project_id":   "p1",
		"session_name": "task-auth",
	}); err != nil {
		t.Fatalf("unregister_agent: %v", err)
	}
	if ok, _ := st.Exists(ctx, keys.Heartbeat("p1", "task-auth")); ok {
		t.Error("unregister must not leave a heartbeat key behind")
	}
}
