package a2a

import (
	"io"
	"log"
	"strings"
	"testing"
)

func TestRegisterAgentTool(t *testing.T) {
	svc, _ := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)

	result, err := callTool(t, srv, "register_agent", map[string]any{
		"project_id":   "p1",
		"session_name": "task-auth",
		"task_id":      "auth",
		"branch":       "feature/auth",
		"description":  "Building authentication",
	})
	if err != nil {
		t.Fatalf("register_agent: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["status"] != "registered" || payload["session_name"] != "task-auth" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if others, ok := payload["other_active_agents"].([]any); !ok || len(others) != 0 {
		t.Errorf("other_active_agents = %v", payload["other_active_agents"])
	}

	registerAgent(t, srv, "p1", "task-api")
	result, err = callTool(t, srv, "register_agent", map[string]any{
		"project_id":   "p1",
		"session_name": "task-ui",
		"task_id":      "ui",
		"branch":       "feature/ui",
		"description":  "Building the UI",
	})
	if err != nil {
		t.Fatalf("register_agent: %v", err)
	}
	payload = decodeResult(t, result)
	others, _ := payload["other_active_agents"].([]any)
	if len(others) != 2 {
		t.Errorf("other_active_agents = %v, want 2 entries", others)
	}
	if msg, _ := payload["message"].(string); !strings.Contains(msg, "2 other agents") {
		t.Errorf("message = %q", msg)
	}
}

func TestRegisterAgentMissingArgs(t *testing.T) {
	svc, _ := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing project_id", map[string]any{"session_name": "s", "task_id": "t", "branch": "b", "description": "d"}},
		{"missing session_name", map[string]any{"project_id": "p", "task_id": "t", "branch": "b", "description": "d"}},
		{"missing task_id", map[string]any{"project_id": "p", "session_name": "s", "branch": "b", "description": "d"}},
		{"missing branch", map[string]any{"project_id": "p", "session_name": "s", "task_id": "t", "description": "d"}},
		{"missing description", map[string]any{"project_id": "p", "session_name": "s", "task_id": "t", "branch": "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := callTool(t, srv, "register_agent", tt.args)
			if err != nil {
				t.Fatalf("callTool: %v", err)
			}
			payload := decodeResult(t, result)
			if payload["status"] != "error" || payload["error"] != "invalid_arguments" {
				t.Errorf("unexpected payload: %v", payload)
			}
		})
	}
}

func TestUnregisterAgentTool(t *testing.T) {
	svc, _ := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)

	registerAgent(t, srv, "p1", "task-auth")
	result, err := callTool(t, srv, "unregister_agent", map[string]any{
		"project_id":   "p1",
		"session_name": "task-auth",
	})
	if err != nil {
		t.Fatalf("unregister_agent: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["status"] != "unregistered" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if _, ok := payload["todo_summary"].(map[string]any); !ok {
		t.Errorf("todo_summary missing: %v", payload)
	}
	if msg, _ := payload["message"].(string); !strings.Contains(msg, "Completed 0/0 todos") {
		t.Errorf("message = %q", msg)
	}

	// Second unregister finds nothing.
	result, err = callTool(t, srv, "unregister_agent", map[string]any{
		"project_id":   "p1",
		"session_name": "task-auth",
	})
	if err != nil {
		t.Fatalf("unregister_agent: %v", err)
	}
	if payload := decodeResult(t, result); payload["status"] != "not_found" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestHeartbeatTool(t *testing.T) {
	svc, _ := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)

	registerAgent(t, srv, "p1", "task-auth")
	result, err := callTool(t, srv, "heartbeat", map[string]any{
		"project_id":   "p1",
		"session_name": "task-auth",
	})
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["status"] != "ok" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if ts, _ := payload["timestamp"].(string); ts == "" {
		t.Error("timestamp missing")
	}
}

func TestListAgentsToolAndAlias(t *testing.T) {
	svc, _ := newTestService(t)
	logger := log.New(io.Discard, "", 0)
	srv := testServer(svc, logger)

	registerAgent(t, srv, "p1", "task-auth")
	registerAgent(t, srv, "p1", "task-api")

	for _, tool := range []string{"list_active_agents", "get_active_agents"} {
		result, err := callTool(t, srv, tool, map[string]any{"project_id": "p1"})
		if err != nil {
			t.Fatalf("%s: %v", tool, err)
		}
		payload := decodeResult(t, result)
		if len(payload) != 2 {
			t.Errorf("%s listed %d agents, want 2", tool, len(payload))
		}
		agent, ok := payload["task-auth"].(map[string]any)
		if !ok {
			t.Fatalf("%s: task-auth missing: %v", tool, payload)
		}
		if agent["task_id"] != "task-auth-task" || agent["status"] != "active" {
			t.Errorf("%s: unexpected agent record: %v", tool, agent)
		}
	}
}
