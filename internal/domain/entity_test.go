package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	todos := []Todo{
		{ID: "1", Status: TodoCompleted},
		{ID: "2", Status: TodoCompleted},
		{ID: "3", Status: TodoPending},
		{ID: "4", Status: TodoInProgress},
		{ID: "5", Status: TodoBlocked},
	}
	s := Summarize(todos)
	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Completed != 2 {
		t.Errorf("Completed = %d, want 2", s.Completed)
	}
	if s.Pending != 1 {
		t.Errorf("Pending = %d, want 1", s.Pending)
	}
	if s.InProgress != 1 {
		t.Errorf("InProgress = %d, want 1", s.InProgress)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Completed != 0 || s.Pending != 0 || s.InProgress != 0 {
		t.Errorf("Summarize(nil) = %+v, want zeros", s)
	}
}

// Event notifications share the Message struct with queries and responses;
// fields of the other shapes must stay off the wire.
func TestEventMessageOmitsUnusedFields(t *testing.T) {
	msg := Message{
		Type:        EventAgentJoined,
		SessionName: "task-auth",
		Description: "Building auth",
		Timestamp:   time.Now().UTC(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, absent := range []string{"query_type", "response_to", "file_path", "todo_id", "interface_name", "requires_response"} {
		if strings.Contains(s, absent) {
			t.Errorf("event JSON should not carry %q: %s", absent, s)
		}
	}
	for _, present := range []string{`"type":"agent_joined"`, `"session_name":"task-auth"`, `"timestamp"`} {
		if !strings.Contains(s, present) {
			t.Errorf("event JSON missing %s: %s", present, s)
		}
	}
}
