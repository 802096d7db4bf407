// Package domain holds the coordination entities shared between the service
// layer and the tool surface. It has no dependencies on other packages.
//
// All JSON tags match the wire format stored in the key-value store, so a
// record written by one server process can be read back by any other.
package domain

import "time"

// Agent status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Agent is one registered agent session within a project. The session name is
// not part of the record; it is the hash field the record is stored under.
type Agent struct {
	TaskID      string    `json:"task_id"`
	Branch      string    `json:"branch"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // active, completed
	StartedAt   time.Time `json:"started_at"`
	ProjectID   string    `json:"project_id"`
}

// Message type values for direct messages.
const (
	TypeQuery     = "query"
	TypeResponse  = "response"
	TypeBroadcast = "broadcast"
)

// Event type values. Events share the inbox with direct messages and are
// distinguished only by their type tag.
const (
	EventAgentJoined         = "agent_joined"
	EventAgentLeft           = "agent_left"
	EventAgentTimeout        = "agent_timeout"
	EventFileChangeAnnounced = "file_change_announced"
	EventFileLockReleased    = "file_lock_released"
	EventInterfaceRegistered = "interface_registered"
	EventTodoCompleted       = "todo_completed"
	EventTodoUpdate          = "todo_update"
)

// Message is a single inbox entry: a query, a response, a broadcast, or one
// of the event notifications. Fields not used by a given type are omitted on
// the wire, so one struct covers every shape that can land in an inbox.
type Message struct {
	ID               string       `json:"id,omitempty"`
	From             string       `json:"from,omitempty"`
	Type             string       `json:"type"`
	QueryType        string       `json:"query_type,omitempty"`
	MessageType      string       `json:"message_type,omitempty"`
	Content          string       `json:"content,omitempty"`
	ResponseTo       string       `json:"response_to,omitempty"`
	RequiresResponse bool         `json:"requires_response,omitempty"`
	SessionName      string       `json:"session_name,omitempty"`
	Session          string       `json:"session,omitempty"`
	TaskID           string       `json:"task_id,omitempty"`
	FilePath         string       `json:"file_path,omitempty"`
	ChangeType       string       `json:"change_type,omitempty"`
	Description      string       `json:"description,omitempty"`
	InterfaceName    string       `json:"interface_name,omitempty"`
	Definition       string       `json:"definition,omitempty"`
	TodoID           string       `json:"todo_id,omitempty"`
	TodoSummary      *TodoSummary `json:"todo_summary,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}

// Todo status values.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
	TodoBlocked    = "blocked"
)

// Todo is one item in an agent's ordered task list.
type Todo struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Status      string     `json:"status"` // pending, in_progress, completed, blocked
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TodoSummary aggregates todo counts by status.
type TodoSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// Summarize counts the given todos by status.
func Summarize(todos []Todo) TodoSummary {
	s := TodoSummary{Total: len(todos)}
	for _, t := range todos {
		switch t.Status {
		case TodoCompleted:
			s.Completed++
		case TodoPending:
			s.Pending++
		case TodoInProgress:
			s.InProgress++
		}
	}
	return s
}

// AgentTodos is one agent's todo list with derived aggregates, used by the
// project-wide todo listing.
type AgentTodos struct {
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
	TotalTodos  int    `json:"total_todos"`
	Completed   int    `json:"completed"`
	Todos       []Todo `json:"todos"`
}

// FileLock is an advisory claim on one file path. The path is not part of the
// record; it is encoded in the key the lock is stored under.
type FileLock struct {
	Session     string    `json:"session"`
	LockedAt    time.Time `json:"locked_at"`
	ChangeType  string    `json:"change_type"` // create, modify, delete
	Description string    `json:"description"`
}

// LockedFile pairs a lock with the path it covers, for conflict listings.
type LockedFile struct {
	FilePath string `json:"file_path"`
	FileLock
}

// ChangeRecord is one entry in the per-project recent-changes log.
type ChangeRecord struct {
	Session     string    `json:"session"`
	FilePath    string    `json:"file_path"`
	ChangeType  string    `json:"change_type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// InterfaceDef is a shared type or interface definition. The name is the hash
// field the definition is stored under.
type InterfaceDef struct {
	Definition   string    `json:"definition"`
	RegisteredBy string    `json:"registered_by"`
	FilePath     string    `json:"file_path,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Completion records that an agent finished its task.
type Completion struct {
	TaskID      string    `json:"task_id"`
	SessionName string    `json:"session_name"`
	CompletedAt time.Time `json:"completed_at"`
}
