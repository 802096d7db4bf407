// Package keys is the only module that knows the store key layout. Every key
// is namespaced under "project:{id}:" so unrelated projects never collide.
package keys

import "strings"

// build joins the project namespace, a kind, and optional arguments with ":".
func build(projectID, kind string, args ...string) string {
	parts := append([]string{"project:" + projectID, kind}, args...)
	return strings.Join(parts, ":")
}

// Agents returns the hash key mapping session name to agent record.
func Agents(projectID string) string {
	return build(projectID, "agents")
}

// AgentsPattern matches every project's agents hash. The reaper uses it to
// enumerate projects.
const AgentsPattern = "project:*:agents"

// ProjectFromAgentsKey recovers the project ID from a key matched by
// AgentsPattern. Returns "" if the key has a different shape.
func ProjectFromAgentsKey(key string) string {
	if !strings.HasPrefix(key, "project:") || !strings.HasSuffix(key, ":agents") {
		return ""
	}
	return key[len("project:") : len(key)-len(":agents")]
}

// Heartbeat returns the TTL string key holding an agent's liveness marker.
func Heartbeat(projectID, session string) string {
	return build(projectID, "heartbeat", session)
}

// Messages returns the list key holding an agent's FIFO inbox.
func Messages(projectID, session string) string {
	return build(projectID, "messages", session)
}

// Todos returns the list key holding an agent's ordered todo items.
func Todos(projectID, session string) string {
	return build(projectID, "todos", session)
}

// FileLock returns the TTL string key holding the lock for one file path.
// Paths are opaque; they are embedded in the key verbatim.
func FileLock(projectID, path string) string {
	return build(projectID, "files", path)
}

// FileLockPrefix returns the key prefix shared by all of a project's file
// locks. FileLockPattern appends the glob wildcard for key scans.
func FileLockPrefix(projectID string) string {
	return build(projectID, "files") + ":"
}

// FileLockPattern matches all file-lock keys within a project.
func FileLockPattern(projectID string) string {
	return FileLockPrefix(projectID) + "*"
}

// Interfaces returns the hash key mapping interface name to definition.
func Interfaces(projectID string) string {
	return build(projectID, "interfaces")
}

// RecentChanges returns the list key holding the bounded change log.
func RecentChanges(projectID string) string {
	return build(projectID, "recent_changes")
}

// CompletedTasks returns the hash key mapping task ID to completion record.
func CompletedTasks(projectID string) string {
	return build(projectID, "completed_tasks")
}
