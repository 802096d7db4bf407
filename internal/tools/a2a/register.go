package a2a

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// Register registers every coordination tool with the mcp-go server. Several
// tools also register under a legacy alias name so older agent prompts keep
// working; alias and primary share one handler.
func Register(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	// Agent lifecycle tools (4)
	registerRegisterAgent(s, svc, logger)
	registerUnregisterAgent(s, svc, logger)
	registerHeartbeat(s, svc, logger)
	registerListAgents(s, svc, logger)

	// Messaging tools (4)
	registerQueryAgent(s, svc, logger)
	registerCheckMessages(s, svc, logger)
	registerRespondToQuery(s, svc, logger)
	registerBroadcastMessage(s, svc, logger)

	// File coordination tools (4)
	registerAnnounceFileChange(s, svc, logger)
	registerReleaseFileLock(s, svc, logger)
	registerCheckFileConflicts(s, svc, logger)
	registerRecentChanges(s, svc, logger)

	// Todo tools (5)
	registerAddTodo(s, svc, logger)
	registerUpdateTodo(s, svc, logger)
	registerUpdateTodoList(s, svc, logger)
	registerMyTodos(s, svc, logger)
	registerAllTodos(s, svc, logger)

	// Interface tools (3)
	registerRegisterInterface(s, svc, logger)
	registerQueryInterface(s, svc, logger)
	registerListInterfaces(s, svc, logger)

	// Completion tool (1)
	registerMarkTaskCompleted(s, svc, logger)

	registerPrompts(s)
}
