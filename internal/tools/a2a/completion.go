package a2a

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// registerMarkTaskCompleted registers the mark_task_completed tool.
func registerMarkTaskCompleted(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("mark_task_completed",
			mcp.WithDescription("Record that your task is done. The completion is stored durably and a status file is written for orchestrators that watch the filesystem. Call this before unregistering."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Id of the completed task")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			projectID, err := requireString(args, "project_id")
			if err != nil {
				return invalidArgs(err)
			}
			sessionName, err := requireString(args, "session_name")
			if err != nil {
				return invalidArgs(err)
			}
			taskID, err := requireString(args, "task_id")
			if err != nil {
				return invalidArgs(err)
			}

			if err := svc.MarkTaskCompleted(ctx, projectID, sessionName, taskID); err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":  "success",
				"message": "Task " + taskID + " marked as completed",
			}), nil
		},
	)
}
