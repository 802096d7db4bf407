package a2a

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// registerRegisterAgent registers the register_agent tool.
func registerRegisterAgent(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("register_agent",
			mcp.WithDescription("Register this agent with a project. Call once at session start, before any other tool. Clears stale state left by a previous run of the same session name and announces the arrival to the other agents."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier shared by all agents on the same codebase")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Unique tmux session name (e.g. 'task-123')")),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID this agent is working on")),
			mcp.WithString("branch", mcp.Required(), mcp.Description("Git branch for this task")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Brief description of the task")),
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
			branch, err := requireString(args, "branch")
			if err != nil {
				return invalidArgs(err)
			}
			description, err := requireString(args, "description")
			if err != nil {
				return invalidArgs(err)
			}

			res, err := svc.Register(ctx, projectID, sessionName, taskID, branch, description)
			if err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":              "registered",
				"project_id":          projectID,
				"session_name":        sessionName,
				"other_active_agents": res.OtherAgents,
				"message":             fmt.Sprintf("Successfully registered. %d other agents are active in this project.", len(res.OtherAgents)),
			}), nil
		},
	)
}

// registerUnregisterAgent registers the unregister_agent tool.
func registerUnregisterAgent(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("unregister_agent",
			mcp.WithDescription("Unregister this agent when its task is complete. Releases all file locks, clears todos and queued messages, and announces the departure with a final todo summary."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
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

			summary, _, err := svc.Unregister(ctx, projectID, sessionName)
			if errors.Is(err, coord.ErrAgentNotFound) {
				return jsonText(map[string]any{
					"status": "not_found",
					"error":  "Agent not registered",
				}), nil
			}
			if err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":       "unregistered",
				"todo_summary": summary,
				"message":      fmt.Sprintf("Successfully unregistered. Completed %d/%d todos.", summary.Completed, summary.Total),
			}), nil
		},
	)
}

// registerHeartbeat registers the heartbeat tool.
func registerHeartbeat(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("heartbeat",
			mcp.WithDescription("Signal that this agent is still alive. Call every 30-60 seconds; an agent whose heartbeat lapses is removed by the reaper and its locks are released."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
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

			if err := svc.Touch(ctx, projectID, sessionName); err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":    "ok",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

// registerListAgents registers list_active_agents and its get_active_agents
// alias.
func registerListAgents(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	spec := func(name string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription("List every registered agent in a project, keyed by session name."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		)
	}
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return invalidArgs(err)
		}

		agents, err := svc.ListAgents(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return jsonText(agents), nil
	}
	s.AddTool(spec("list_active_agents"), handler)
	s.AddTool(spec("get_active_agents"), handler)
}
