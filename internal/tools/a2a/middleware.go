package a2a

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// Middleware returns the tool handler middleware shared by every tool. It
// does two things:
//
//   - Converts residual handler errors (store failures and the like) into an
//     {"error": ...} payload, so a failed call never tears down the MCP
//     transport.
//   - Re-arms the calling session's heartbeat after a successful call. Any
//     tool call that names a session counts as a sign of life, so an agent
//     busy querying or updating todos never gets reaped mid-conversation.
func Middleware(svc *coord.Service, logger *log.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := next(ctx, req)
			if err != nil {
				logger.Printf("Tool %s failed: %v", req.Params.Name, err)
				return jsonText(map[string]any{"error": err.Error()}), nil
			}
			if result == nil || result.IsError {
				return result, nil
			}

			// unregister_agent removes the session; re-arming its heartbeat
			// here would leave an orphan key behind.
			if req.Params.Name == "unregister_agent" {
				return result, nil
			}

			args := req.GetArguments()
			projectID, _ := args["project_id"].(string)
			sessionName, _ := args["session_name"].(string)
			if sessionName == "" {
				sessionName, _ = args["from_session"].(string)
			}
			if projectID != "" && sessionName != "" {
				if err := svc.Touch(ctx, projectID, sessionName); err != nil {
					logger.Printf("Heartbeat re-arm for %s/%s: %v", projectID, sessionName, err)
				}
			}
			return result, nil
		}
	}
}
