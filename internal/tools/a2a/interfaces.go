package a2a

import (
	"context"
	"errors"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// registerRegisterInterface registers the register_interface tool.
func registerRegisterInterface(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("register_interface",
			mcp.WithDescription("Share a type or interface definition with the project so other agents code against the same shapes. Re-registering a name replaces the previous definition."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("interface_name", mcp.Required(), mcp.Description("Name of the type or interface")),
			mcp.WithString("definition", mcp.Required(), mcp.Description("The definition, in whatever language the project uses")),
			mcp.WithString("file_path", mcp.Description("File where the definition lives")),
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
			name, err := requireString(args, "interface_name")
			if err != nil {
				return invalidArgs(err)
			}
			definition, err := requireString(args, "definition")
			if err != nil {
				return invalidArgs(err)
			}
			filePath := optionalString(args, "file_path", "")

			if err := svc.RegisterInterface(ctx, projectID, sessionName, name, definition, filePath); err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":         "registered",
				"interface_name": name,
				"message":        "Interface registered and available to all agents",
			}), nil
		},
	)
}

// registerQueryInterface registers the query_interface tool.
func registerQueryInterface(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("query_interface",
			mcp.WithDescription("Look up a shared interface definition by name. On a miss, suggests registered names that contain the query."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("interface_name", mcp.Required(), mcp.Description("Name to look up")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			projectID, err := requireString(args, "project_id")
			if err != nil {
				return invalidArgs(err)
			}
			name, err := requireString(args, "interface_name")
			if err != nil {
				return invalidArgs(err)
			}

			def, similar, err := svc.QueryInterface(ctx, projectID, name)
			if errors.Is(err, coord.ErrInterfaceNotFound) {
				return jsonText(map[string]any{
					"status":  "not_found",
					"error":   "Interface " + name + " not found",
					"similar": similar,
				}), nil
			}
			if err != nil {
				return nil, err
			}
			return jsonText(def), nil
		},
	)
}

// registerListInterfaces registers the list_interfaces tool.
func registerListInterfaces(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("list_interfaces",
			mcp.WithDescription("List every shared interface definition in the project, keyed by name."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			projectID, err := requireString(args, "project_id")
			if err != nil {
				return invalidArgs(err)
			}

			defs, err := svc.ListInterfaces(ctx, projectID)
			if err != nil {
				return nil, err
			}
			return jsonText(defs), nil
		},
	)
}
