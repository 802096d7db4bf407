package a2a

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// registerAnnounceFileChange registers announce_file_change and its
// register_file_change alias.
func registerAnnounceFileChange(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	spec := func(name string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription("Announce that you are about to modify a file. Takes an advisory lock so other agents see the file as busy; fails with a conflict if someone else already holds it. Call release_file_lock when done."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("file_path", mcp.Required(), mcp.Description("Path of the file you are changing")),
			mcp.WithString("change_type", mcp.Required(), mcp.Description("Kind of change: 'create', 'modify', 'delete', or 'refactor'")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Short description of the change")),
		)
	}
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return invalidArgs(err)
		}
		sessionName, err := requireString(args, "session_name")
		if err != nil {
			return invalidArgs(err)
		}
		filePath, err := requireString(args, "file_path")
		if err != nil {
			return invalidArgs(err)
		}
		changeType, err := requireString(args, "change_type")
		if err != nil {
			return invalidArgs(err)
		}
		description, err := requireString(args, "description")
		if err != nil {
			return invalidArgs(err)
		}

		if err := svc.AnnounceFileChange(ctx, projectID, sessionName, filePath, changeType, description); err != nil {
			var conflict *coord.ConflictError
			if errors.As(err, &conflict) {
				return jsonText(map[string]any{
					"status":     "conflict",
					"error":      "File is locked by " + conflict.Lock.Session,
					"lock_info":  conflict.Lock,
					"suggestion": "Query that agent about their progress or wait",
				}), nil
			}
			return nil, err
		}
		return jsonText(map[string]any{
			"status":    "locked",
			"file_path": filePath,
			"message":   "File locked successfully. Remember to release when done.",
		}), nil
	}
	s.AddTool(spec("announce_file_change"), handler)
	s.AddTool(spec("register_file_change"), handler)
}

// registerReleaseFileLock registers release_file_lock and its release_file
// alias.
func registerReleaseFileLock(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	spec := func(name string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription("Release your advisory lock on a file after finishing a change. Other agents are notified that the file is free."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("file_path", mcp.Required(), mcp.Description("Path of the file to release")),
		)
	}
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return invalidArgs(err)
		}
		sessionName, err := requireString(args, "session_name")
		if err != nil {
			return invalidArgs(err)
		}
		filePath, err := requireString(args, "file_path")
		if err != nil {
			return invalidArgs(err)
		}

		if err := svc.ReleaseFileLock(ctx, projectID, sessionName, filePath); err != nil {
			if errors.Is(err, coord.ErrNotLocked) {
				return jsonText(map[string]any{
					"status":  "not_locked",
					"message": "File was not locked",
				}), nil
			}
			var notOwner *coord.NotOwnerError
			if errors.As(err, &notOwner) {
				return errorResult("not_owner", fmt.Sprintf("File is locked by %s, not you", notOwner.Holder)), nil
			}
			return nil, err
		}
		return jsonText(map[string]any{
			"status":    "released",
			"file_path": filePath,
		}), nil
	}
	s.AddTool(spec("release_file_lock"), handler)
	s.AddTool(spec("release_file"), handler)
}

// registerCheckFileConflicts registers the check_file_conflicts tool.
func registerCheckFileConflicts(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("check_file_conflicts",
			mcp.WithDescription("Check whether files you plan to touch are locked by other agents. With no file list, reports every lock held by someone else in the project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithArray("files", mcp.Description("File paths to check; omit to scan all locks")),
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
			files := stringSlice(args, "files")

			conflicts, checked, err := svc.CheckFileConflicts(ctx, projectID, sessionName, files)
			if err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":    "ok",
				"conflicts": conflicts,
				"checked":   checked,
			}), nil
		},
	)
}

// registerRecentChanges registers the get_recent_changes tool.
func registerRecentChanges(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("get_recent_changes",
			mcp.WithDescription("List recent file change announcements in the project, newest first."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 20)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			projectID, err := requireString(args, "project_id")
			if err != nil {
				return invalidArgs(err)
			}
			limit := int(optionalFloat64(args, "limit", 0))

			changes, err := svc.RecentChanges(ctx, projectID, limit)
			if err != nil {
				return nil, err
			}
			return jsonText(changes), nil
		},
	)
}
