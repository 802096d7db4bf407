package a2a

import (
	"context"
	"errors"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/coord"
)

// registerAddTodo registers the add_todo tool.
func registerAddTodo(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("add_todo",
			mcp.WithDescription("Add an item to your todo list. Todos are visible to every agent in the project and summarized when you unregister."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("todo_item", mcp.Required(), mcp.Description("What needs doing")),
			mcp.WithNumber("priority", mcp.Description("Priority, 1 (highest) to 5 (default 1)")),
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
			text, err := requireString(args, "todo_item")
			if err != nil {
				return invalidArgs(err)
			}
			priority := int(optionalFloat64(args, "priority", 1))

			todo, err := svc.AddTodo(ctx, projectID, sessionName, text, priority)
			if err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status":  "added",
				"todo_id": todo.ID,
				"message": "Added todo: " + text,
			}), nil
		},
	)
}

// registerUpdateTodo registers the update_todo tool.
func registerUpdateTodo(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("update_todo",
			mcp.WithDescription("Change the status of one of your todos. Completing a todo notifies the other agents."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Id of the todo to update")),
			mcp.WithString("status", mcp.Required(),
				mcp.Description("New status"),
				mcp.Enum("pending", "in_progress", "completed", "blocked")),
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
			todoID, err := requireString(args, "todo_id")
			if err != nil {
				return invalidArgs(err)
			}
			status, err := requireString(args, "status")
			if err != nil {
				return invalidArgs(err)
			}

			if err := svc.UpdateTodo(ctx, projectID, sessionName, todoID, status); err != nil {
				if errors.Is(err, coord.ErrTodoNotFound) {
					return jsonText(map[string]any{
						"status":     "not_found",
						"todo_id":    todoID,
						"new_status": status,
					}), nil
				}
				return nil, err
			}
			return jsonText(map[string]any{
				"status":     "updated",
				"todo_id":    todoID,
				"new_status": status,
			}), nil
		},
	)
}

// registerUpdateTodoList registers the update_todo_list tool.
func registerUpdateTodoList(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("update_todo_list",
			mcp.WithDescription("Replace your whole todo list with a fresh set of pending items. Useful right after planning a task. An empty list clears your todos."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithArray("todos", mcp.Required(), mcp.Description("Todo texts, replacing any existing list")),
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
			if _, ok := args["todos"]; !ok {
				return invalidArgs(errors.New("missing required argument: todos"))
			}
			items := stringSlice(args, "todos")

			todos, err := svc.ReplaceTodos(ctx, projectID, sessionName, items)
			if err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status": "updated",
				"total":  len(todos),
			}), nil
		},
	)
}

// registerMyTodos registers get_my_todos and its get_todo_list alias.
func registerMyTodos(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	spec := func(name string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription("List your own todos in the order they were added."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
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

		todos, err := svc.ListTodos(ctx, projectID, sessionName)
		if err != nil {
			return nil, err
		}
		return jsonText(map[string]any{
			"session_name": sessionName,
			"total":        len(todos),
			"todos":        todos,
		}), nil
	}
	s.AddTool(spec("get_my_todos"), handler)
	s.AddTool(spec("get_todo_list"), handler)
}

// registerAllTodos registers the get_all_todos tool.
func registerAllTodos(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("get_all_todos",
			mcp.WithDescription("Show every agent's todos in the project, keyed by session name, with per-agent completion counts. Gives a quick picture of overall progress."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			projectID, err := requireString(args, "project_id")
			if err != nil {
				return invalidArgs(err)
			}

			all, err := svc.AllTodos(ctx, projectID)
			if err != nil {
				return nil, err
			}
			return jsonText(all), nil
		},
	)
}
