package a2a

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// InstructionsText returns the static instruction string sent to every
// connecting agent during MCP initialization. It walks through the
// coordination lifecycle: register, plan, lock, communicate, complete,
// unregister.
func InstructionsText() string {
	return `You are one of several AI agents working on the same project in parallel.
This server is how you coordinate with the others.

## Startup Checklist (every session)

1. register_agent project_id='<project>' session_name='<you>' task_id='<task>' branch='<branch>' description='<what you are building>'
2. update_todo_list with your plan, or add_todo items one by one
3. check_messages -- other agents may already have announcements queued for you
4. list_active_agents -- see who else is working and on what

## Core Workflow

### Before editing any file
    - announce_file_change file_path='...' change_type='modify' description='...'
    - A conflict response means another agent holds the file: query_agent them
      about their progress, work on something else, or wait and retry
    - release_file_lock as soon as you are done with the file

### Staying alive
    - heartbeat every 30-60 seconds; every tool call also counts as liveness
    - Agents that go silent past the timeout are cleaned up: their locks drop,
      their todos vanish, and the rest of the project is told they timed out

### Talking to other agents
    - query_agent to_session='<agent>' query_type='interface' query='...' blocks
      until they respond (default 30s timeout)
    - check_messages regularly -- queries from others land in your inbox, and you
      only see each message once
    - respond_to_query message_id='<id>' response='...' to answer a query
    - broadcast_message for announcements that concern everyone

### Sharing types
    - register_interface as soon as you define a type other agents will use
    - query_interface before inventing your own version of a shared shape

### Tracking progress
    - update_todo todo_id='<id>' status='in_progress' when you start an item
    - update_todo todo_id='<id>' status='completed' when you finish it
    - get_all_todos shows every agent's progress at a glance

### Finishing
    - mark_task_completed task_id='<task>' when your task is done
    - unregister_agent -- releases your locks and tells the others you left

## Rules

- ALWAYS register before doing anything else; most tools silently assume you exist
- ALWAYS announce a file before editing it and release it after
- ALWAYS heartbeat (or call some tool) at least once a minute
- ALWAYS check_messages regularly -- a blocked agent may be waiting on your answer
- NEVER edit a file another agent has locked; coordinate instead
- NEVER exit without mark_task_completed and unregister_agent`
}

// registerPrompts registers reusable prompt templates with the mcp-go server.
func registerPrompts(s *server.MCPServer) {
	s.AddPrompt(
		mcp.NewPrompt("agent-onboarding",
			mcp.WithPromptDescription("Join a project as a coordinating agent: register, plan, and check in with the other agents."),
			mcp.WithArgument("project_id", mcp.ArgumentDescription("Project identifier"), mcp.RequiredArgument()),
			mcp.WithArgument("session_name", mcp.ArgumentDescription("Your session name"), mcp.RequiredArgument()),
		),
		func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			project := req.Params.Arguments["project_id"]
			session := req.Params.Arguments["session_name"]
			return &mcp.GetPromptResult{
				Description: "Register with the project and plan your task",
				Messages: []mcp.PromptMessage{
					{
						Role: mcp.RoleUser,
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`You are joining project '%s' as '%s'. Follow these steps:

1. Call register_agent with your task id, branch, and a one-line description.
2. Break your task into todos and publish them with update_todo_list.
3. Call check_messages -- announcements may already be waiting for you.
4. Call list_active_agents and query_interface for any shared types your task
   touches before defining your own.
5. Start working. Announce every file before editing it and release it after.`, project, session),
						},
					},
				},
			}, nil
		},
	)

	s.AddPrompt(
		mcp.NewPrompt("agent-wrapup",
			mcp.WithPromptDescription("Finish a task cleanly: release locks, record completion, and leave the project."),
		),
		func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return &mcp.GetPromptResult{
				Description: "Wind down and unregister from the project",
				Messages: []mcp.PromptMessage{
					{
						Role: mcp.RoleUser,
						Content: mcp.TextContent{
							Type: "text",
							Text: `Your task is ending. Wind down in this order:

1. Call check_messages one last time and respond_to_query for anything pending.
2. Mark finished todos completed with update_todo.
3. Release every file you still hold with release_file_lock.
4. Call mark_task_completed with your task id.
5. Call unregister_agent. Do not make further tool calls after this.`,
						},
					},
				},
			}, nil
		},
	)
}
