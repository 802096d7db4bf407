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

// defaultQueryTimeoutSeconds bounds how long query_agent blocks by default.
const defaultQueryTimeoutSeconds = 30

// registerQueryAgent registers query_agent and its send_message alias.
func registerQueryAgent(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	spec := func(name string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription("Send a query to another agent in the project. With wait_for_response=true (default) the call blocks until the answer arrives or the timeout passes; otherwise it returns the message id immediately and the answer can be picked up later via check_messages."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("from_session", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("to_session", mcp.Required(), mcp.Description("Recipient's session name")),
			mcp.WithString("query_type", mcp.Required(), mcp.Description("Kind of query (e.g. 'interface', 'status', 'help')")),
			mcp.WithString("query", mcp.Required(), mcp.Description("The question to ask")),
			mcp.WithBoolean("wait_for_response", mcp.Description("Block until the response arrives (default true)")),
			mcp.WithNumber("timeout", mcp.Description("Seconds to wait for the response (default 30)")),
		)
	}
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return invalidArgs(err)
		}
		from, err := requireString(args, "from_session")
		if err != nil {
			return invalidArgs(err)
		}
		to, err := requireString(args, "to_session")
		if err != nil {
			return invalidArgs(err)
		}
		queryType, err := requireString(args, "query_type")
		if err != nil {
			return invalidArgs(err)
		}
		query, err := requireString(args, "query")
		if err != nil {
			return invalidArgs(err)
		}
		wait := optionalBool(args, "wait_for_response", true)
		timeout := optionalFloat64(args, "timeout", defaultQueryTimeoutSeconds)

		messageID, err := svc.SendQuery(ctx, projectID, from, to, queryType, query, wait)
		if err != nil {
			var unknown *coord.UnknownRecipientError
			if errors.As(err, &unknown) {
				return errorResult("unknown_recipient", fmt.Sprintf("Agent %s not found in project %s", to, projectID)), nil
			}
			return nil, err
		}

		if !wait {
			return jsonText(map[string]any{
				"status":     "sent",
				"message_id": messageID,
			}), nil
		}

		response, err := svc.AwaitResponse(ctx, projectID, from, to, messageID, time.Duration(timeout*float64(time.Second)))
		if errors.Is(err, coord.ErrTimeout) {
			logger.Printf("Query %s from %s to %s timed out after %gs", messageID, from, to, timeout)
			return jsonText(map[string]any{
				"status": "timeout",
				"error":  fmt.Sprintf("No response received within %g seconds", timeout),
			}), nil
		}
		if err != nil {
			return nil, err
		}
		return jsonText(map[string]any{
			"status":   "received",
			"response": response,
		}), nil
	}
	s.AddTool(spec("query_agent"), handler)
	s.AddTool(spec("send_message"), handler)
}

// registerCheckMessages registers check_messages and its get_messages alias.
func registerCheckMessages(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	spec := func(name string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription("Read and clear this agent's inbox: queued queries, broadcasts, and coordination events, oldest first. Messages are returned exactly once."),
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

		msgs, err := svc.CheckMessages(ctx, projectID, sessionName)
		if err != nil {
			return nil, err
		}
		return jsonText(msgs), nil
	}
	s.AddTool(spec("check_messages"), handler)
	s.AddTool(spec("get_messages"), handler)
}

// registerRespondToQuery registers the respond_to_query tool.
func registerRespondToQuery(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("respond_to_query",
			mcp.WithDescription("Answer a query found in your inbox. The response is correlated by message id and delivered to the asker, unblocking their waiting query_agent call."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("from_session", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("to_session", mcp.Required(), mcp.Description("Session that asked the query")),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Id of the query being answered")),
			mcp.WithString("response", mcp.Required(), mcp.Description("Your answer")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			projectID, err := requireString(args, "project_id")
			if err != nil {
				return invalidArgs(err)
			}
			from, err := requireString(args, "from_session")
			if err != nil {
				return invalidArgs(err)
			}
			to, err := requireString(args, "to_session")
			if err != nil {
				return invalidArgs(err)
			}
			messageID, err := requireString(args, "message_id")
			if err != nil {
				return invalidArgs(err)
			}
			response, err := requireString(args, "response")
			if err != nil {
				return invalidArgs(err)
			}

			if err := svc.Respond(ctx, projectID, from, to, messageID, response); err != nil {
				return nil, err
			}
			return jsonText(map[string]any{
				"status": "response_sent",
				"to":     to,
			}), nil
		},
	)
}

// registerBroadcastMessage registers the broadcast_message tool.
func registerBroadcastMessage(s *server.MCPServer, svc *coord.Service, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("broadcast_message",
			mcp.WithDescription("Send a message to every other agent in the project. Use for announcements that concern everyone, like schema changes or shared dependency updates."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("session_name", mcp.Required(), mcp.Description("Your session name")),
			mcp.WithString("message_type", mcp.Required(), mcp.Description("Kind of announcement (e.g. 'info', 'warning', 'schema_change')")),
			mcp.WithString("content", mcp.Required(), mcp.Description("The announcement")),
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
			messageType, err := requireString(args, "message_type")
			if err != nil {
				return invalidArgs(err)
			}
			content, err := requireString(args, "content")
			if err != nil {
				return invalidArgs(err)
			}

			recipients, err := svc.Broadcast(ctx, projectID, sessionName, messageType, content)
			if err != nil {
				return nil, err
			}
			logger.Printf("Agent %s broadcast %s to %d agents", sessionName, messageType, recipients)
			return jsonText(map[string]any{
				"status":     "broadcast_sent",
				"recipients": recipients,
			}), nil
		},
	)
}
