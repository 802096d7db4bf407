package a2a

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// jsonText marshals v and wraps it as a text tool result. Every tool returns
// its payload this way so callers always get a JSON object (or array) back.
func jsonText(v any) *mcp.CallToolResult {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultText(`{"error":"failed to encode result"}`)
	}
	return mcp.NewToolResultText(string(raw))
}

// errorResult builds a structured error payload. kind is one of the stable
// error identifiers (not_found, conflict, not_owner, unknown_recipient,
// timeout, invalid_arguments); message carries the human-readable detail.
func errorResult(kind, message string) *mcp.CallToolResult {
	return jsonText(map[string]any{
		"status":  "error",
		"error":   kind,
		"message": message,
	})
}

// invalidArgs reports a schema validation failure as a payload, never as a
// transport error.
func invalidArgs(err error) (*mcp.CallToolResult, error) {
	return errorResult("invalid_arguments", err.Error()), nil
}
