package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	mcputils "github.com/mvp-joe/component-atlas/internal/mcp-utils"
)

// bindArguments decodes request arguments into target. Argument mistakes come
// back as an error result for the caller; anything else is a Go error.
func bindArguments[T any](request mcp.CallToolRequest, target *T) (*mcp.CallToolResult, error) {
	err := mcputils.CoerceBindArguments(request, target)
	if err == nil {
		return nil, nil
	}
	var argErr *mcputils.ArgumentError
	if errors.As(err, &argErr) {
		return mcp.NewToolResultError(argErr.Error()), nil
	}
	return nil, fmt.Errorf("failed to bind arguments: %w", err)
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
