// SPDX-License-Identifier: Apache-2.0
package mcpagent

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/atomvm/pkg/runtime"
)

// Runner implements runtime.AgentRunner by invoking agentID as an MCP tool
// name, passing input through as the tool's arguments.
type Runner struct {
	client *Client
}

// NewRunner wraps an already-initialized MCP Client.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Run calls the MCP tool named agentID with input as its arguments map (a
// non-map input is wrapped under the "input" key) and collapses the
// result's text content into a single string, or returns an error built
// from the tool's error content when IsError is set.
func (r *Runner) Run(ctx context.Context, agentID string, input any) (any, error) {
	args, ok := input.(map[string]any)
	if !ok {
		args = map[string]any{"input": input}
	}

	result, err := r.client.CallTool(ctx, agentID, args)
	if err != nil {
		return nil, fmt.Errorf("mcpagent: call %s: %w", agentID, err)
	}
	return resultToOutput(agentID, result)
}

// resultToOutput collapses a tool call result's text content into a
// string, or builds an error from it when the result reports a tool-side
// failure. Split out from Run so it can be tested without a live MCP
// client.
func resultToOutput(agentID string, result *mcp.CallToolResult) (any, error) {
	text := collectText(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("mcpagent: %s reported an error: %s", agentID, text)
	}
	return text, nil
}

func collectText(content []mcp.Content) string {
	out := ""
	for _, c := range content {
		if t, ok := c.(mcp.TextContent); ok {
			out += t.Text
		}
	}
	return out
}

var _ runtime.AgentRunner = (*Runner)(nil)
