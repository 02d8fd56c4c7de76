// SPDX-License-Identifier: Apache-2.0
package mcpagent

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestResultToOutputJoinsTextContent(t *testing.T) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "hello "},
			mcp.TextContent{Type: "text", Text: "world"},
		},
	}
	out, err := resultToOutput("agent-1", result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("out = %q", out)
	}
}

func TestResultToOutputErrorContentBecomesError(t *testing.T) {
	result := &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "boom"}},
	}
	_, err := resultToOutput("agent-1", result)
	if err == nil {
		t.Fatal("expected an error")
	}
}
