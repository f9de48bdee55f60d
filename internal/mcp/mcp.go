// Package mcp provides the cmdexec MCP server, registering the
// run_command tool and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/deixis/cmdexec"
	"github.com/deixis/cmdexec/internal/history"
	"github.com/deixis/cmdexec/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for the tool handlers.
type handler struct {
	runner *runner.Runner
	store  history.Store // nil when history is disabled
}

// NewServer creates an MCP server with the run_command tool registered.
// store may be nil to disable run history.
func NewServer(r *runner.Runner, store history.Store) *mcp.Server {
	h := &handler{runner: r, store: store}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "cmd-line-executor", Version: cmdexec.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "run_command",
		Description: "Runs a local command on the command line. Can take arguments.",
	}, h.runCommandHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
