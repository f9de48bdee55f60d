// Package cmdexec exposes local command execution as an MCP tool.
package cmdexec

// Version is the cmdexec release version.
const Version = "0.1.0"
