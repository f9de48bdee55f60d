package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/deixis/cmdexec/internal/history"
	"github.com/deixis/cmdexec/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setup creates a cmdexec MCP server + client over in-memory transports.
func setup(t *testing.T, store history.Store) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(&runner.Runner{}, store)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// envelope mirrors the JSON payload of a run_command result.
type envelope struct {
	Cmd        string   `json:"cmd"`
	Args       string   `json:"args"`
	StatusCode int      `json:"status_code"`
	Stdout     []string `json:"stdout"`
	Stderr     []string `json:"stderr"`
}

func decodeEnvelope(t *testing.T, res *mcp.CallToolResult) envelope {
	t.Helper()
	text := resultText(res)
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		t.Fatalf("decoding result %q: %v", text, err)
	}
	return env
}

// --- list tools ---

func TestListTools(t *testing.T) {
	cs := setup(t, nil)

	for range 2 {
		res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
		if err != nil {
			t.Fatalf("ListTools: %v", err)
		}
		if len(res.Tools) != 1 {
			t.Fatalf("got %d tools, want 1", len(res.Tools))
		}
		tool := res.Tools[0]
		if tool.Name != "run_command" {
			t.Errorf("tool name = %q, want run_command", tool.Name)
		}
		if tool.Description == "" {
			t.Error("tool description is empty")
		}

		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			t.Fatalf("marshalling schema: %v", err)
		}
		if !strings.Contains(string(schema), `"cmd"`) {
			t.Errorf("schema missing cmd property: %s", schema)
		}
		if !strings.Contains(string(schema), `"args"`) {
			t.Errorf("schema missing args property: %s", schema)
		}
		// cmd is required, args is not.
		var parsed struct {
			Required []string `json:"required"`
		}
		if err := json.Unmarshal(schema, &parsed); err != nil {
			t.Fatalf("parsing schema: %v", err)
		}
		if len(parsed.Required) != 1 || parsed.Required[0] != "cmd" {
			t.Errorf("required = %v, want [cmd]", parsed.Required)
		}
	}
}

// --- run_command ---

func TestRunCommand_Echo(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "run_command", map[string]any{
		"cmd":  "echo",
		"args": "hello world",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}

	env := decodeEnvelope(t, res)
	if env.Cmd != "echo" || env.Args != "hello world" {
		t.Errorf("cmd/args = %q/%q, want echo/hello world", env.Cmd, env.Args)
	}
	if env.StatusCode != 0 {
		t.Errorf("status_code = %d, want 0", env.StatusCode)
	}
	// The argument string reached echo as a single token.
	if len(env.Stdout) != 1 || env.Stdout[0] != "hello world" {
		t.Errorf("stdout = %q, want [\"hello world\"]", env.Stdout)
	}
	if len(env.Stderr) != 0 {
		t.Errorf("stderr = %q, want empty", env.Stderr)
	}
}

func TestRunCommand_NonZeroExit(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "run_command", map[string]any{
		"cmd":  "ls",
		"args": "/definitely/not/a/real/path",
	})
	// A failing command is ordinary data, not a tool error.
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}

	env := decodeEnvelope(t, res)
	if env.StatusCode == 0 {
		t.Error("status_code = 0, want non-zero")
	}
	if len(env.Stderr) == 0 {
		t.Error("stderr is empty, want a diagnostic line")
	}
}

func TestRunCommand_SpawnFailure(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "run_command", map[string]any{
		"cmd": "nonexistent_binary_xyz",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}

	env := decodeEnvelope(t, res)
	if env.StatusCode != 1 {
		t.Errorf("status_code = %d, want 1", env.StatusCode)
	}
	if len(env.Stdout) != 0 {
		t.Errorf("stdout = %q, want empty", env.Stdout)
	}
	if len(env.Stderr) != 1 {
		t.Errorf("stderr = %q, want exactly one line", env.Stderr)
	}
}

func TestRunCommand_UnknownTool(t *testing.T) {
	cs := setup(t, nil)
	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "delete_everything",
		Arguments: map[string]any{"cmd": "echo"},
	})
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRunCommand_MissingCmd(t *testing.T) {
	cs := setup(t, nil)
	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_command",
		Arguments: map[string]any{},
	})
	if err == nil {
		t.Fatal("expected error for missing cmd")
	}
}

func TestRunCommand_EmptyCmd(t *testing.T) {
	cs := setup(t, nil)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_command",
		Arguments: map[string]any{"cmd": ""},
	})
	if err != nil {
		// Acceptable: rejected before the handler ran.
		return
	}
	if !res.IsError {
		t.Fatal("expected IsError for empty cmd")
	}
}

func TestRunCommand_SavesHistory(t *testing.T) {
	store := history.NewLRUStore(5, history.NewDiskStore(t.TempDir(), 0))
	cs := setup(t, store)

	res := callTool(t, cs, "run_command", map[string]any{
		"cmd":  "echo",
		"args": "archived",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}

	recs, err := store.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Run.Command != "echo" || recs[0].Run.Args != "archived" {
		t.Errorf("record = %+v, want echo/archived", recs[0].Run)
	}
}
