package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/deixis/cmdexec/internal/history"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type runCommandParams struct {
	Cmd  string `json:"cmd" jsonschema:"the command to run"`
	Args string `json:"args,omitempty" jsonschema:"the arguments to the command, passed verbatim as a single token (never split on whitespace)"`
}

// runCommandHandler executes the requested command and returns its
// result as one pretty-printed JSON text block. Launch failures and
// non-zero exits are ordinary results, never tool errors; only a
// malformed request or an internal fault errors out.
func (h *handler) runCommandHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params runCommandParams) (*sdkmcp.CallToolResult, any, error) {
	if params.Cmd == "" {
		return errorResult("cmd must be a non-empty string")
	}

	res := h.runner.Run(ctx, params.Cmd, params.Args)

	if h.store != nil {
		if err := h.store.Save(history.NewRecord(res)); err != nil {
			// History is best-effort; the result still goes back.
			log.Printf("saving run %s: %v", res.RunID, err)
		}
	}

	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Printf("encoding run %s: %v", res.RunID, err)
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return textResult(string(body))
}
