// Package mcpserver exposes the relay as MCP tools over Streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	sdkserver "github.com/mark3labs/mcp-go/server"

	"github.com/gaspardpetit/promptrelay/internal/catalog"
	"github.com/gaspardpetit/promptrelay/internal/logx"
	"github.com/gaspardpetit/promptrelay/internal/relay"
)

// Service is the subset of the relay used by the MCP tools.
type Service interface {
	Generate(ctx context.Context, req relay.GenerationRequest) (*relay.Result, error)
	Models() []catalog.ModelDescriptor
}

// NewHandler constructs a Streamable HTTP MCP handler exposing the
// generate and list_models tools.
func NewHandler(svc Service, version string) http.Handler {
	srv := sdkserver.NewMCPServer(
		"promptrelay",
		version,
		sdkserver.WithResourceCapabilities(false, false),
		sdkserver.WithToolCapabilities(false),
		sdkserver.WithPromptCapabilities(false),
	)
	srv.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Generate academic content for a prompt. The response is the upstream chat-completion JSON with the selected model fields added."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("User prompt, forwarded verbatim")),
		mcp.WithString("model", mcp.Description("Model key; unknown or empty keys use the default model")),
	), generateTool(svc))
	srv.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the selectable models"),
	), listModelsTool(svc))

	return sdkserver.NewStreamableHTTPServer(
		srv,
		sdkserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return ctx
		}),
	)
}

func generateTool(svc Service) sdkserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gr := relay.GenerationRequest{
			Prompt: req.GetString("prompt", ""),
			Model:  req.GetString("model", ""),
		}
		res, err := svc.Generate(ctx, gr)
		if err != nil {
			var rerr *relay.Error
			if errors.As(err, &rerr) {
				return mcp.NewToolResultError(fmt.Sprintf("%s: %s", rerr.Kind, rerr.Message)), nil
			}
			logx.Log.Error().Err(err).Msg("mcp generate")
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", relay.KindUnknown, err)), nil
		}
		return mcp.NewToolResultText(string(res.Body)), nil
	}
}

func listModelsTool(svc Service) sdkserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(svc.Models())
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}
