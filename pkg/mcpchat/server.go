// Package mcpchat exposes the Open WebUI relay as a Model Context Protocol tool.
package mcpchat

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/webui-relay/pkg/llm"
)

const (
	serverName = "webui-relay"

	// ToolName is the name clients call to relay a message.
	ToolName = "chat"
)

// Relayer sends one chat message upstream and returns the raw JSON reply.
// *upstream.Client satisfies it.
type Relayer interface {
	Chat(ctx context.Context, req *llm.ChatRequest) (json.RawMessage, error)
}

// ChatInput is the argument schema of the chat tool.
type ChatInput struct {
	Message        string `json:"message" jsonschema:"the message to send to Open WebUI"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"optional Open WebUI conversation to continue"`
}

type toolHandler struct {
	relay  Relayer
	logger *zap.Logger
}

// NewServer builds an MCP server with the chat tool registered.
func NewServer(relay Relayer, version string, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)

	h := &toolHandler{relay: relay, logger: logger}
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Send a chat message to Open WebUI and return its JSON response unchanged.",
	}, h.chat)

	return server
}

// chat never returns a protocol error for upstream failures; they come back
// as an IsError tool result carrying the failure text.
func (h *toolHandler) chat(ctx context.Context, _ *mcp.CallToolRequest, in ChatInput) (*mcp.CallToolResult, any, error) {
	req := &llm.ChatRequest{Message: in.Message}
	if in.ConversationID != "" {
		req.ConversationID = &in.ConversationID
	}

	raw, err := h.relay.Chat(ctx, req)
	if err != nil {
		h.logger.Error("chat tool relay failed", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, nil, nil
	}

	h.logger.Debug("chat tool relayed message", zap.Int("response_size", len(raw)))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

// ServeStdio runs the server over stdin/stdout until ctx is done or the
// client disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
