package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/webui-relay/pkg/llm"
)

const chatLongDesc string = `Send a chat message through a running relay.

POSTs the message to the relay's /chat endpoint and prints the
Open WebUI response exactly as it was returned.

Examples:
  relayctl chat "What is on the roadmap?"
  relayctl chat --conversation 3f2a "And after that?"
  relayctl chat --server http://relay.internal:8000 "hello"`

const chatShortDesc string = "Send a message through the relay"

type chatCommander struct {
	serverURL      string
	conversationID string
	timeout        time.Duration
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.serverURL, "server", "http://localhost:8000", "Relay base URL")
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Conversation id to continue")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", time.Minute, "Overall request timeout")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command, message string) error {
	serverURL := strings.TrimRight(c.serverURL, "/")

	req := llm.ChatRequest{Message: message}
	if c.conversationID != "" {
		req.ConversationID = &c.conversationID
	}

	body, err := c.post(ctx, serverURL+"/chat", req)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}

func (c *chatCommander) post(ctx context.Context, url string, req llm.ChatRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp llm.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
