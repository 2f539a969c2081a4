package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ChatRequest is the inbound relay request.
type ChatRequest struct {
	Message        string  `json:"message"`                   // The chat message to forward
	ConversationID *string `json:"conversation_id,omitempty"` // Optional conversation to continue
}

// HasConversation reports whether the request carries a usable conversation id.
// Null and empty ids are both treated as absent.
func (r *ChatRequest) HasConversation() bool {
	return r.ConversationID != nil && *r.ConversationID != ""
}

// Payload is the body POSTed to the upstream /api/chat endpoint.
type Payload struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// NewPayload builds the upstream payload for a request. conversation_id is
// only set when the request has one.
func NewPayload(req *ChatRequest) Payload {
	p := Payload{Message: req.Message}
	if req.HasConversation() {
		p.ConversationID = *req.ConversationID
	}
	return p
}

// ErrMissingMessage is returned by DecodeChatRequest when the body has no message.
var ErrMissingMessage = errors.New("field required: message")

// DecodeChatRequest parses an inbound request body. The message field must be
// present and a string; conversation_id may be absent, null or a string.
func DecodeChatRequest(data []byte) (*ChatRequest, error) {
	var raw struct {
		Message        *string `json:"message"`
		ConversationID *string `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not decode chat request: %w", err)
	}
	if raw.Message == nil {
		return nil, ErrMissingMessage
	}

	return &ChatRequest{
		Message:        *raw.Message,
		ConversationID: raw.ConversationID,
	}, nil
}
