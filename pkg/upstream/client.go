// Package upstream is a client for the Open WebUI chat API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/webui-relay/pkg/llm"
)

const (
	// Timeout bounds every upstream call.
	Timeout = 30 * time.Second

	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:3000"

	chatPath = "/api/chat"

	maxErrorBody    = 4096
	maxResponseBody = 16 << 20
)

// Client relays chat messages to an Open WebUI instance. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	maxBody    int64
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the given base URL. An empty apiKey means requests
// are sent without an Authorization header.
func New(baseURL, apiKey string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: Timeout},
		logger:     zap.NewNop(),
		maxBody:    maxResponseBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatURL returns the upstream chat endpoint.
func (c *Client) ChatURL() string {
	return c.baseURL + chatPath
}

// Headers returns the headers sent with every upstream request.
func (c *Client) Headers() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	if c.apiKey != "" {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}
	return h
}

// Chat forwards req to the upstream and returns its JSON body unchanged.
// Any failure is reported as a *CommunicationError. Cancelling ctx aborts the
// outstanding call.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (json.RawMessage, error) {
	if req == nil {
		return nil, errors.New("upstream: nil chat request")
	}

	body, err := json.Marshal(llm.NewPayload(req))
	if err != nil {
		return nil, fmt.Errorf("upstream: marshal payload: %w", err)
	}

	url := c.ChatURL()
	c.logger.Debug("forwarding request to upstream",
		zap.String("url", url),
		zap.Int("body_size", len(body)),
		zap.Bool("has_conversation", req.HasConversation()),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &CommunicationError{Err: err}
	}
	httpReq.Header = c.Headers()

	raw, err := c.do(httpReq, url)
	if err != nil {
		return nil, &CommunicationError{Err: err}
	}

	return raw, nil
}

func (c *Client) do(req *http.Request, url string) (json.RawMessage, error) {
	start := time.Now()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(buf)),
		}
	}

	// One byte past the limit tells an oversized body from one that fits exactly.
	buf, err := io.ReadAll(io.LimitReader(res.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(buf)) > c.maxBody {
		return nil, fmt.Errorf("upstream response body exceeds %d bytes", c.maxBody)
	}
	if !json.Valid(buf) {
		return nil, errors.New("upstream returned a non-JSON body")
	}

	c.logger.Debug("received response from upstream",
		zap.Int("status", res.StatusCode),
		zap.Int("body_size", len(buf)),
		zap.Duration("duration", time.Since(start)),
	)

	return json.RawMessage(buf), nil
}
