// Package proxy provides an HTTP relay that forwards chat messages to Open WebUI
// and returns its JSON responses verbatim.
package proxy

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/webui-relay/pkg/llm"
	"github.com/papercomputeco/webui-relay/pkg/upstream"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// Proxy is a stateless relay in front of Open WebUI. Each request is
// forwarded independently; nothing is kept between calls.
type Proxy struct {
	config Config
	client *upstream.Client
	logger *zap.Logger
	server *fiber.App
}

// New creates a new Proxy.
func New(config Config, logger *zap.Logger) (*Proxy, error) {
	if logger == nil {
		return nil, errors.New("proxy: logger must not be nil")
	}

	client := upstream.New(config.UpstreamURL, config.APIKey, upstream.WithLogger(logger))
	return newProxy(config, client, logger), nil
}

func newProxy(config Config, client *upstream.Client, logger *zap.Logger) *Proxy {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	p := &Proxy{
		config: config,
		client: client,
		logger: logger,
		server: app,
	}

	app.Use(fiberrecover.New())
	app.Use(p.requestLogger)

	// Register routes
	app.Post("/chat", p.handleChat)
	app.Get("/", p.handleStatus)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	return p
}

// Run starts the proxy server on the configured listening address.
func (p *Proxy) Run() error {
	p.logger.Info("starting relay server",
		zap.String("listen", p.config.ListenAddr),
		zap.String("upstream", p.client.ChatURL()),
		zap.Bool("auth", p.config.APIKey != ""),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (p *Proxy) RunWithListener(ln net.Listener) error {
	p.logger.Info("starting relay server",
		zap.String("listen", ln.Addr().String()),
		zap.String("upstream", p.client.ChatURL()),
	)

	return p.server.Listener(ln)
}

// Shutdown stops the server. In-flight upstream calls see their request
// context closed.
func (p *Proxy) Shutdown() error {
	return p.server.Shutdown()
}

// Handler exposes the relay as a net/http handler.
func (p *Proxy) Handler() http.Handler {
	return adaptor.FiberApp(p.server)
}

// handleChat relays one chat message to Open WebUI. The upstream body is
// written back byte-for-byte; every upstream failure becomes a 502.
func (p *Proxy) handleChat(c *fiber.Ctx) error {
	req, err := llm.DecodeChatRequest(c.Body())
	if err != nil {
		p.logger.Debug("rejected chat request", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(llm.ErrorResponse{
			Error:  "invalid request body",
			Detail: err.Error(),
		})
	}

	p.logger.Debug("received chat request",
		zap.Int("message_length", len(req.Message)),
		zap.Bool("has_conversation", req.HasConversation()),
	)

	// fasthttp's request context is cancelled on server shutdown only; a client
	// disconnect does not abort the upstream call.
	raw, err := p.client.Chat(c.Context(), req)
	if err != nil {
		var commErr *upstream.CommunicationError
		if !errors.As(err, &commErr) {
			p.logger.Error("failed to relay request", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
		}

		p.logger.Error("upstream request failed", zap.Error(commErr.Err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{
			Error:  upstream.ErrorClass,
			Detail: commErr.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

func (p *Proxy) handleStatus(c *fiber.Ctx) error {
	return c.JSON(llm.StatusResponse{Message: llm.StatusMessage})
}

// requestLogger tags each request with an id and writes one access line.
func (p *Proxy) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	id := strings.TrimSpace(c.Get(HeaderRequestID))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(HeaderRequestID, id)

	err := c.Next()

	status := c.Response().StatusCode()
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	p.logger.Info("request",
		zap.String("request_id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	return err
}
