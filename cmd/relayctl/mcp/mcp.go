package mcpcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/webui-relay/pkg/config"
	"github.com/papercomputeco/webui-relay/pkg/logger"
	"github.com/papercomputeco/webui-relay/pkg/mcpchat"
	"github.com/papercomputeco/webui-relay/pkg/upstream"
)

const mcpLongDesc string = `Serve the relay as an MCP tool over stdio.

Exposes a single "chat" tool that forwards a message (and optional
conversation id) to Open WebUI and returns its JSON response. The
upstream is configured the same way as the relay server: OPEN_WEBUI_URL,
OPEN_WEBUI_API_KEY, a .env file, or --config.

Logs go to stderr; stdout carries the protocol.

Examples:
  relayctl mcp
  relayctl mcp --upstream http://webui.internal:3000 --debug`

const mcpShortDesc string = "Serve the chat relay as an MCP stdio tool"

type mcpCommander struct {
	configPath  string
	upstreamURL string
	debug       bool
	version     string
}

func NewMCPCmd(version string) *cobra.Command {
	cmder := &mcpCommander{version: version}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmder.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cmder.configPath, "config", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&cmder.upstreamURL, "upstream", "", "Open WebUI base URL (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *mcpCommander) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load config: %w", err)
	}
	if cmd.Flags().Changed("upstream") {
		cfg.UpstreamURL = c.upstreamURL
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = c.debug
	}
	return cfg, nil
}

func (c *mcpCommander) run(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	log := logger.NewLoggerTo(cmd.ErrOrStderr(), cfg.Debug)
	defer log.Sync()

	client := upstream.New(cfg.UpstreamURL, cfg.APIKey, upstream.WithLogger(log))
	server := mcpchat.NewServer(client, c.version, log)

	log.Info("serving MCP chat tool on stdio", zap.String("upstream", client.ChatURL()))
	if err := mcpchat.ServeStdio(ctx, server); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}
