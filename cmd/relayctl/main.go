package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/webui-relay/cmd/relayctl/chat"
	dbeavercmder "github.com/papercomputeco/webui-relay/cmd/relayctl/dbeaver"
	mcpcmder "github.com/papercomputeco/webui-relay/cmd/relayctl/mcp"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const rootLongDesc string = `Operator tools for the Open WebUI relay.

Send messages through a running relay, serve the relay as an MCP tool,
or export the PostgreSQL settings of a .env file for DBeaver.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relayctl",
		Short:         "Operator tools for the Open WebUI relay",
		Long:          rootLongDesc,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(dbeavercmder.NewDBeaverCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd(version))

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
