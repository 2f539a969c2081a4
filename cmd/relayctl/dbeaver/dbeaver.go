package dbeavercmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/webui-relay/pkg/dbeaver"
)

const dbeaverLongDesc string = `Generate a DBeaver connection CSV from a .env file.

Reads POSTGRES_HOST, POSTGRES_PORT and numbered database entries
(DB_1_NAME, DB_1_USER, DB_1_PASSWORD, DB_2_NAME, ...) plus an optional
single DB_NAME/DB_USER/DB_PASSWORD entry, and writes one PostgreSQL
connection per database.

Values are taken literally: everything after the first "=" is kept,
including quotes, "#" and "$". Blank lines, "#" comments and lines
without "=" are skipped.

Examples:
  relayctl dbeaver
  relayctl dbeaver --env deploy/.env --output /tmp/connections.csv
  relayctl dbeaver --watch`

const dbeaverShortDesc string = "Generate DBeaver connections from a .env file"

const expectedFormat string = `Expected format:
  DB_1_NAME=database1
  DB_1_USER=user1
  DB_1_PASSWORD=password1
  DB_2_NAME=database2
  DB_2_USER=user2
  DB_2_PASSWORD=password2`

type dbeaverCommander struct {
	envPath    string
	outputPath string
	watch      bool
}

func NewDBeaverCmd() *cobra.Command {
	cmder := &dbeaverCommander{}

	cmd := &cobra.Command{
		Use:   "dbeaver",
		Short: dbeaverShortDesc,
		Long:  dbeaverLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.envPath, "env", "e", ".env", "Path to the .env file")
	cmd.Flags().StringVarP(&cmder.outputPath, "output", "o", "dbeaver-connections.csv", "Path of the CSV to write")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Regenerate whenever the .env file changes")

	return cmd
}

func (c *dbeaverCommander) run(ctx context.Context, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	if err := c.generate(out, st); err != nil {
		return err
	}
	if !c.watch {
		return nil
	}

	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", c.envPath)
	return dbeaver.Watch(ctx, c.envPath, func() {
		if err := c.generate(out, st); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "could not regenerate: %v\n", err)
		}
	})
}

func (c *dbeaverCommander) generate(out io.Writer, st styles) error {
	fmt.Fprintf(out, "Reading environment from: %s\n", c.envPath)

	dbs, err := dbeaver.Generate(c.envPath, c.outputPath)
	switch {
	case errors.Is(err, dbeaver.ErrNoEnvironment):
		fmt.Fprintln(out, "No environment variables found in .env file")
		return nil
	case errors.Is(err, dbeaver.ErrNoDatabases):
		fmt.Fprintln(out, "No database configurations found in .env file")
		fmt.Fprintln(out, expectedFormat)
		return nil
	case err != nil:
		return fmt.Errorf("could not generate connections: %w", err)
	}

	fmt.Fprintf(out, "Generated DBeaver connections CSV: %s\n", st.title(c.outputPath))
	fmt.Fprintf(out, "Found %d database(s):\n", len(dbs))
	for _, db := range dbs {
		fmt.Fprintf(out, "  - %s (user: %s)\n", st.name(db.Name), db.User)
	}

	return nil
}

// styles colours the summary only when writing to a terminal.
type styles struct {
	title func(string) string
	name  func(string) string
}

func newStyles(w io.Writer) styles {
	plain := func(s string) string { return s }

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return styles{title: plain, name: plain}
	}

	title := lipgloss.NewStyle().Bold(true)
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	return styles{
		title: func(s string) string { return title.Render(s) },
		name:  func(s string) string { return name.Render(s) },
	}
}
