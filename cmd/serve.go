package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/systemlogs/folio/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the site server",
	Long: `Start the HTTP server for the site.

Content is read from disk on every request, so edits show up on the next
page load. In development (the default environment) the content directory
is also watched and open browser tabs reload automatically.

Examples:
  folio serve                        # Serve on localhost:3000
  folio serve -p 8080 --host 0.0.0.0 # Listen on all interfaces
  folio serve --no-reload            # Disable live reload
  FOLIO_SERVER_ENVIRONMENT=production folio serve`,
	RunE: runServe,
}

var (
	serveFlags    *StandardFlags
	serveNoReload bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server", "content")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "Disable live reload")

	SetViperBindings(serveCmd, map[string]string{
		"port":    "server.port",
		"host":    "server.host",
		"content": "content.dir",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveNoReload {
		cfg.Development.HotReload = false
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s\n", cfg.Site.Title, cfg.Address())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	return nil
}
