package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systemlogs/folio/internal/export"
	"github.com/systemlogs/folio/internal/server"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Export the site as static files",
	Long: `Render every page of the site in every language to static HTML.

The output directory receives one index.html per route, sitemap.xml,
robots.txt, 404.html, a root index.html redirecting to the default
language and a copy of the static assets.

Examples:
  folio build                  # Export to dist/
  folio build -o public        # Export to public/
  folio build --clean          # Remove the output directory first`,
	RunE: runBuild,
}

var (
	buildFlags   *StandardFlags
	buildOutput  string
	buildClean   bool
	buildWorkers int
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildFlags = AddStandardFlags(buildCmd, "content")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "dist", "Output directory")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Remove the output directory before building")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "Concurrent page renders (0 uses all CPUs)")

	SetViperBindings(buildCmd, map[string]string{
		"content": "content.dir",
		"output":  "build.output_dir",
		"clean":   "build.clean",
	})
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Exported pages must not try to reach a live-reload socket.
	cfg.Development.HotReload = false

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	result, err := export.New(srv, logger).Export(commandContext(cmd), export.Options{
		OutputDir: cfg.Build.OutputDir,
		Clean:     cfg.Build.Clean,
		Workers:   buildWorkers,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d assets into %s in %s\n",
		result.Pages, result.Assets, result.OutputDir, result.Duration.Round(time.Millisecond))
	return nil
}
