package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/logging"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List blog posts",
	Long: `List the valid blog posts of every language, newest first. Files that
fail validation are skipped and reported in the log.

Examples:
  folio list                  # All languages as a table
  folio list --lang de        # German posts only
  folio list --tag go -f json # Posts tagged go, as JSON
  folio list -f yaml          # YAML output`,
	RunE: runList,
}

var (
	listFlags *StandardFlags
	listLang  string
	listTag   string
)

// postEntry is one row of the list output.
type postEntry struct {
	Language string   `json:"language" yaml:"language"`
	Slug     string   `json:"slug" yaml:"slug"`
	Title    string   `json:"title" yaml:"title"`
	Date     string   `json:"date" yaml:"date"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source   string   `json:"source" yaml:"source"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output", "content")
	listCmd.Flags().StringVar(&listLang, "lang", "", "Only list posts in this language")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only list posts with this tag")

	SetViperBindings(listCmd, map[string]string{
		"content": "content.dir",
	})
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	langs, err := cfg.Languages()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if listFlags.Quiet {
		logger = logging.NewNopLogger()
	}

	selected := langs.Supported
	if listLang != "" {
		lang, ok := langs.Parse(listLang)
		if !ok {
			return fmt.Errorf("unsupported language %q (supported: %s)", listLang, strings.Join(langs.Strings(), ", "))
		}
		selected = []i18n.Language{lang}
	}

	resolver := content.NewResolver(os.DirFS(cfg.Content.Dir), langs, content.Options{
		BlogDir:  cfg.Content.BlogDir,
		LegalDir: cfg.Content.LegalDir,
		Logger:   logger,
	})

	var entries []postEntry
	for _, lang := range selected {
		posts := content.FilterByTag(resolver.ListPosts(commandContext(cmd), lang), listTag)
		for _, post := range posts {
			entries = append(entries, postEntry{
				Language: string(lang),
				Slug:     post.Slug,
				Title:    post.Title(),
				Date:     post.Published.Format("2006-01-02"),
				Tags:     post.Tags(),
				Source:   post.Source,
			})
		}
	}

	return writePosts(cmd.OutOrStdout(), listFlags.OutputFormat, entries)
}

func writePosts(w io.Writer, format string, entries []postEntry) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []postEntry{}
		}
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No posts found.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LANG\tDATE\tSLUG\tTITLE\tTAGS")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Language, e.Date, e.Slug, e.Title, strings.Join(e.Tags, ", "))
		}
		return tw.Flush()
	}
}
