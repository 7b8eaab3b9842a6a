package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/validation"
)

var newPostCmd = &cobra.Command{
	Use:     "new-post <title>",
	Aliases: []string{"new", "n"},
	Short:   "Scaffold a new blog post",
	Long: `Create a Markdown file for a new post with its front matter filled in.
The slug is derived from the title unless --slug is given.

Examples:
  folio new-post "Hello World"                     # content/blog/en/hello-world.md
  folio new-post "Über Go" --lang de --tags go,web # content/blog/de/uber-go.md
  folio new-post "Draft" --date 2025-06-01 --slug my-draft`,
	Args: cobra.ExactArgs(1),
	RunE: runNewPost,
}

var (
	newPostFlags   *StandardFlags
	newPostLang    string
	newPostSlug    string
	newPostTags    []string
	newPostSummary string
	newPostDate    string
	newPostForce   bool
)

func init() {
	rootCmd.AddCommand(newPostCmd)

	newPostFlags = AddStandardFlags(newPostCmd, "content")
	newPostCmd.Flags().StringVar(&newPostLang, "lang", "", "Post language (default: the default language)")
	newPostCmd.Flags().StringVar(&newPostSlug, "slug", "", "Slug (default: derived from the title)")
	newPostCmd.Flags().StringSliceVarP(&newPostTags, "tags", "t", nil, "Comma-separated tags")
	newPostCmd.Flags().StringVar(&newPostSummary, "summary", "", "Short summary")
	newPostCmd.Flags().StringVar(&newPostDate, "date", "", "Publication date, YYYY-MM-DD (default: today)")
	newPostCmd.Flags().BoolVar(&newPostForce, "force", false, "Overwrite an existing post")

	SetViperBindings(newPostCmd, map[string]string{
		"content": "content.dir",
	})
}

func runNewPost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	langs, err := cfg.Languages()
	if err != nil {
		return err
	}

	lang := langs.Default
	if newPostLang != "" {
		l, ok := langs.Parse(newPostLang)
		if !ok {
			return fmt.Errorf("unsupported language %q", newPostLang)
		}
		lang = l
	}

	title := args[0]
	slug := newPostSlug
	if slug == "" {
		slug = content.Slugify(title)
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return fmt.Errorf("cannot derive a slug from %q: %w", title, err)
	}

	date := time.Now()
	if newPostDate != "" {
		date, err = content.ParseDate(newPostDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	src, err := content.NewPostSource(title, date, newPostTags, newPostSummary, lang)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.Content.Dir, filepath.FromSlash(cfg.Content.BlogDir), string(lang))
	file := filepath.Join(dir, slug+".md")
	for _, existing := range []string{file, filepath.Join(dir, slug+".mdx")} {
		if _, err := os.Stat(existing); err == nil && !newPostForce {
			return fmt.Errorf("post %s already exists (use --force to overwrite)", existing)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(file, src, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", file)
	fmt.Fprintf(cmd.OutOrStdout(), "Preview at /%s/blog/%s\n", lang, slug)
	return nil
}
