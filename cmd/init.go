package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/systemlogs/folio/internal/config"
	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/portfolio"
)

var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Create a content skeleton and configuration file",
	Long: `Initialize a folio site: a .folio.yml with the default settings, one
blog directory per language with a welcome post, a resume per language, a
sample projects list and a static directory with a starter stylesheet.
Existing files are left alone unless --force is given.

Examples:
  folio init              # Initialize the current directory
  folio init my-site      # Initialize ./my-site
  folio init --force      # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

const starterStyles = `:root { --accent: #2563eb; }
body { font-family: system-ui, sans-serif; line-height: 1.6; margin: 0 auto; max-width: 52rem; padding: 0 1rem; }
header nav a, footer a { margin-right: 1rem; }
.tag { display: inline-block; padding: 0 .5rem; border-radius: .25rem; background: #eef2ff; }
.tag.active { background: var(--accent); color: #fff; }
.language-notice { border-left: 4px solid var(--accent); padding: .5rem 1rem; }
`

const sampleProjects = `# Projects shown on /<lang>/projects. Entries without a description are
# hidden. Set portfolio.github_user to list GitHub repositories instead.
- name: folio
  description: Bilingual portfolio and blog server.
  url: https://github.com/example/folio
  language: Go
  topics: [showcase]
`

var welcomePosts = map[i18n.Language]struct {
	Title   string
	Summary string
}{
	i18n.English: {"Welcome", "The first post on this site."},
	i18n.German:  {"Willkommen", "Der erste Beitrag auf dieser Seite."},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg := config.Default()
	langs, err := cfg.Languages()
	if err != nil {
		return err
	}

	files := map[string][]byte{
		filepath.Join(cfg.Content.StaticDir, "styles.css"): []byte(starterStyles),
		cfg.Portfolio.ProjectsFile:                         []byte(sampleProjects),
	}

	for _, lang := range langs.Supported {
		post, ok := welcomePosts[lang]
		if !ok {
			continue
		}
		src, err := content.NewPostSource(post.Title, time.Now(), []string{"meta"}, post.Summary, lang)
		if err != nil {
			return err
		}
		files[filepath.Join(cfg.Content.BlogDir, string(lang), content.Slugify(post.Title)+".md")] = src

		if resume, ok := portfolio.SampleResume(lang); ok {
			files[filepath.Join(cfg.Portfolio.ResumeDir, string(lang)+".yaml")] = resume
		}
	}

	created := 0
	for rel, data := range files {
		ok, err := writeIfAbsent(filepath.Join(root, cfg.Content.Dir, rel), data)
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}

	configData, err := marshalConfig(cfg)
	if err != nil {
		return err
	}
	ok, err := writeIfAbsent(filepath.Join(root, ".folio.yml"), configData)
	if err != nil {
		return err
	}
	if ok {
		created++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized folio site in %s (%d files written)\n", root, created)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  folio new-post \"My first post\"")
	fmt.Fprintln(out, "  folio serve")
	return nil
}

// writeIfAbsent writes file unless it exists and --force is off. It reports
// whether the file was written.
func writeIfAbsent(file string, data []byte) (bool, error) {
	if _, err := os.Stat(file); err == nil && !initForce {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", file, err)
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", file, err)
	}
	return true, nil
}

func marshalConfig(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# folio configuration. Every key can be overridden with FOLIO_<SECTION>_<KEY>.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}
