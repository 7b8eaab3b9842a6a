package content

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systemlogs/folio/internal/i18n"
)

// NewPostSource returns the source of a new post: a front matter block with
// title, date and tags followed by a starter body.
func NewPostSource(title string, date time.Time, tags []string, summary string, lang i18n.Language) ([]byte, error) {
	fm := Frontmatter{
		Title:    title,
		Date:     date.Format("2006-01-02"),
		Summary:  summary,
		Tags:     tags,
		Language: string(lang),
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	buf.WriteString("---\n\n")

	fmt.Fprintf(&buf, "## Introduction\n\nWrite the opening of %q here.\n\n## Conclusion\n", title)

	return buf.Bytes(), nil
}
