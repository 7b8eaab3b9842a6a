package content

import (
	"bytes"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
)

// Post source file extensions, in lookup order.
var postExtensions = []string{".md", ".mdx"}

// Accepted front matter date layouts.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Frontmatter is the metadata block at the top of a post.
type Frontmatter struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Summary    string   `yaml:"summary,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	CoverImage string   `yaml:"coverImage,omitempty"`
	Language   string   `yaml:"language,omitempty"`
}

// Post is a validated blog post. Posts are built fresh from their source
// file on every read and never mutated afterwards.
type Post struct {
	Slug        string
	Frontmatter Frontmatter
	Published   time.Time
	Language    i18n.Language
	Content     string
	Source      string
}

// Title returns the post title.
func (p *Post) Title() string { return p.Frontmatter.Title }

// Tags returns the post tags.
func (p *Post) Tags() []string { return p.Frontmatter.Tags }

// IsMDX reports whether the post was authored as MDX.
func (p *Post) IsMDX() bool { return strings.HasSuffix(p.Source, ".mdx") }

// ParseDate parses a front matter date in any of the accepted layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(errors.ErrCodeDateInvalid, "unparseable date "+raw).
		WithContext("date", raw)
}

// splitFrontmatter decodes the front matter block of src into v and returns
// the body that follows it.
func splitFrontmatter(src []byte, v interface{}) ([]byte, error) {
	body, err := frontmatter.MustParse(bytes.NewReader(src), v, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, errors.NewValidationError(errors.ErrCodeFrontmatterMissing, "no front matter block")
		}
		return nil, errors.WrapValidation(err, errors.ErrCodeFrontmatterInvalid, "front matter could not be decoded")
	}
	return body, nil
}

// parsePost validates src as a post in dirLang. Every failure is a
// *errors.FolioError carrying the source path.
func parsePost(src []byte, source, slug string, dirLang i18n.Language) (*Post, error) {
	var fm Frontmatter
	body, err := splitFrontmatter(src, &fm)
	if err != nil {
		return nil, withPath(err, source)
	}

	fm.Title = strings.TrimSpace(fm.Title)
	if fm.Title == "" {
		return nil, errors.NewValidationError(errors.ErrCodeTitleMissing, "title is required").WithPath(source)
	}

	if strings.TrimSpace(fm.Date) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeDateMissing, "date is required").WithPath(source)
	}
	published, err := ParseDate(fm.Date)
	if err != nil {
		return nil, withPath(err, source)
	}

	if fm.Language != "" && primarySubtag(fm.Language) != string(dirLang) {
		return nil, errors.NewValidationError(errors.ErrCodeLanguageMismatch,
			"declared language "+fm.Language+" does not match directory "+string(dirLang)).WithPath(source)
	}

	return &Post{
		Slug:        slug,
		Frontmatter: fm,
		Published:   published,
		Language:    dirLang,
		Content:     string(body),
		Source:      source,
	}, nil
}

func primarySubtag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

func withPath(err error, path string) error {
	var fe *errors.FolioError
	if errors.As(err, &fe) {
		return fe.WithPath(path)
	}
	return err
}
