package content

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
)

//go:embed legal
var embeddedLegal embed.FS

// LegalSlugs is the closed set of legal documents.
var LegalSlugs = []string{"privacy", "terms", "impressum"}

// IsLegalSlug reports whether slug names a legal document.
func IsLegalSlug(slug string) bool {
	for _, s := range LegalSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

type legalFrontmatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	LastUpdated string `yaml:"lastUpdated"`
	Summary     string `yaml:"summary"`
}

// LegalDocument is a rendered privacy policy, terms or impressum page.
type LegalDocument struct {
	Slug      string
	Title     string
	Published time.Time
	Summary   string
	Language  i18n.Language
	Content   string
	HTML      string
	Embedded  bool
}

// LegalContent returns the legal document slug in lang. The copy built into
// the binary is preferred so the site works without a content directory;
// legal/<lang>/<slug>.md in the content tree is used otherwise. Unsupported
// languages resolve to the default language.
func (r *Resolver) LegalContent(ctx context.Context, slug string, lang i18n.Language) (*LegalDocument, error) {
	lang = r.langs.OrDefault(lang)
	if !IsLegalSlug(slug) {
		return nil, errors.ErrLegalNotFound(slug, string(lang))
	}

	sources := []struct {
		fsys     fs.FS
		dir      string
		embedded bool
	}{
		{embeddedLegal, "legal", true},
		{r.fsys, r.legalDir, false},
	}

	for _, src := range sources {
		file := path.Join(src.dir, string(lang), slug+".md")
		data, err := fs.ReadFile(src.fsys, file)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.logDropped(ctx, errors.WrapIO(err, errors.ErrCodeReadFailed, "read failed").WithPath(file))
			}
			continue
		}

		doc, err := parseLegal(data, file, slug, lang)
		if err != nil {
			r.logDropped(ctx, err)
			continue
		}
		doc.Embedded = src.embedded
		return doc, nil
	}

	return nil, errors.ErrLegalNotFound(slug, string(lang))
}

func parseLegal(src []byte, source, slug string, lang i18n.Language) (*LegalDocument, error) {
	var fm legalFrontmatter
	body, err := splitFrontmatter(src, &fm)
	if err != nil {
		return nil, withPath(err, source)
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return nil, errors.NewValidationError(errors.ErrCodeTitleMissing, "title is required").WithPath(source)
	}

	doc := &LegalDocument{
		Slug:     slug,
		Title:    title,
		Summary:  fm.Summary,
		Language: lang,
		Content:  string(body),
		HTML:     MarkdownToHTML(string(body)),
	}

	raw := fm.LastUpdated
	if raw == "" {
		raw = fm.Date
	}
	if raw != "" {
		published, err := ParseDate(raw)
		if err != nil {
			return nil, withPath(err, source)
		}
		doc.Published = published
	}

	return doc, nil
}
