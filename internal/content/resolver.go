// Package content reads blog posts and legal documents from a content tree,
// validates their front matter and serves them as sorted, language-aware
// collections.
//
// The tree is laid out per language:
//
//	blog/<lang>/<slug>.md|.mdx
//	legal/<lang>/<slug>.md
//
// Nothing is cached; every call reads the tree again so that edits show up
// on the next request.
package content

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/logging"
	"github.com/systemlogs/folio/internal/validation"
)

// Options configure a Resolver.
type Options struct {
	BlogDir  string
	LegalDir string
	Logger   logging.Logger
}

// Resolver resolves posts and legal documents from a read-only content tree.
type Resolver struct {
	fsys     fs.FS
	langs    i18n.Set
	blogDir  string
	legalDir string
	logger   logging.Logger
}

// NewResolver creates a resolver over fsys, usually os.DirFS(content.dir).
func NewResolver(fsys fs.FS, langs i18n.Set, opts Options) *Resolver {
	if opts.BlogDir == "" {
		opts.BlogDir = "blog"
	}
	if opts.LegalDir == "" {
		opts.LegalDir = "legal"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	return &Resolver{
		fsys:     fsys,
		langs:    langs,
		blogDir:  path.Clean(opts.BlogDir),
		legalDir: path.Clean(opts.LegalDir),
		logger:   opts.Logger.WithComponent("content"),
	}
}

// Languages returns the language set the resolver serves.
func (r *Resolver) Languages() i18n.Set {
	return r.langs
}

func (r *Resolver) postDir(lang i18n.Language) string {
	return path.Join(r.blogDir, string(lang))
}

// ListPosts returns every valid post in lang, newest first. Invalid files are
// logged and skipped. Posts sharing a date keep filename order. When the
// language has no directory the default language's posts are returned,
// labelled with the default language.
func (r *Resolver) ListPosts(ctx context.Context, lang i18n.Language) []Post {
	lang = r.langs.OrDefault(lang)

	dirLang := lang
	entries, err := fs.ReadDir(r.fsys, r.postDir(lang))
	if err != nil && lang != r.langs.Default {
		r.logger.Debug(ctx, "language directory unavailable, using default language",
			"language", lang, "default", r.langs.Default)
		dirLang = r.langs.Default
		entries, err = fs.ReadDir(r.fsys, r.postDir(dirLang))
	}
	if err != nil {
		r.logger.Warn(ctx, err, "blog directory unavailable", "dir", r.postDir(dirLang))
		return nil
	}

	posts := make([]Post, 0, len(entries))
	seen := make(map[string]string, len(entries))

	// fs.ReadDir sorts by filename, so the first valid file for a slug wins.
	for _, entry := range entries {
		slug, ok := postSlug(entry)
		if !ok {
			continue
		}
		source := path.Join(r.postDir(dirLang), entry.Name())

		if err := validation.ValidateSlug(slug); err != nil {
			r.logDropped(ctx, errors.WrapValidation(err, errors.ErrCodeSlugInvalid, "file name is not a valid slug").WithPath(source))
			continue
		}

		if first, dup := seen[slug]; dup {
			r.logDropped(ctx, errors.NewValidationError(errors.ErrCodeSlugDuplicate,
				"slug already provided by "+first).WithPath(source))
			continue
		}

		post, err := r.readPost(source, slug, dirLang)
		if err != nil {
			r.logDropped(ctx, err)
			continue
		}

		seen[slug] = source
		posts = append(posts, *post)
	}

	SortByDate(posts)

	return posts
}

// SortByDate orders posts newest first, keeping the existing order of posts
// with equal dates.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published.After(posts[j].Published)
	})
}

// GetPost returns the post slug in lang. If lang has no valid copy the
// default language's copy is returned, carrying the default language. A
// not-found *errors.FolioError is returned when neither exists.
func (r *Resolver) GetPost(ctx context.Context, slug string, lang i18n.Language) (*Post, error) {
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, errors.ErrPostNotFound(slug, string(lang))
	}

	candidates := []i18n.Language{r.langs.OrDefault(lang)}
	if candidates[0] != r.langs.Default {
		candidates = append(candidates, r.langs.Default)
	}

	for _, l := range candidates {
		if post := r.findPost(ctx, slug, l); post != nil {
			return post, nil
		}
	}

	return nil, errors.ErrPostNotFound(slug, string(lang))
}

// findPost tries each extension in order and returns the first valid post.
func (r *Resolver) findPost(ctx context.Context, slug string, lang i18n.Language) *Post {
	for _, ext := range postExtensions {
		source := path.Join(r.postDir(lang), slug+ext)
		post, err := r.readPost(source, slug, lang)
		if err == nil {
			return post
		}
		if !errors.IsNotFound(err) {
			r.logDropped(ctx, err)
		}
	}
	return nil
}

// PostExists reports whether a source file for slug exists in lang. The file
// is not parsed.
func (r *Resolver) PostExists(slug string, lang i18n.Language) bool {
	if err := validation.ValidateSlug(slug); err != nil || !r.langs.Contains(lang) {
		return false
	}

	for _, ext := range postExtensions {
		info, err := fs.Stat(r.fsys, path.Join(r.postDir(lang), slug+ext))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func (r *Resolver) readPost(source, slug string, lang i18n.Language) (*Post, error) {
	src, err := fs.ReadFile(r.fsys, source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError(errors.ErrCodePostNotFound, "no such file").WithPath(source)
		}
		return nil, errors.WrapIO(err, errors.ErrCodeReadFailed, "read failed").WithPath(source)
	}
	return parsePost(src, source, slug, lang)
}

func (r *Resolver) logDropped(ctx context.Context, err error) {
	var fe *errors.FolioError
	if errors.As(err, &fe) {
		r.logger.Warn(ctx, err, "content item dropped", fe.Fields()...)
		return
	}
	r.logger.Warn(ctx, err, "content item dropped")
}

// postSlug derives the slug of a directory entry, reporting false for
// entries that are not post sources.
func postSlug(entry fs.DirEntry) (string, bool) {
	if entry.IsDir() {
		return "", false
	}
	name := entry.Name()
	for _, ext := range postExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}
