package content

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/logging"
)

func post(title, date string, extra ...string) *fstest.MapFile {
	src := "---\ntitle: " + title + "\ndate: " + date + "\n"
	for _, line := range extra {
		src += line + "\n"
	}
	src += "---\n\nBody of " + title + "\n"
	return &fstest.MapFile{Data: []byte(src)}
}

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"blog/en/alpha.md":          post("Alpha", "2024-03-01", "tags: [Go, API]"),
		"blog/en/alpha.mdx":         post("Alpha Duplicate", "2024-05-01"),
		"blog/en/beta.mdx":          post("Beta", "2024-01-15T10:00:00Z", "summary: second"),
		"blog/en/gamma.md":          post("Gamma", "2024-03-01"),
		"blog/en/no-title.md":       post("\"\"", "2024-04-01"),
		"blog/en/bad-date.md":       post("Bad", "not a date"),
		"blog/en/no-date.md":        {Data: []byte("---\ntitle: Dateless\n---\nbody")},
		"blog/en/no-frontmatter.md": {Data: []byte("Just text without a header.\n")},
		"blog/en/broken-yaml.md":    {Data: []byte("---\ntitle: [unclosed\n---\nbody")},
		"blog/en/german.md":         post("German", "2024-02-01", "language: de"),
		"blog/en/english.md":        post("English", "2023-12-01", "language: en-US"),
		"blog/en/Upper Case.md":     post("Upper", "2024-02-01"),
		"blog/en/notes.txt":         {Data: []byte("ignored")},
		"blog/en/drafts/draft.md":   post("Draft", "2024-06-01"),
		"blog/en/my-article.md":     post("My Article", "2023-06-01"),
		"blog/en/broken.md":         post("Broken EN", "2023-01-01"),
		"blog/de/hallo.md":          post("Hallo", "2024-02-02", "tags: [go]"),
		"blog/de/broken.md":         post("Broken DE", "invalid"),
	}
}

func newTestResolver(t *testing.T, fsys fstest.MapFS) (*Resolver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "json", Output: &buf})
	return NewResolver(fsys, i18n.DefaultSet(), Options{Logger: logger}), &buf
}

func slugs(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestListPosts(t *testing.T) {
	r, logs := newTestResolver(t, testTree())

	posts := r.ListPosts(context.Background(), i18n.English)

	assert.Equal(t, []string{"alpha", "gamma", "beta", "english", "my-article", "broken"}, slugs(posts))

	alpha := posts[0]
	assert.Equal(t, "Alpha", alpha.Title())
	assert.Equal(t, []string{"Go", "API"}, alpha.Tags())
	assert.Equal(t, i18n.English, alpha.Language)
	assert.Equal(t, "blog/en/alpha.md", alpha.Source)
	assert.Contains(t, alpha.Content, "Body of Alpha")
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), alpha.Published)

	for _, code := range []string{
		errors.ErrCodeSlugDuplicate,
		errors.ErrCodeTitleMissing,
		errors.ErrCodeDateInvalid,
		errors.ErrCodeDateMissing,
		errors.ErrCodeFrontmatterMissing,
		errors.ErrCodeFrontmatterInvalid,
		errors.ErrCodeLanguageMismatch,
		errors.ErrCodeSlugInvalid,
	} {
		assert.Contains(t, logs.String(), code)
	}
}

func TestListPostsInvariants(t *testing.T) {
	r, _ := newTestResolver(t, testTree())

	for _, lang := range i18n.DefaultSet().Supported {
		posts := r.ListPosts(context.Background(), lang)
		for i, p := range posts {
			assert.NotEmpty(t, p.Title())
			assert.False(t, p.Published.IsZero())
			if i > 0 {
				assert.False(t, p.Published.After(posts[i-1].Published), "posts must be newest first")
			}
		}
	}
}

func TestListPostsFallsBackToDefaultDirectory(t *testing.T) {
	r, _ := newTestResolver(t, fstest.MapFS{
		"blog/en/one.md": post("One", "2024-01-01"),
	})

	posts := r.ListPosts(context.Background(), i18n.German)

	require.Len(t, posts, 1)
	assert.Equal(t, i18n.English, posts[0].Language)
}

func TestListPostsWithoutBlogDirectory(t *testing.T) {
	r, _ := newTestResolver(t, fstest.MapFS{})

	assert.Empty(t, r.ListPosts(context.Background(), i18n.German))
}

func TestGetPost(t *testing.T) {
	r, _ := newTestResolver(t, testTree())
	ctx := context.Background()

	tests := []struct {
		name     string
		slug     string
		lang     i18n.Language
		wantLang i18n.Language
		title    string
		notFound bool
	}{
		{name: "requested language", slug: "hallo", lang: i18n.German, wantLang: i18n.German, title: "Hallo"},
		{name: "fallback to default", slug: "my-article", lang: i18n.German, wantLang: i18n.English, title: "My Article"},
		{name: "invalid copy falls back", slug: "broken", lang: i18n.German, wantLang: i18n.English, title: "Broken EN"},
		{name: "md wins over mdx", slug: "alpha", lang: i18n.English, wantLang: i18n.English, title: "Alpha"},
		{name: "mdx only", slug: "beta", lang: i18n.English, wantLang: i18n.English, title: "Beta"},
		{name: "unsupported language uses default", slug: "alpha", lang: "fr", wantLang: i18n.English, title: "Alpha"},
		{name: "only in non-default language", slug: "hallo", lang: i18n.English, notFound: true},
		{name: "unknown", slug: "missing", lang: i18n.English, notFound: true},
		{name: "traversal", slug: "../de/hallo", lang: i18n.English, notFound: true},
		{name: "invalid post everywhere", slug: "bad-date", lang: i18n.English, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.GetPost(ctx, tt.slug, tt.lang)
			if tt.notFound {
				require.Error(t, err)
				assert.True(t, errors.IsNotFound(err))
				assert.Equal(t, errors.ErrCodePostNotFound, errors.CodeOf(err))
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.slug, p.Slug)
			assert.Equal(t, tt.wantLang, p.Language)
			assert.Equal(t, tt.title, p.Title())
		})
	}
}

func TestPostExists(t *testing.T) {
	r, _ := newTestResolver(t, testTree())

	assert.True(t, r.PostExists("hallo", i18n.German))
	assert.False(t, r.PostExists("hallo", i18n.English))
	assert.True(t, r.PostExists("beta", i18n.English))
	assert.True(t, r.PostExists("bad-date", i18n.English), "existence does not parse")
	assert.False(t, r.PostExists("drafts", i18n.English))
	assert.False(t, r.PostExists("alpha", "fr"))
	assert.False(t, r.PostExists("../en/alpha", i18n.German))
}

func TestParseDate(t *testing.T) {
	valid := map[string]time.Time{
		"2024-01-02":           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"2024-01-02T15:04:05Z": time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		"2024-01-02T15:04:05":  time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		"2024-01-02 15:04:05":  time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		" 2024-01-02 ":         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range valid {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	for _, raw := range []string{"", "yesterday", "2024-13-01", "01/02/2024"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
		assert.Equal(t, errors.ErrCodeDateInvalid, errors.CodeOf(err))
	}
}
