package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
)

var catalog = i18n.MustLoadCatalog(i18n.DefaultSet())

func testPage(lang i18n.Language, path string) Page {
	var alternates []Alternate
	for _, other := range i18n.DefaultSet().Others(lang) {
		alternates = append(alternates, Alternate{Language: other, Path: "/" + string(other) + path[3:]})
	}
	return Page{
		Site: Site{
			Title:   "System Logs",
			Author:  "Jane Doe",
			BaseURL: "https://example.com",
			Year:    2025,
		},
		Lang:       lang,
		Dict:       catalog.Dictionary(lang),
		Path:       path,
		Alternates: alternates,
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func samplePost(slug, title string, tags ...string) content.Post {
	return content.Post{
		Slug:        slug,
		Frontmatter: content.Frontmatter{Title: title, Date: "2025-03-07", Summary: "About " + title, Tags: tags},
		Published:   time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		Language:    i18n.English,
	}
}

func TestLayout(t *testing.T) {
	page := testPage(i18n.English, "/en/about")
	page.Title = "About"
	page.Description = "About me"

	out := render(t, StaticPage(page, page.Dict.Pages.About))

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, "<title>About | System Logs</title>")
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/en/about">`)
	assert.Contains(t, out, `hreflang="de" href="https://example.com/de/about"`)
	assert.Contains(t, out, `href="/api/language?lang=de&amp;next=%2Fde%2Fabout"`)
	assert.Contains(t, out, "© 2025 Jane Doe.")
	assert.Contains(t, out, `href="/en/privacy"`)
	assert.NotContains(t, out, "new WebSocket")
}

func TestLayoutLiveReload(t *testing.T) {
	page := testPage(i18n.English, "/en")
	page.Site.HotReload = true

	out := render(t, NotFound(page))
	assert.Contains(t, out, "new WebSocket")
	assert.Contains(t, out, "full_reload")
	assert.Contains(t, out, "content_changed")
}

func TestHomeShowsLatestPosts(t *testing.T) {
	posts := []content.Post{
		samplePost("one", "One"),
		samplePost("two", "Two"),
		samplePost("three", "Three"),
		samplePost("four", "Four"),
	}

	out := render(t, Home(testPage(i18n.English, "/en"), posts))
	assert.Contains(t, out, `href="/en/blog/one"`)
	assert.Contains(t, out, `href="/en/blog/three"`)
	assert.NotContains(t, out, `href="/en/blog/four"`)
	assert.Contains(t, out, `<time datetime="2025-03-07">March 7, 2025</time>`)
}

func TestHomeWithoutPosts(t *testing.T) {
	out := render(t, Home(testPage(i18n.German, "/de"), nil))
	assert.Contains(t, out, catalog.Dictionary(i18n.German).Blog.NoPostsAvailable)
}

func TestBlogIndex(t *testing.T) {
	page := testPage(i18n.English, "/en/blog")

	t.Run("tag bar", func(t *testing.T) {
		out := render(t, BlogIndex(page, BlogIndexData{
			Posts: []content.Post{samplePost("go", "Go tips", "Go", "Testing")},
			Tags:  []string{"Go", "Testing"},
		}))
		assert.Contains(t, out, `href="/en/blog?tag=Go"`)
		assert.Contains(t, out, `<a href="/en/blog" class="tag active">All</a>`)
	})

	t.Run("active tag", func(t *testing.T) {
		out := render(t, BlogIndex(page, BlogIndexData{
			Posts:     []content.Post{samplePost("go", "Go tips", "Go")},
			Tags:      []string{"Go", "Testing"},
			ActiveTag: "go",
		}))
		assert.Contains(t, out, `<a href="/en/blog?tag=Go" class="tag active">Go</a>`)
		assert.Contains(t, out, "Articles tagged with go")
	})

	t.Run("no posts with tag", func(t *testing.T) {
		out := render(t, BlogIndex(page, BlogIndexData{ActiveTag: "rust"}))
		assert.Contains(t, out, "No posts found with tag rust")
	})

	t.Run("no posts", func(t *testing.T) {
		out := render(t, BlogIndex(page, BlogIndexData{}))
		assert.Contains(t, out, "No posts available right now.")
	})
}

func TestPostPage(t *testing.T) {
	page := testPage(i18n.German, "/de/blog/go")
	post := samplePost("go", "Go <tips>", "Go")
	data := PostData{
		Post: &post,
		HTML: `<h2 id="setup">Setup</h2><p>body</p>`,
		TOC:  []content.TOCItem{{Title: "Setup", ID: "setup", Level: 2}},
		Related: content.Related{
			Related: []content.Post{samplePost("related", "Related one")},
			Recent:  []content.Post{samplePost("recent", "Recent one")},
		},
		Popular: []content.TagCount{{Tag: "Go", Count: 3}},
		Notice:  &LanguageNotice{Language: i18n.English, Path: "/en/blog/go"},
	}

	out := render(t, PostPage(page, data))

	assert.Contains(t, out, "<h1>Go &lt;tips&gt;</h1>")
	assert.Contains(t, out, `<h2 id="setup">Setup</h2><p>body</p>`)
	assert.Contains(t, out, `<a href="#setup">Setup</a>`)
	assert.Contains(t, out, `href="/de/blog/related"`)
	assert.Contains(t, out, `href="/de/blog/recent"`)
	assert.Contains(t, out, `<span class="count">3</span>`)
	assert.Contains(t, out, `class="language-notice"`)
	assert.Contains(t, out, `<a href="/en/blog/go" hreflang="en">`)
	assert.Contains(t, out, "7. März 2025")
	assert.Contains(t, out, `<article class="post" lang="en">`)
}

func TestPostPageWithoutNotice(t *testing.T) {
	post := samplePost("go", "Go")
	out := render(t, PostPage(testPage(i18n.English, "/en/blog/go"), PostData{Post: &post}))
	assert.NotContains(t, out, "language-notice")
	assert.NotContains(t, out, `class="toc"`)
}

func TestLegalPage(t *testing.T) {
	doc := &content.LegalDocument{
		Slug:      "privacy",
		Title:     "Privacy Policy",
		Published: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		Language:  i18n.English,
		HTML:      "<h2>Data</h2>",
	}

	out := render(t, LegalPage(testPage(i18n.English, "/en/privacy"), doc))
	assert.Contains(t, out, "<h1>Privacy Policy</h1>")
	assert.Contains(t, out, "<h2>Data</h2>")
	assert.Contains(t, out, "Last updated")
	assert.Contains(t, out, "May 1, 2025")
}

func TestNotFoundOffersAlternates(t *testing.T) {
	page := testPage(i18n.English, "/en/blog/only-german")
	page.Alternates = []Alternate{{Language: i18n.German, Path: "/de/blog/only-german"}}

	out := render(t, NotFound(page))
	assert.Contains(t, out, "Not Found")
	assert.Contains(t, out, `<a href="/de/blog/only-german" hreflang="de">Read in German</a>`)
}

func TestUnsafeURLsAreSanitized(t *testing.T) {
	post := samplePost("x", "X")
	post.Frontmatter.CoverImage = "javascript:alert(1)"

	out := render(t, PostPage(testPage(i18n.English, "/en/blog/x"), PostData{Post: &post}))
	assert.NotContains(t, out, "javascript:")
}
