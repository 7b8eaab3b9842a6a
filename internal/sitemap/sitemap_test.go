package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
)

type fakePosts map[i18n.Language][]content.Post

func (f fakePosts) ListPosts(_ context.Context, lang i18n.Language) []content.Post {
	return f[lang]
}

func post(slug string, lang i18n.Language, date string) content.Post {
	published, _ := time.Parse("2006-01-02", date)
	return content.Post{Slug: slug, Language: lang, Published: published}
}

func TestBuild(t *testing.T) {
	posts := fakePosts{}
	posts[i18n.English] = []content.Post{post("hello", i18n.English, "2025-01-02")}
	// German falls back to the English copy of hello; it must not be listed twice.
	posts[i18n.German] = []content.Post{post("hello", i18n.English, "2025-01-02"), post("hallo", i18n.German, "2025-02-03")}

	set := Build(context.Background(), "https://example.com/", i18n.DefaultSet(), posts)

	require.Len(t, set.URLs, 2*len(StaticPages)+2)
	assert.Equal(t, URL{Loc: "https://example.com/en", ChangeFreq: "weekly", Priority: 1}, set.URLs[0])
	assert.Equal(t, "https://example.com/en/about", set.URLs[1].Loc)
	assert.Equal(t, 0.8, set.URLs[1].Priority)
	assert.Equal(t, "https://example.com/de", set.URLs[len(StaticPages)].Loc)

	tail := set.URLs[2*len(StaticPages):]
	assert.Equal(t, URL{Loc: "https://example.com/en/blog/hello", LastMod: "2025-01-02", ChangeFreq: "monthly", Priority: 0.6}, tail[0])
	assert.Equal(t, "https://example.com/de/blog/hallo", tail[1].Loc)
}

func TestWriteTo(t *testing.T) {
	set := Build(context.Background(), "https://example.com", i18n.DefaultSet(), fakePosts{})

	var buf bytes.Buffer
	n, err := set.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(xml.Header)))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://example.com/de/impressum</loc>")
	assert.NotContains(t, out, "<lastmod>")

	var decoded URLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.URLs, 2*len(StaticPages))
}

func TestRobots(t *testing.T) {
	out := Robots("https://example.com/")
	assert.Contains(t, out, "User-agent: *\n")
	assert.Contains(t, out, "Disallow: /api/\n")
	assert.Contains(t, out, "Sitemap: https://example.com/sitemap.xml\n")
}
