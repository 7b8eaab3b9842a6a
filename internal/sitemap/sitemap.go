// Package sitemap builds sitemap.xml and robots.txt for the site.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
)

// Namespace is the sitemap protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticPages are the per-language pages listed in the sitemap. The empty
// name is the language home page.
var StaticPages = []string{"", "about", "contact", "projects", "resume", "privacy", "terms", "impressum"}

// PostLister lists the posts of one language.
type PostLister interface {
	ListPosts(ctx context.Context, lang i18n.Language) []content.Post
}

// URL is one <url> entry.
type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// URLSet is the sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Build lists every static page and post for each supported language.
// Only posts that live in the language's own directory are listed, so a
// default-language fallback never appears under a second URL.
func Build(ctx context.Context, baseURL string, langs i18n.Set, posts PostLister) *URLSet {
	baseURL = strings.TrimSuffix(baseURL, "/")
	set := &URLSet{Xmlns: Namespace}

	for _, lang := range langs.Supported {
		for _, page := range StaticPages {
			entry := URL{
				Loc:        baseURL + "/" + string(lang),
				ChangeFreq: "monthly",
				Priority:   0.8,
			}
			if page == "" {
				entry.ChangeFreq = "weekly"
				entry.Priority = 1
			} else {
				entry.Loc += "/" + page
			}
			set.URLs = append(set.URLs, entry)
		}
	}

	for _, lang := range langs.Supported {
		for _, post := range posts.ListPosts(ctx, lang) {
			if post.Language != lang {
				continue
			}
			set.URLs = append(set.URLs, URL{
				Loc:        fmt.Sprintf("%s/%s/blog/%s", baseURL, lang, post.Slug),
				LastMod:    post.Published.Format("2006-01-02"),
				ChangeFreq: "monthly",
				Priority:   0.6,
			})
		}
	}

	return set
}

// WriteTo encodes the sitemap with an XML declaration.
func (s *URLSet) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(xml.Header)
	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return 0, fmt.Errorf("encode sitemap: %w", err)
	}
	b.WriteString("\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Robots returns robots.txt pointing crawlers at the sitemap.
func Robots(baseURL string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return "User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /api/\n" +
		"\n" +
		"Sitemap: " + baseURL + "/sitemap.xml\n"
}
