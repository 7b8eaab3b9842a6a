package views

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
)

// BlogIndexData is the blog listing, already filtered by ActiveTag.
type BlogIndexData struct {
	Posts     []content.Post
	Tags      []string
	ActiveTag string
}

// LanguageNotice tells the reader that the post is shown in another
// language, or is only available in another language.
type LanguageNotice struct {
	Language i18n.Language
	Path     string
}

// PostData is everything the post page shows.
type PostData struct {
	Post    *content.Post
	HTML    string
	TOC     []content.TOCItem
	Related content.Related
	Popular []content.TagCount
	Notice  *LanguageNotice
}

func tagURL(page Page, tag string) string {
	return page.href("/blog") + "?tag=" + url.QueryEscape(tag)
}

// BlogIndex renders the post listing with a tag bar.
func BlogIndex(page Page, data BlogIndexData) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict

		h.raw(`<section class="blog-header">`)
		h.element("h1", d.Blog.MetaTitle)
		h.element("p", d.Blog.Subtitle, "class", "lead")
		if data.ActiveTag != "" {
			h.element("p", d.Blog.TaggedWith+" "+data.ActiveTag, "class", "active-tag")
		}
		h.raw("</section>")

		if len(data.Tags) > 0 {
			h.raw(`<nav class="tag-bar">`)
			allClass := "tag"
			if data.ActiveTag == "" {
				allClass += " active"
			}
			h.link(page.href("/blog"), d.Blog.AllTags, "class", allClass)
			for _, tag := range data.Tags {
				class := "tag"
				if strings.EqualFold(tag, data.ActiveTag) {
					class += " active"
				}
				h.link(tagURL(page, tag), tag, "class", class)
			}
			h.raw("</nav>")
		}

		h.raw(`<section class="posts">`)
		switch {
		case len(data.Posts) == 0 && data.ActiveTag != "":
			h.element("p", d.Blog.NoPostsWithTag+" "+data.ActiveTag, "class", "empty")
		case len(data.Posts) == 0:
			h.element("p", d.Blog.NoPostsAvailable, "class", "empty")
		}
		for i := range data.Posts {
			postCard(h, page, &data.Posts[i])
		}
		h.raw("</section>")
		return h.err
	}))
}

// PostPage renders a single post with its table of contents and sidebar.
func PostPage(page Page, data PostData) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict
		post := data.Post

		h.open("article", "class", "post", "lang", string(post.Language))
		if data.Notice != nil {
			name := d.LanguageName(data.Notice.Language)
			h.raw(`<aside class="language-notice">`)
			h.element("p", i18n.Format(d.Blog.OtherLanguageAvailable, "language", name))
			h.link(data.Notice.Path, i18n.Format(d.Blog.ReadInLanguage, "language", name), "hreflang", string(data.Notice.Language))
			h.raw("</aside>")
		}

		h.raw("<header>")
		h.element("h1", post.Title())
		h.raw(`<p class="meta">`)
		h.text(d.Blog.Published + " ")
		publishedTime(h, d, post)
		h.raw("</p>")
		tagList(h, page, post.Tags())
		if post.Frontmatter.CoverImage != "" {
			h.open("img", "src", safeURL(post.Frontmatter.CoverImage), "alt", post.Title(), "class", "cover")
		}
		h.raw("</header>")

		if len(data.TOC) > 0 {
			h.raw(`<nav class="toc">`)
			h.element("h2", d.Blog.TableOfContents)
			tocList(h, data.TOC)
			h.raw("</nav>")
		}

		h.raw(`<div class="post-body">`)
		h.component(ctx, templ.Raw(data.HTML))
		h.raw("</div>")
		h.close("article")

		h.raw(`<aside class="sidebar">`)
		postGroup(h, page, d.Blog.RelatedPosts, data.Related.Related)
		postGroup(h, page, d.Blog.RecentPosts, data.Related.Recent)
		if len(data.Popular) > 0 {
			h.raw(`<section class="popular-topics">`)
			h.element("h2", d.Blog.PopularTopics)
			h.raw("<ul>")
			for _, tc := range data.Popular {
				h.open("li")
				h.link(tagURL(page, tc.Tag), tc.Tag, "class", "tag")
				h.element("span", strconv.Itoa(tc.Count), "class", "count")
				h.close("li")
			}
			h.raw("</ul></section>")
		}
		h.link(page.href("/blog"), d.Blog.BackToBlog, "class", "back")
		h.raw("</aside>")
		return h.err
	}))
}

func tocList(h *htmlWriter, items []content.TOCItem) {
	h.raw("<ol>")
	for _, item := range items {
		h.open("li", "class", "toc-level-"+strconv.Itoa(item.Level))
		h.link("#"+item.ID, item.Title)
		if len(item.Items) > 0 {
			tocList(h, item.Items)
		}
		h.close("li")
	}
	h.raw("</ol>")
}

func postGroup(h *htmlWriter, page Page, title string, posts []content.Post) {
	if len(posts) == 0 {
		return
	}
	h.raw(`<section class="post-group">`)
	h.element("h2", title)
	h.raw("<ul>")
	for i := range posts {
		h.open("li")
		h.link(page.href("/blog/"+posts[i].Slug), posts[i].Title())
		publishedTime(h, page.Dict, &posts[i])
		h.close("li")
	}
	h.raw("</ul></section>")
}
