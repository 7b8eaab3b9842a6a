package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/i18n"
)

// HomeLatest is the number of posts teased on the home page.
const HomeLatest = 3

// Home renders the landing page with the latest posts.
func Home(page Page, posts []content.Post) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict

		h.raw(`<section class="hero">`)
		h.element("h1", d.Pages.Home.Title)
		h.element("p", d.Pages.Home.Intro, "class", "lead")
		h.raw("</section>")

		h.raw(`<section class="latest">`)
		h.element("h2", d.Blog.LatestArticles)
		if len(posts) > HomeLatest {
			posts = posts[:HomeLatest]
		}
		if len(posts) == 0 {
			h.element("p", d.Blog.NoPostsAvailable, "class", "empty")
		}
		for i := range posts {
			postCard(h, page, &posts[i])
		}
		h.link(page.href("/blog"), d.Blog.ViewAll, "class", "view-all")
		h.raw("</section>")

		callToAction(h, page)
		return h.err
	}))
}

// StaticPage renders a marketing page (about, contact) from its dictionary
// entry.
func StaticPage(page Page, text i18n.Page) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		h.open("section", "class", "page")
		h.element("h1", text.Title)
		h.element("p", text.Intro, "class", "lead")
		h.close("section")
		callToAction(h, page)
		return h.err
	}))
}

// NotFound renders the 404 page. Alternates on the page, when present, are
// offered as links to the same content in another language.
func NotFound(page Page) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict
		h.open("section", "class", "not-found")
		h.element("h1", d.Common.Errors.NotFound)
		h.element("p", d.Common.Errors.NotFoundText)
		for _, alt := range page.Alternates {
			name := d.LanguageName(alt.Language)
			h.link(alt.Path, i18n.Format(d.Blog.ReadInLanguage, "language", name), "hreflang", string(alt.Language))
		}
		h.link(page.href(""), d.Nav.Home)
		h.close("section")
		return h.err
	}))
}

// ErrorPage renders a generic failure message.
func ErrorPage(page Page) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		h.open("section", "class", "error")
		h.element("h1", page.Dict.Common.Errors.Generic)
		h.close("section")
		return h.err
	}))
}

func callToAction(h *htmlWriter, page Page) {
	d := page.Dict
	h.raw(`<section class="cta">`)
	h.element("h2", d.Common.CTA.Title)
	h.element("p", d.Common.CTA.Subtitle)
	h.link(page.href("/contact"), d.Common.CTA.ContactButton, "class", "button")
	h.link(page.href("/resume"), d.Common.CTA.ResumeButton, "class", "button secondary")
	h.raw("</section>")
}

func postCard(h *htmlWriter, page Page, post *content.Post) {
	h.raw(`<article class="post-card">`)
	h.open("h3")
	h.link(page.href("/blog/"+post.Slug), post.Title())
	h.close("h3")
	publishedTime(h, page.Dict, post)
	if post.Frontmatter.Summary != "" {
		h.element("p", post.Frontmatter.Summary)
	}
	tagList(h, page, post.Tags())
	h.link(page.href("/blog/"+post.Slug), page.Dict.Common.ReadMore, "class", "read-more")
	h.raw("</article>")
}

func publishedTime(h *htmlWriter, d *i18n.Dictionary, post *content.Post) {
	h.element("time", d.FormatDate(post.Published), "datetime", post.Published.Format("2006-01-02"))
}

func tagList(h *htmlWriter, page Page, tags []string) {
	if len(tags) == 0 {
		return
	}
	h.raw(`<ul class="tags">`)
	for _, tag := range tags {
		h.open("li")
		h.link(tagURL(page, tag), tag, "class", "tag")
		h.close("li")
	}
	h.raw("</ul>")
}
