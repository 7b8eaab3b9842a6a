package views

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/systemlogs/folio/internal/i18n"
)

// Site holds values shared by every page.
type Site struct {
	Title     string
	Author    string
	BaseURL   string
	HotReload bool
	Year      int
}

// Alternate is the same page in another language.
type Alternate struct {
	Language i18n.Language
	Path     string
}

// Page describes the page being rendered.
type Page struct {
	Site        Site
	Lang        i18n.Language
	Dict        *i18n.Dictionary
	Path        string
	Title       string
	Description string
	Alternates  []Alternate
}

func (p Page) title() string {
	if p.Title == "" || p.Title == p.Site.Title {
		return p.Site.Title
	}
	return p.Title + " | " + p.Site.Title
}

func (p Page) href(suffix string) string {
	return "/" + string(p.Lang) + suffix
}

// switchURL links to the language switch endpoint, which stores the choice
// in a cookie and redirects back to the current page in lang.
func switchURL(lang i18n.Language, next string) string {
	q := url.Values{}
	q.Set("lang", string(lang))
	q.Set("next", next)
	return "/api/language?" + q.Encode()
}

const liveReloadScript = `<script>
(function () {
  var protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
  function connect() {
    var ws = new WebSocket(protocol + '//' + window.location.host + '/ws');
    ws.onmessage = function (event) {
      var message = JSON.parse(event.data);
      if (message.type === 'full_reload' || message.type === 'content_changed') {
        window.location.reload();
      }
    };
    ws.onclose = function () {
      setTimeout(connect, 2000);
    };
  }
  connect();
})();
</script>`

// Layout wraps body in the document shell: head, navigation, language
// switch and footer.
func Layout(page Page, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict

		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", string(page.Lang))
		h.raw("<head>")
		h.raw(`<meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.element("title", page.title())
		if page.Description != "" {
			h.open("meta", "name", "description", "content", page.Description)
		}
		if page.Site.BaseURL != "" {
			h.open("link", "rel", "canonical", "href", page.Site.BaseURL+page.Path)
			for _, alt := range page.Alternates {
				h.open("link", "rel", "alternate", "hreflang", string(alt.Language), "href", page.Site.BaseURL+alt.Path)
			}
		}
		h.raw(`<link rel="stylesheet" href="/static/styles.css">`)
		h.raw("</head>")

		h.raw("<body>")
		h.raw(`<header class="site-header">`)
		h.link(page.href(""), page.Site.Title, "class", "brand")
		h.raw("<nav>")
		for _, item := range []struct{ path, label string }{
			{"", d.Nav.Home},
			{"/about", d.Nav.About},
			{"/projects", d.Nav.Projects},
			{"/blog", d.Nav.Blog},
			{"/resume", d.Nav.Resume},
			{"/contact", d.Nav.Contact},
		} {
			h.link(page.href(item.path), item.label)
		}
		h.raw("</nav>")
		for _, alt := range page.Alternates {
			name := d.LanguageName(alt.Language)
			h.link(switchURL(alt.Language, alt.Path), string(alt.Language),
				"class", "language-switch",
				"hreflang", string(alt.Language),
				"title", i18n.Format(d.Common.SwitchLanguage, "language", name))
		}
		h.raw("</header>")

		h.raw("<main>")
		h.component(ctx, body)
		h.raw("</main>")

		h.raw(`<footer class="site-footer">`)
		h.element("p", i18n.Format(d.Common.Copyright,
			"year", strconv.Itoa(page.Site.Year),
			"author", page.Site.Author))
		h.raw("<nav>")
		h.link(page.href("/privacy"), d.Legal.Privacy)
		h.link(page.href("/terms"), d.Legal.Terms)
		h.link(page.href("/impressum"), d.Legal.Impressum)
		h.raw("</nav>")
		h.raw("</footer>")

		if page.Site.HotReload {
			h.raw(liveReloadScript)
		}
		h.raw("</body></html>")
		return h.err
	})
}
