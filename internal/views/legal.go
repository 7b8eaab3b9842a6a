package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/systemlogs/folio/internal/content"
)

// LegalPage renders a privacy policy, terms or impressum document.
func LegalPage(page Page, doc *content.LegalDocument) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict

		h.open("article", "class", "legal", "lang", string(doc.Language))
		h.element("h1", doc.Title)
		if !doc.Published.IsZero() {
			h.raw(`<p class="meta">`)
			h.text(d.Legal.LastUpdated + " ")
			h.element("time", d.FormatDate(doc.Published), "datetime", doc.Published.Format("2006-01-02"))
			h.raw("</p>")
		}
		h.component(ctx, templ.Raw(doc.HTML))
		h.close("article")
		return h.err
	}))
}
