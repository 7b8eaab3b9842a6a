package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/portfolio"
)

// Projects renders the project grid. failed shows the load error in place
// of the grid.
func Projects(page Page, projects []portfolio.Project, failed bool) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict

		h.open("section", "class", "page projects")
		h.element("h1", d.Pages.Projects.Title)
		h.element("p", d.Pages.Projects.Intro, "class", "lead")

		switch {
		case failed:
			h.element("p", d.Projects.FetchFailed, "class", "error")
		case len(projects) == 0:
			h.element("p", d.Projects.Empty, "class", "empty")
		default:
			h.raw(`<div class="project-grid">`)
			for i := range projects {
				projectCard(h, d, &projects[i])
			}
			h.raw("</div>")
		}
		h.close("section")

		callToAction(h, page)
		return h.err
	}))
}

func projectCard(h *htmlWriter, d *i18n.Dictionary, p *portfolio.Project) {
	h.raw(`<article class="project-card">`)
	h.open("h2")
	h.link(p.URL, p.Name, "rel", "noopener noreferrer")
	h.close("h2")
	h.element("p", p.Description)

	h.raw(`<p class="project-meta">`)
	if p.Language != "" {
		h.element("span", p.Language, "class", "project-language")
	}
	h.element("span", d.Projects.Stars+": "+strconv.Itoa(p.Stars), "class", "project-stars")
	if !p.Updated.IsZero() {
		h.element("time", i18n.Format(d.Projects.Updated, "date", d.FormatDate(p.Updated)),
			"datetime", p.Updated.Format("2006-01-02"))
	}
	h.raw("</p>")

	if len(p.Topics) > 0 {
		h.raw(`<ul class="topics">`)
		for _, topic := range p.Topics {
			h.element("li", "#"+topic, "class", "topic")
		}
		h.raw("</ul>")
	}
	h.raw("</article>")
}

// Resume renders the structured resume. A nil resume shows the unavailable
// notice.
func Resume(page Page, resume *portfolio.Resume) templ.Component {
	return Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		d := page.Dict

		if resume == nil {
			h.open("section", "class", "page resume")
			h.element("h1", d.Pages.Resume.Title)
			h.element("p", d.Resume.Unavailable, "class", "error")
			h.close("section")
			return h.err
		}

		h.open("section", "class", "page resume")
		profileCard(h, &resume.Profile)

		if resume.Summary != "" {
			h.open("section", "class", "resume-profile")
			h.element("h2", d.Resume.Profile)
			h.element("p", resume.Summary)
			h.close("section")
		}

		if len(resume.Experience) > 0 {
			h.open("section", "class", "resume-experience")
			h.element("h2", d.Resume.Experience)
			for _, e := range resume.Experience {
				end := e.End
				if end == "" {
					end = d.Resume.Present
				}
				h.raw(`<div class="position">`)
				h.element("h3", e.Title+" @ "+e.Company)
				h.element("p", e.Start+" - "+end, "class", "period")
				bulletList(h, e.Highlights)
				if e.Location != "" {
					h.element("p", e.Location, "class", "location")
				}
				h.raw("</div>")
			}
			h.close("section")
		}

		if len(resume.Education) > 0 {
			h.open("section", "class", "resume-education")
			h.element("h2", d.Resume.Education)
			h.raw("<ul>")
			for _, e := range resume.Education {
				h.open("li")
				h.element("h3", e.Institution)
				h.element("p", e.Degree+" ("+e.Year+")")
				bulletList(h, e.Focus)
				h.close("li")
			}
			h.raw("</ul>")
			h.close("section")
		}

		if len(resume.Certifications) > 0 {
			h.open("section", "class", "resume-certifications")
			h.element("h2", d.Resume.Certifications)
			h.raw("<ul>")
			for _, c := range resume.Certifications {
				text := c.Name
				if c.Status != "" {
					text += " (" + c.Status + ")"
				}
				h.open("li")
				h.text(text)
				bulletList(h, c.Notes)
				h.close("li")
			}
			h.raw("</ul>")
			h.close("section")
		}

		if len(resume.Skills) > 0 {
			h.open("section", "class", "resume-skills")
			h.element("h2", d.Resume.Skills)
			for _, group := range resume.Skills {
				h.element("h3", group.Name)
				h.element("p", strings.Join(group.Items, ", "))
			}
			h.close("section")
		}

		if len(resume.Languages) > 0 {
			h.open("section", "class", "resume-languages")
			h.element("h2", d.Resume.Languages)
			h.raw("<ul>")
			for _, l := range resume.Languages {
				h.element("li", l.Language+": "+l.Level)
			}
			h.raw("</ul>")
			h.close("section")
		}

		if len(resume.Projects) > 0 {
			h.open("section", "class", "resume-projects")
			h.element("h2", d.Resume.Projects)
			for _, p := range resume.Projects {
				h.raw(`<div class="resume-project">`)
				h.open("h3")
				if p.URL != "" {
					h.link(p.URL, p.Name, "rel", "noopener noreferrer")
				} else {
					h.text(p.Name)
				}
				h.close("h3")
				h.element("p", p.Description)
				if p.Stack != "" {
					h.element("p", p.Stack, "class", "stack")
				}
				h.raw("</div>")
			}
			h.close("section")
		}

		h.close("section")
		callToAction(h, page)
		return h.err
	}))
}

func profileCard(h *htmlWriter, p *portfolio.Profile) {
	h.raw(`<aside class="profile-card">`)
	h.element("h1", p.Name)
	if p.Headline != "" {
		h.element("p", p.Headline, "class", "headline")
	}
	if p.Location != "" {
		h.element("p", p.Location, "class", "location")
	}
	h.raw("<ul>")
	if p.Email != "" {
		h.open("li")
		h.link("mailto:"+p.Email, p.Email)
		h.close("li")
	}
	for _, link := range []struct{ href, label string }{
		{p.Website, "Website"},
		{p.GitHub, "GitHub"},
		{p.LinkedIn, "LinkedIn"},
	} {
		if link.href == "" {
			continue
		}
		h.open("li")
		h.link(link.href, link.label, "rel", "noopener noreferrer")
		h.close("li")
	}
	h.raw("</ul>")
	h.raw("</aside>")
}

func bulletList(h *htmlWriter, items []string) {
	if len(items) == 0 {
		return
	}
	h.raw("<ul>")
	for _, item := range items {
		h.element("li", item)
	}
	h.raw("</ul>")
}
