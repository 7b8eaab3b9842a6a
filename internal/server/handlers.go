package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/systemlogs/folio/internal/content"
	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/locale"
	"github.com/systemlogs/folio/internal/sitemap"
	"github.com/systemlogs/folio/internal/validation"
	"github.com/systemlogs/folio/internal/views"
)

// Number of related and popular entries in the post sidebar.
const (
	relatedCount = 3
	popularCount = 6
)

// legalAliases maps alternative legal URLs to their document.
var legalAliases = map[string]string{
	"legal-notice": "impressum",
}

// routes registers the site-wide endpoints on mux and hands everything else
// to the localized page routes. The two sets live in separate muxes because
// "/static/" and "/api/language" overlap "/{lang}/{page}".
func (s *Server) routes(mux *http.ServeMux) {
	mux.Handle("GET /healthz", s.health.Handler())
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
	mux.Handle("/api/language", s.router.SwitchHandler())

	if s.hub != nil {
		mux.Handle("GET /ws", s.hub.Handler(s.allowedOrigins()))
	}
	if static, err := s.StaticFS(); err == nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}

	pages := http.NewServeMux()
	pages.HandleFunc("GET /{lang}", s.handleHome)
	pages.HandleFunc("GET /{lang}/{$}", s.handleHome)
	pages.HandleFunc("GET /{lang}/{page}", s.handlePage)
	pages.HandleFunc("GET /{lang}/blog", s.handleBlogIndex)
	pages.HandleFunc("GET /{lang}/blog/{slug}", s.handlePost)
	pages.HandleFunc("/", s.handleNotFound)
	mux.Handle("/", pages)
}

// language returns the supported language named by the {lang} segment.
func (s *Server) language(r *http.Request) (i18n.Language, bool) {
	lang := i18n.Language(r.PathValue("lang"))
	return lang, s.langs.Contains(lang)
}

// page builds the view model shared by all pages of a request.
func (s *Server) page(r *http.Request, lang i18n.Language, title, description string) views.Page {
	p := views.Page{
		Site: views.Site{
			Title:     s.config.Site.Title,
			Author:    s.config.Site.Author,
			BaseURL:   s.config.Site.BaseURL,
			HotReload: s.hub != nil,
			Year:      s.now().Year(),
		},
		Lang:        lang,
		Dict:        s.catalog.Dictionary(lang),
		Path:        r.URL.Path,
		Title:       title,
		Description: description,
	}
	for _, other := range s.langs.Others(lang) {
		p.Alternates = append(p.Alternates, views.Alternate{
			Language: other,
			Path:     locale.SwapLanguage(r.URL.Path, other, s.langs),
		})
	}
	return p
}

// render buffers the component so a failed render still produces a clean
// error response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render page", "path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug(r.Context(), "Client went away", "error", err.Error())
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.language(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	d := s.catalog.Dictionary(lang)
	posts := s.resolver.ListPosts(r.Context(), lang)
	s.render(w, r, http.StatusOK, views.Home(s.page(r, lang, s.config.Site.Title, d.Pages.Home.Intro), posts))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.language(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	d := s.catalog.Dictionary(lang)
	name := r.PathValue("page")

	switch name {
	case "resume":
		s.handleResume(w, r, lang)
		return
	case "projects":
		s.handleProjects(w, r, lang)
		return
	}

	pages := map[string]i18n.Page{
		"about":   d.Pages.About,
		"contact": d.Pages.Contact,
	}
	if text, ok := pages[name]; ok {
		s.render(w, r, http.StatusOK, views.StaticPage(s.page(r, lang, text.Title, text.Intro), text))
		return
	}

	if alias, ok := legalAliases[name]; ok {
		name = alias
	}
	if content.IsLegalSlug(name) {
		s.handleLegal(w, r, lang, name)
		return
	}

	s.handleNotFound(w, r)
}

// handleResume renders the resume. A missing resume still renders the page
// with a notice.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request, lang i18n.Language) {
	text := s.catalog.Dictionary(lang).Pages.Resume
	resume, err := s.resumes.Resume(r.Context(), lang)
	if err != nil {
		s.logger.Warn(r.Context(), err, "Resume unavailable", "language", string(lang))
	}
	s.render(w, r, http.StatusOK, views.Resume(s.page(r, lang, text.Title, text.Intro), resume))
}

// handleProjects renders the showcased projects. When the source fails and
// nothing is cached the page says so instead of failing the request.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request, lang i18n.Language) {
	text := s.catalog.Dictionary(lang).Pages.Projects
	projects, err := s.projects.Projects(r.Context())
	if err != nil {
		s.logger.Warn(r.Context(), err, "Projects unavailable")
	}
	s.render(w, r, http.StatusOK, views.Projects(s.page(r, lang, text.Title, text.Intro), projects, err != nil))
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request, lang i18n.Language, slug string) {
	doc, err := s.resolver.LegalContent(r.Context(), slug, lang)
	if err != nil {
		if errors.IsNotFound(err) {
			s.handleNotFound(w, r)
			return
		}
		s.handleError(w, r, lang, err)
		return
	}
	s.render(w, r, http.StatusOK, views.LegalPage(s.page(r, lang, doc.Title, doc.Summary), doc))
}

func (s *Server) handleBlogIndex(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.language(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	d := s.catalog.Dictionary(lang)

	posts := s.resolver.ListPosts(r.Context(), lang)
	tag := strings.TrimSpace(validation.SanitizeInput(r.URL.Query().Get("tag")))
	data := views.BlogIndexData{
		Posts:     content.FilterByTag(posts, tag),
		Tags:      content.ListTags(posts),
		ActiveTag: tag,
	}
	s.render(w, r, http.StatusOK, views.BlogIndex(s.page(r, lang, d.Blog.MetaTitle, d.Blog.MetaDescription), data))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.language(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	ctx := r.Context()
	slug := r.PathValue("slug")

	post, err := s.resolver.GetPost(ctx, slug, lang)
	if err != nil {
		if !errors.IsNotFound(err) && !errors.IsValidation(err) {
			s.handleError(w, r, lang, err)
			return
		}
		// The post may exist only in a language the fallback does not reach.
		page := s.page(r, lang, "", "")
		page.Alternates = nil
		for _, other := range s.langs.Others(lang) {
			if s.resolver.PostExists(slug, other) {
				page.Alternates = append(page.Alternates, views.Alternate{
					Language: other,
					Path:     "/" + string(other) + "/blog/" + slug,
				})
			}
		}
		s.render(w, r, http.StatusNotFound, views.NotFound(page))
		return
	}

	html, toc, err := s.renderer.Render(post)
	if err != nil {
		s.handleError(w, r, lang, err)
		return
	}

	posts := s.resolver.ListPosts(ctx, lang)
	data := views.PostData{
		Post:    post,
		HTML:    html,
		TOC:     toc,
		Related: content.SelectRelated(posts, post.Slug, post.Tags(), relatedCount),
		Popular: content.PopularTags(posts, post.Tags(), popularCount),
	}
	if post.Language != lang {
		data.Notice = &views.LanguageNotice{
			Language: post.Language,
			Path:     "/" + string(post.Language) + "/blog/" + post.Slug,
		}
	}

	s.render(w, r, http.StatusOK, views.PostPage(s.page(r, lang, post.Title(), post.Frontmatter.Summary), data))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	lang, ok := locale.LanguageFromPath(r.URL.Path, s.langs)
	if !ok {
		lang = s.router.Resolve(r)
	}
	d := s.catalog.Dictionary(lang)
	s.render(w, r, http.StatusNotFound, views.NotFound(s.page(r, lang, d.Common.Errors.NotFound, "")))
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, lang i18n.Language, err error) {
	s.logger.Error(r.Context(), err, "Request failed", "path", r.URL.Path)
	d := s.catalog.Dictionary(lang)
	s.render(w, r, http.StatusInternalServerError, views.ErrorPage(s.page(r, lang, d.Common.Errors.Generic, "")))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	set := sitemap.Build(r.Context(), s.config.Site.BaseURL, s.langs, s.resolver)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := set.WriteTo(w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to write sitemap")
	}
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(sitemap.Robots(s.config.Site.BaseURL)))
}
