// Package locale makes sure every content request carries a supported
// language as its first path segment, redirecting requests that do not.
package locale

import (
	"context"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/language"

	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/logging"
)

// CookieMaxAge is how long a language choice is remembered, in seconds.
const CookieMaxAge = 365 * 24 * 60 * 60

// Options configure a Router.
type Options struct {
	Languages        i18n.Set
	CookieName       string
	ExcludedPrefixes []string
	AgnosticPrefixes []string
	Logger           logging.Logger
}

// Router negotiates the request language and redirects paths without a
// language segment. It writes no state; only SwitchHandler sets the cookie.
type Router struct {
	langs      i18n.Set
	cookieName string
	excluded   []string
	agnostic   []string
	logger     logging.Logger
}

// NewRouter creates a Router.
func NewRouter(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.CookieName == "" {
		opts.CookieName = "NEXT_LOCALE"
	}

	return &Router{
		langs:      opts.Languages,
		cookieName: opts.CookieName,
		excluded:   opts.ExcludedPrefixes,
		agnostic:   opts.AgnosticPrefixes,
		logger:     opts.Logger.WithComponent("locale"),
	}
}

// Languages returns the supported language set.
func (rt *Router) Languages() i18n.Set {
	return rt.langs
}

// CookieName returns the name of the language cookie.
func (rt *Router) CookieName() string {
	return rt.cookieName
}

type languageKey struct{}

// WithLanguage stores lang in ctx.
func WithLanguage(ctx context.Context, lang i18n.Language) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// FromContext returns the language stored by the router, if any.
func FromContext(ctx context.Context) (i18n.Language, bool) {
	lang, ok := ctx.Value(languageKey{}).(i18n.Language)
	return lang, ok
}

// Handler wraps next with language negotiation. Excluded paths pass through
// untouched, paths with a supported language segment pass through with the
// language in the request context, everything else is redirected with 307
// to the same path (and query) under the resolved language.
func (rt *Router) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path

		if rt.isExcluded(p) {
			next.ServeHTTP(w, r)
			return
		}

		if lang, ok := rt.langs.Parse(firstSegment(p)); ok {
			if firstSegment(p) == string(lang) {
				next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
				return
			}
			// Supported language in the wrong case, e.g. /DE/blog
			rt.redirect(w, r, SwapLanguage(p, lang, rt.langs), "case")
			return
		}

		lang := rt.Resolve(r)
		reason := "missing"
		if hasPrefix(p, rt.agnostic) {
			reason = "agnostic"
		}
		rt.redirect(w, r, Localize(p, lang), reason)
	})
}

func (rt *Router) redirect(w http.ResponseWriter, r *http.Request, target, reason string) {
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	rt.logger.Debug(r.Context(), "locale redirect", "from", r.URL.Path, "to", target, "reason", reason)

	w.Header().Add("Vary", "Cookie")
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// Resolve picks the language for r: a supported cookie value, then the best
// supported Accept-Language entry, then the default language.
func (rt *Router) Resolve(r *http.Request) i18n.Language {
	if c, err := r.Cookie(rt.cookieName); err == nil {
		if lang, ok := rt.langs.Parse(c.Value); ok {
			return lang
		}
		rt.logger.Debug(r.Context(), "ignoring unsupported language cookie", "value", c.Value)
	}

	if lang, ok := ParseAcceptLanguage(r.Header.Get("Accept-Language"), rt.langs); ok {
		return lang
	}

	return rt.langs.Default
}

// ParseAcceptLanguage returns the highest weighted supported language in an
// Accept-Language header, comparing primary subtags only. Malformed or empty
// headers report false.
func ParseAcceptLanguage(header string, set i18n.Set) (i18n.Language, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", false
	}

	// Tags come back ordered by weight, highest first.
	for _, tag := range tags {
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		if lang := i18n.Language(base.String()); set.Contains(lang) {
			return lang, true
		}
	}

	return "", false
}

// Localize prefixes p with lang: "/" becomes "/en", "/about" becomes "/en/about".
func Localize(p string, lang i18n.Language) string {
	if p == "" || p == "/" {
		return "/" + string(lang)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "/" + string(lang) + p
}

// SwapLanguage replaces the language segment of p with lang, or prefixes p
// when it has none.
func SwapLanguage(p string, lang i18n.Language, set i18n.Set) string {
	seg := firstSegment(p)
	if _, ok := set.Parse(seg); !ok {
		return Localize(p, lang)
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(p, "/"), seg)
	return "/" + string(lang) + rest
}

// LanguageFromPath returns the language segment of p, if it is supported.
func LanguageFromPath(p string, set i18n.Set) (i18n.Language, bool) {
	seg := firstSegment(p)
	lang, ok := set.Parse(seg)
	if !ok || seg != string(lang) {
		return "", false
	}
	return lang, true
}

func (rt *Router) isExcluded(p string) bool {
	if hasPrefix(p, rt.excluded) {
		return true
	}
	// Files such as /favicon.png or /cv.pdf
	return strings.Contains(path.Base(p), ".")
}

// hasPrefix reports whether p equals a prefix or continues it with "/".
func hasPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix == "" {
			continue
		}
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
