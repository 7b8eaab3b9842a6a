package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/i18n"
)

var testExcluded = []string{
	"/api", "/static", "/assets", "/images", "/fonts", "/ws", "/healthz",
	"/favicon.ico", "/robots.txt", "/sitemap.xml",
}

func newTestRouter() *Router {
	return NewRouter(Options{
		Languages:        i18n.DefaultSet(),
		CookieName:       "NEXT_LOCALE",
		ExcludedPrefixes: testExcluded,
		AgnosticPrefixes: []string{"/blog"},
	})
}

// echo records the language seen by the wrapped handler.
func echo(seen *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang, ok := FromContext(r.Context())
		if ok {
			*seen = string(lang)
		} else {
			*seen = "none"
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		cookie   string
		accept   string
		status   int
		location string
		lang     string
	}{
		{name: "root with accept-language", target: "/", accept: "de-DE,en;q=0.8", status: 307, location: "/de"},
		{name: "root without signals", target: "/", status: 307, location: "/en"},
		{name: "root with cookie", target: "/", cookie: "de", accept: "en", status: 307, location: "/de"},
		{name: "unsupported cookie ignored", target: "/", cookie: "fr", accept: "de", status: 307, location: "/de"},
		{name: "localized path passes", target: "/en/about", accept: "de", status: 200, lang: "en"},
		{name: "localized root passes", target: "/de", status: 200, lang: "de"},
		{name: "agnostic blog keeps query", target: "/blog?tag=x", cookie: "en", status: 307, location: "/en/blog?tag=x"},
		{name: "agnostic blog post", target: "/blog/my-post", accept: "de", status: 307, location: "/de/blog/my-post"},
		{name: "missing segment", target: "/about", accept: "fr, de;q=0.5", status: 307, location: "/de/about"},
		{name: "unsupported segment", target: "/fr/about", status: 307, location: "/en/fr/about"},
		{name: "wrong case segment", target: "/DE/blog", status: 307, location: "/de/blog"},
		{name: "api excluded", target: "/api/language", status: 200, lang: "none"},
		{name: "static excluded", target: "/static/css/site.css", status: 200, lang: "none"},
		{name: "robots excluded", target: "/robots.txt", status: 200, lang: "none"},
		{name: "file extension excluded", target: "/cv.pdf", status: 200, lang: "none"},
		{name: "prefix needs boundary", target: "/apiary", status: 307, location: "/en/apiary"},
		{name: "malformed header falls through", target: "/", accept: "de;q=abc", status: 307, location: "/en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := newTestRouter().Handler(echo(&seen))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "NEXT_LOCALE", Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusTemporaryRedirect {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
				assert.Empty(t, seen, "redirects must not reach the page handler")
				assert.Empty(t, rec.Result().Cookies(), "the router never writes cookies")
				assert.Contains(t, rec.Header().Values("Vary"), "Accept-Language")
				return
			}
			assert.Equal(t, tt.lang, seen)
		})
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	set := i18n.DefaultSet()

	tests := []struct {
		header string
		want   i18n.Language
		ok     bool
	}{
		{"de-DE,en;q=0.8", i18n.German, true},
		{"en-US,en;q=0.9,de;q=0.8", i18n.English, true},
		{"fr-FR, de;q=0.3, en;q=0.2", i18n.German, true},
		{"en;q=0.1, de;q=0.9", i18n.German, true},
		{"de;q=0, en;q=0.5", i18n.English, true},
		{"DE-at", i18n.German, true},
		{"*", "", false},
		{"fr, es", "", false},
		{"", "", false},
		{"   ", "", false},
		{"de;q=abc", "", false},
		{";;;", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := ParseAcceptLanguage(tt.header, set)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	rt := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, i18n.English, rt.Resolve(req))

	req.Header.Set("Accept-Language", "de")
	assert.Equal(t, i18n.German, rt.Resolve(req))

	req.AddCookie(&http.Cookie{Name: "NEXT_LOCALE", Value: "en"})
	assert.Equal(t, i18n.English, rt.Resolve(req))
}

func TestPathHelpers(t *testing.T) {
	set := i18n.DefaultSet()

	assert.Equal(t, "/en", Localize("/", i18n.English))
	assert.Equal(t, "/en", Localize("", i18n.English))
	assert.Equal(t, "/de/about", Localize("/about", i18n.German))
	assert.Equal(t, "/de/blog", Localize("blog", i18n.German))

	assert.Equal(t, "/de/blog/post", SwapLanguage("/en/blog/post", i18n.German, set))
	assert.Equal(t, "/de", SwapLanguage("/en", i18n.German, set))
	assert.Equal(t, "/en/about", SwapLanguage("/about", i18n.English, set))

	lang, ok := LanguageFromPath("/de/blog", set)
	assert.True(t, ok)
	assert.Equal(t, i18n.German, lang)
	_, ok = LanguageFromPath("/DE/blog", set)
	assert.False(t, ok)
	_, ok = LanguageFromPath("/blog", set)
	assert.False(t, ok)
}

func TestSwitchHandler(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		method   string
		status   int
		location string
		cookie   string
	}{
		{name: "switch and swap", target: "/api/language?lang=de&next=/en/blog/post", status: 303, location: "/de/blog/post", cookie: "de"},
		{name: "keeps query", target: "/api/language?lang=en&next=%2Fde%2Fblog%3Ftag%3Dgo", status: 303, location: "/en/blog?tag=go", cookie: "en"},
		{name: "no next", target: "/api/language?lang=de", status: 303, location: "/de", cookie: "de"},
		{name: "open redirect rejected", target: "/api/language?lang=de&next=//evil.example", status: 303, location: "/de", cookie: "de"},
		{name: "absolute url rejected", target: "/api/language?lang=en&next=https://evil.example/", status: 303, location: "/en", cookie: "en"},
		{name: "unsupported language", target: "/api/language?lang=fr", status: 400},
		{name: "missing language", target: "/api/language", status: 400},
		{name: "wrong method", target: "/api/language?lang=de", method: http.MethodDelete, status: 405},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := httptest.NewRecorder()
			newTestRouter().SwitchHandler().ServeHTTP(rec, httptest.NewRequest(method, tt.target, nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusSeeOther {
				assert.Empty(t, rec.Result().Cookies())
				return
			}

			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, "NEXT_LOCALE", c.Name)
			assert.Equal(t, tt.cookie, c.Value)
			assert.Equal(t, "/", c.Path)
			assert.Equal(t, CookieMaxAge, c.MaxAge)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		})
	}
}
