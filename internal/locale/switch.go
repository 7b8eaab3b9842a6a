package locale

import (
	"net/http"

	"github.com/systemlogs/folio/internal/validation"
)

// SwitchHandler persists an explicit language choice:
//
//	GET /api/language?lang=de&next=/en/blog/post
//
// It stores lang in the language cookie and redirects to next with its
// language segment replaced. Unsafe or missing next values redirect to the
// language's home page.
func (rt *Router) SwitchHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		lang, ok := rt.langs.Parse(r.FormValue("lang"))
		if !ok {
			http.Error(w, "unsupported language", http.StatusBadRequest)
			return
		}

		target := "/" + string(lang)
		if next := r.FormValue("next"); next != "" {
			if err := validation.ValidateLocalRedirect(next); err != nil {
				rt.logger.Warn(r.Context(), err, "rejected language switch target", "next", next)
			} else {
				target = SwapLanguage(next, lang, rt.langs)
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     rt.cookieName,
			Value:    string(lang),
			Path:     "/",
			MaxAge:   CookieMaxAge,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
			HttpOnly: true,
		})

		rt.logger.Debug(r.Context(), "language switched", "language", lang, "next", target)
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}
