package i18n

import (
	"net/http"
)

// Default request parameters inspected by Middleware.
const (
	DefaultQueryParam = "lang"
	DefaultCookieName = "lang"
)

// Middleware stores the request language in the context (see Locale).
//
// An explicit ?lang= query parameter wins, then the lang cookie, then the
// Accept-Language header negotiated by m. Explicit choices are only honoured
// when m supports them.
func Middleware(m *Matcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), m.FromRequest(r))))
		})
	}
}

// FromRequest resolves the language of r.
func (m *Matcher) FromRequest(r *http.Request) string {
	if lang := r.URL.Query().Get(DefaultQueryParam); lang != "" && m.Supports(lang) {
		return lang
	}
	if c, err := r.Cookie(DefaultCookieName); err == nil && m.Supports(c.Value) {
		return c.Value
	}
	return m.Match(r.Header.Get("Accept-Language"))
}
