package i18n_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/formkit/pkg/i18n"
)

func TestMatcher(t *testing.T) {
	t.Parallel()
	m := i18n.NewMatcher([]string{"en", "de", "uk"}, "en")

	cases := map[string]string{
		"":                         "en",
		"de":                       "de",
		"de-AT,de;q=0.9":           "de",
		"fr-FR,uk;q=0.8,en;q=0.5":  "uk",
		"ja":                       "en",
		"not a valid header;;;q=x": "en",
	}
	for header, want := range cases {
		t.Run(header, func(t *testing.T) {
			assert.Equal(t, want, m.Match(header))
		})
	}

	assert.True(t, m.Supports("uk"))
	assert.False(t, m.Supports("fr"))
}

func TestMatcherFallback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "de", i18n.NewMatcher([]string{"de", "en"}, "").Match("ja"))
	assert.Equal(t, i18n.DefaultLanguage, i18n.NewMatcher(nil, "").Match("de"))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	m := i18n.NewMatcher([]string{"en", "de"}, "en")

	var got string
	h := i18n.Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.Locale(r.Context())
	}))

	serve := func(r *http.Request) string {
		h.ServeHTTP(httptest.NewRecorder(), r)
		return got
	}

	r := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
	assert.Equal(t, "de", serve(r))

	r = httptest.NewRequest(http.MethodGet, "/?lang=fr", nil)
	r.Header.Set("Accept-Language", "de-CH")
	assert.Equal(t, "de", serve(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: i18n.DefaultCookieName, Value: "de"})
	r.Header.Set("Accept-Language", "en")
	assert.Equal(t, "de", serve(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "en", serve(r))
}
