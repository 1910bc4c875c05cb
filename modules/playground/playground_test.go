package playground_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/modules/playground"
	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/httpserver"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/metrics"
	"github.com/dmitrymomot/formkit/pkg/submission"
)

const formsYAML = `
forms:
  - name: code
    title: Invite code
    fields:
      - name: code
        label: Code
        initial: "123"
        rules:
          - atLeast: {chars: 3}
          - numeric
  - name: signup
    title: Create an account
    fields:
      - name: password
        type: password
        rules:
          - atLeast: {chars: 8}
      - name: confirm
        type: password
        rules:
          - equalTo: {field: password}
      - name: tags
        array: true
        initial: [go]
        rules:
          - exactly: {value: go}
    form:
      - covalidate: {fields: [confirm]}
  - name: choices
    title: Pick one
    fields:
      - name: size
        type: radio
        options:
          - {value: one, label: One}
          - {value: two, label: Two}
        rules:
          - required
      - name: word
        initial: formkit
        linked:
          - {label: Reverse, transform: reverse}
`

type call struct {
	form    string
	valid   bool
	session string
	values  form.FieldMap
}

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []call
}

func (s *recordingSubmitter) Handler(formName string, valid bool) form.Handler {
	return func(ctx context.Context, fields form.FieldMap) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, call{
			form:    formName,
			valid:   valid,
			session: submission.SessionFromContext(ctx),
			values:  fields,
		})
		return nil
	}
}

func (s *recordingSubmitter) Calls() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

type staticLister []submission.Submission

func (l staticLister) List(_ context.Context, formName string, limit int) ([]submission.Submission, error) {
	var out []submission.Submission
	for _, s := range l {
		if s.Form == formName && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func newRegistry(t *testing.T, opts ...playground.RegistryOption) *playground.Registry {
	t.Helper()
	defs, err := formdef.Parse([]byte(formsYAML))
	require.NoError(t, err)
	reg, err := playground.NewRegistry(formdef.NewCompiler(), defs, opts...)
	require.NoError(t, err)
	return reg
}

func newHandler(t *testing.T, reg *playground.Registry, opts ...playground.ServiceOption) http.Handler {
	t.Helper()
	svc := playground.NewService(playground.Config{SettleTimeout: time.Second}, reg, opts...)
	return playground.Router(playground.RouterOptions{Forms: svc})
}

// client replays the session cookie of its first response.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == playground.DefaultConfig().SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) action(method, target string, signals map[string]any) *httptest.ResponseRecorder {
	var body io.Reader
	if signals != nil {
		data, err := json.Marshal(signals)
		require.NoError(c.t, err)
		body = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(playground.DataStarRequestHeader, "true")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func TestIndexAndSession(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}

	rec := c.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/forms", rec.Header().Get("Location"))

	rec = c.get("/forms/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/forms/code"`)
	assert.Contains(t, rec.Body.String(), "Create an account")
	require.NotNil(t, c.cookie)

	first := c.cookie.Value
	c.get("/forms/")
	assert.Equal(t, first, c.cookie.Value, "session cookie is reused")
}

func TestPageRendersInitialState(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}

	rec := c.get("/forms/code")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `id="field-code"`)
	assert.Contains(t, body, `value="123"`)
	assert.Contains(t, body, `@post(&#39;/forms/code/fields/code&#39;)`)
	assert.Contains(t, body, "All fields are valid")
	assert.NotContains(t, body, `class="error"`)

	assert.Equal(t, http.StatusNotFound, c.get("/forms/missing").Code)
}

func TestPlainChangeRedirects(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}
	c.get("/forms/code")

	rec := c.post("/forms/code/fields/code", url.Values{"code": {"ab"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/forms/code", rec.Header().Get("Location"))

	body := c.get("/forms/code").Body.String()
	assert.Contains(t, body, "Entry must be at least 3 characters long")
	assert.Contains(t, body, "Some fields need attention")

	t.Run("missing value", func(t *testing.T) {
		rec := c.post("/forms/code/fields/code", url.Values{"other": {"1"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := c.post("/forms/code/fields/nope", url.Values{"nope": {"1"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDataStarChangeStreamsFragments(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}
	c.get("/forms/code")

	rec := c.action(http.MethodPost, "/forms/code/fields/code", map[string]any{"code": "12a"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Contains(t, body, `id="field-code"`)
	assert.Contains(t, body, `id="form-status"`)
	assert.Contains(t, body, "Entered value must be a number")

	rec = c.action(http.MethodPost, "/forms/code/fields/code", map[string]any{"other": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRadioAndLinkedInputs(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}

	body := c.get("/forms/choices").Body.String()
	assert.Equal(t, 2, strings.Count(body, `type="radio"`))
	assert.Contains(t, body, `data-bind="size"`)
	assert.NotContains(t, body, " checked")
	assert.Contains(t, body, `value="formkit"`)
	assert.Contains(t, body, `name="word_reverse"`)
	assert.Contains(t, body, `value="tikmrof"`)

	t.Run("radio buttons share one field", func(t *testing.T) {
		rec := c.action(http.MethodPost, "/forms/choices/fields/size", map[string]any{"size": "two"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="two" checked`)
		assert.NotContains(t, rec.Body.String(), `value="one" checked`)
	})

	t.Run("linked input writes through its transform", func(t *testing.T) {
		rec := c.post("/forms/choices/fields/word?via=reverse", url.Values{"word_reverse": {"olleh"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		body := c.get("/forms/choices").Body.String()
		assert.Contains(t, body, `value="hello"`)
		assert.Contains(t, body, `value="olleh"`)
	})

	t.Run("unknown linked input", func(t *testing.T) {
		rec := c.post("/forms/choices/fields/word?via=upper", url.Values{"word_upper": {"X"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFocusAndBlur(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}
	c.get("/forms/code")

	rec := c.action(http.MethodPost, "/forms/code/fields/code/focus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "field active")

	rec = c.action(http.MethodPost, "/forms/code/fields/code/blur", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "field active")
}

func TestCovalidationAcrossFields(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}
	c.get("/forms/signup")

	c.post("/forms/signup/fields/password", url.Values{"password": {"secret-one"}})
	c.post("/forms/signup/fields/confirm", url.Values{"confirm": {"secret-one"}})
	assert.NotContains(t, c.get("/forms/signup").Body.String(), "Must match password")

	c.post("/forms/signup/fields/password", url.Values{"password": {"secret-two"}})
	assert.Contains(t, c.get("/forms/signup").Body.String(), "Must match password")
}

func TestArrayRoutes(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}

	body := c.get("/forms/signup").Body.String()
	assert.Contains(t, body, `id="array-tags"`)
	assert.Contains(t, body, `id="input-tags_0"`)
	assert.NotContains(t, body, `id="input-tags_1"`)

	require.Equal(t, http.StatusSeeOther, c.post("/forms/signup/arrays/tags", nil).Code)
	assert.Contains(t, c.get("/forms/signup").Body.String(), `id="input-tags_1"`)

	rec := c.action(http.MethodPost, "/forms/signup/arrays/tags/1", map[string]any{"tags_1": "rust"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Must be go")

	rec = c.action(http.MethodDelete, "/forms/signup/arrays/tags/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="input-tags_1"`)

	t.Run("bad index", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, c.action(http.MethodDelete, "/forms/signup/arrays/tags/x", nil).Code)
		assert.Equal(t, http.StatusNotFound, c.action(http.MethodDelete, "/forms/signup/arrays/tags/7", nil).Code)
		assert.Equal(t, http.StatusNotFound, c.action(http.MethodPost, "/forms/signup/arrays/password", nil).Code)
	})
}

func TestSubmitRunsSubmitters(t *testing.T) {
	t.Parallel()
	sub := &recordingSubmitter{}
	c := &client{t: t, h: newHandler(t, newRegistry(t, playground.WithSubmitters(sub)))}
	c.get("/forms/code")

	rec := c.action(http.MethodPost, "/forms/code/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Submitted")

	c.post("/forms/code/fields/code", url.Values{"code": {"ab"}})
	require.Equal(t, http.StatusSeeOther, c.post("/forms/code/submit", nil).Code)

	calls := sub.Calls()
	require.Len(t, calls, 2)
	assert.True(t, calls[0].valid)
	assert.Equal(t, "123", calls[0].values.String("code"))
	assert.Equal(t, c.cookie.Value, calls[0].session)
	assert.False(t, calls[1].valid)
	assert.Equal(t, "ab", calls[1].values.String("code"))

	body := c.get("/forms/code").Body.String()
	assert.Contains(t, body, "code: Entry must be at least 3 characters long")
}

func TestResetRestoresInitialValues(t *testing.T) {
	t.Parallel()
	c := &client{t: t, h: newHandler(t, newRegistry(t))}
	c.get("/forms/code")
	c.post("/forms/code/fields/code", url.Values{"code": {"ab"}})

	rec := c.action(http.MethodPost, "/forms/code/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="123"`)
	assert.Contains(t, rec.Body.String(), "All fields are valid")
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	h := newHandler(t, reg)
	alice := &client{t: t, h: h}
	bob := &client{t: t, h: h}

	alice.get("/forms/code")
	bob.get("/forms/code")
	alice.post("/forms/code/fields/code", url.Values{"code": {"ab"}})

	assert.Contains(t, alice.get("/forms/code").Body.String(), `value="ab"`)
	assert.Contains(t, bob.get("/forms/code").Body.String(), `value="123"`)
	assert.Equal(t, 2, reg.Sessions())
}

func TestSubmissions(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		c := &client{t: t, h: newHandler(t, newRegistry(t))}
		assert.Equal(t, http.StatusNotFound, c.get("/forms/code/submissions").Code)
	})

	t.Run("listed", func(t *testing.T) {
		lister := staticLister{
			{Form: "code", Valid: true, Values: map[string]any{"code": "123"}},
			{Form: "signup", Valid: false},
		}
		c := &client{t: t, h: newHandler(t, newRegistry(t), playground.WithLister(lister))}

		rec := c.get("/forms/code/submissions")
		require.Equal(t, http.StatusOK, rec.Code)
		var got []submission.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "123", got[0].Values["code"])

		assert.Equal(t, http.StatusNotFound, c.get("/forms/missing/submissions").Code)
	})
}

func TestTranslatedMessages(t *testing.T) {
	t.Parallel()
	tr, err := i18n.NewTranslator(context.Background(), i18n.MapAdapter{
		"en": {"playground": map[string]any{"submit": "Submit"}},
		"de": {
			"playground": map[string]any{"submit": "Absenden"},
			"validation": map[string]any{"short": "Mindestens %{chars} Zeichen"},
		},
	}, i18n.WithDefaultLanguage("en"))
	require.NoError(t, err)
	matcher := i18n.NewMatcher([]string{"en", "de"}, "en")

	reg := newRegistry(t, playground.WithTranslator(tr))
	c := &client{t: t, h: newHandler(t, reg, playground.WithLanguages(tr, matcher))}

	c.post("/forms/code/fields/code?lang=de", url.Values{"code": {"ab"}})
	body := c.get("/forms/code?lang=de").Body.String()
	assert.Contains(t, body, "Mindestens 3 Zeichen")
	assert.Contains(t, body, "Absenden")
	assert.Contains(t, body, `lang="de"`)
}

func TestRouterMountsOperationalRoutes(t *testing.T) {
	t.Parallel()
	promReg := prometheus.NewRegistry()
	collector := metrics.MustNew("formkit", promReg)

	reg := newRegistry(t, playground.WithObserver(collector))
	svc := playground.NewService(playground.Config{}, reg)
	h := playground.Router(playground.RouterOptions{
		Forms:       svc,
		Metrics:     collector.Handler(),
		Health:      httpserver.HealthHandler(nil),
		Middlewares: []func(http.Handler) http.Handler{collector.Middleware},
	})
	c := &client{t: t, h: h}

	require.Equal(t, http.StatusOK, c.get("/forms/code").Code)

	rec := c.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec = c.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `formkit_validations_total{field="code",form="code",outcome="valid"}`)
	assert.Contains(t, rec.Body.String(), "formkit_http_requests_total")
}

func TestRegistryRejectsBrokenDefinitions(t *testing.T) {
	t.Parallel()
	defs := []formdef.Definition{{
		Name:   "broken",
		Fields: []formdef.FieldDef{{Name: "a", Rules: []formdef.Rule{{Name: "nope"}}}},
	}}
	_, err := playground.NewRegistry(nil, defs)
	require.ErrorIs(t, err, playground.ErrFailedToCompile)

	_, err = playground.NewRegistry(nil, []formdef.Definition{{Name: "a"}, {Name: "a"}})
	require.ErrorIs(t, err, playground.ErrFailedToCompile)

	reg, err := playground.NewRegistry(nil, nil)
	require.NoError(t, err)
	_, err = reg.Open(context.Background(), "code", "s1", "en")
	require.ErrorIs(t, err, playground.ErrUnknownForm)
	_, err = reg.Open(context.Background(), "code", "", "en")
	require.ErrorIs(t, err, playground.ErrNoSession)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistryEvictsIdleForms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	reg := newRegistry(t, playground.WithIdleTTL(time.Minute), playground.WithRegistryClock(clock.Now))

	en, err := reg.Open(ctx, "code", "s1", "en")
	require.NoError(t, err)
	de, err := reg.Open(ctx, "code", "s1", "de")
	require.NoError(t, err)
	require.Equal(t, 2, reg.Sessions())

	code, err := en.Field("code")
	require.NoError(t, err)
	require.NoError(t, code.Change(ctx, "999"))
	require.NoError(t, en.Form.Wait(ctx))

	values, err := de.Form.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, "999", values.String("code"), "languages of one session share state")

	clock.Advance(30 * time.Second)
	_, err = reg.Open(ctx, "code", "s2", "en")
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Sessions())

	clock.Advance(45 * time.Second)
	_, err = reg.Open(ctx, "code", "s2", "en")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Sessions(), "s1 went unused for longer than the idle TTL")

	reopened, err := reg.Open(ctx, "code", "s1", "en")
	require.NoError(t, err)
	assert.NotSame(t, en, reopened)
	values, err = reopened.Form.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, "123", values.String("code"), "evicted state starts over from the initial value")
	assert.Equal(t, 2, reg.Sessions())
}
