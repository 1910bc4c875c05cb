package playground

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/submission"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// Lister lists stored submissions. *submission.Repository implements it.
type Lister interface {
	List(ctx context.Context, formName string, limit int) ([]submission.Submission, error)
}

// Service serves the live forms of a Registry.
type Service struct {
	cfg        Config
	registry   *Registry
	views      Views
	translator *i18n.Translator
	matcher    *i18n.Matcher
	lister     Lister
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithViews replaces the default views. Nil entries keep their default.
func WithViews(v Views) ServiceOption {
	return func(s *Service) { s.views = v.withDefaults() }
}

// WithLanguages negotiates the request language with m and translates the
// interface texts with t.
func WithLanguages(t *i18n.Translator, m *i18n.Matcher) ServiceOption {
	return func(s *Service) {
		s.translator = t
		s.matcher = m
	}
}

// WithLister exposes stored submissions under /{form}/submissions.
func WithLister(l Lister) ServiceOption {
	return func(s *Service) { s.lister = l }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger.OrDiscard(l) }
}

// NewService returns the playground service.
//
//	registry, _ := playground.NewRegistry(compiler, defs, playground.WithObserver(collector))
//	svc := playground.NewService(cfg, registry)
//
//	r := chi.NewRouter()
//	r.Mount("/", playground.Router(playground.RouterOptions{Forms: svc}))
func NewService(cfg Config, registry *Registry, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:      cfg.withDefaults(),
		registry: registry,
		views:    DefaultViews(),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("playground"))
	return s
}

// Handle returns the form routes, meant to be mounted under /forms.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMiddleware(s.cfg))
	if s.matcher != nil {
		r.Use(i18n.Middleware(s.matcher))
	}

	r.Get("/", s.wrap(s.index))
	r.Route("/{form}", func(r chi.Router) {
		r.Get("/", s.wrap(s.page))
		r.Post("/fields/{field}", s.wrap(s.change))
		r.Post("/fields/{field}/focus", s.wrap(s.focus))
		r.Post("/fields/{field}/blur", s.wrap(s.blur))
		r.Post("/arrays/{field}", s.wrap(s.add))
		r.Post("/arrays/{field}/{index}", s.wrap(s.changeElement))
		r.Post("/arrays/{field}/{index}/focus", s.wrap(s.focusElement))
		r.Post("/arrays/{field}/{index}/blur", s.wrap(s.blurElement))
		r.Delete("/arrays/{field}/{index}", s.wrap(s.remove))
		r.Post("/submit", s.wrap(s.submit))
		r.Post("/reset", s.wrap(s.reset))
		r.Get("/submissions", s.wrap(s.submissions))
	})
	return r
}

type action func(w http.ResponseWriter, r *http.Request) error

// wrap answers action errors with their mapped status. Render errors are
// only logged since the response may already be partly written.
func (s *Service) wrap(a action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := a(w, r)
		if err == nil {
			return
		}
		if errors.Is(err, ErrFailedToRender) {
			s.logger.ErrorContext(r.Context(), "render failed", logger.Error(err))
			return
		}
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), logger.Error(err))
		} else {
			s.logger.DebugContext(r.Context(), "request rejected", slog.String("path", r.URL.Path), slog.Int("status", status), logger.Error(err))
		}
		http.Error(w, http.StatusText(status), status)
	}
}

func (s *Service) open(r *http.Request) (*Live, error) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		return nil, ErrNoSession
	}
	return s.registry.Open(r.Context(), chi.URLParam(r, "form"), session, i18n.Locale(r.Context()))
}

// translate returns the interface texts for lang.
func (s *Service) translate(lang string) Translate {
	return func(key, fallback string) string {
		if s.translator == nil || !s.translator.HasTranslation(lang, key) {
			return fallback
		}
		return s.translator.T(lang, key)
	}
}

// settle waits for pending validations, at most SettleTimeout. A timeout
// renders the fragments still validating.
func (s *Service) settle(ctx context.Context, l *Live) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SettleTimeout)
	defer cancel()
	if err := l.Form.Wait(ctx); err != nil {
		s.logger.WarnContext(ctx, "validation did not settle", logger.Form(l.Definition.Name), logger.Error(err))
	}
}

func (s *Service) base(l *Live) string {
	return "/forms/" + l.Definition.Name
}

// fragment renders one field or array of l.
func (s *Service) fragment(ctx context.Context, l *Live, fd formdef.FieldDef) (templ.Component, error) {
	t := s.translate(l.Lang)
	if fd.Array {
		a, err := l.Array(fd.Name)
		if err != nil {
			return nil, err
		}
		props, err := a.Props(ctx)
		if err != nil {
			return nil, err
		}
		return s.views.Array(ArrayParams{Base: s.base(l), Def: fd, Props: props, T: t}), nil
	}

	fl, err := l.Field(fd.Name)
	if err != nil {
		return nil, err
	}
	props, err := fl.Props(ctx)
	if err != nil {
		return nil, err
	}
	return s.views.Field(FieldParams{Base: s.base(l), Def: fd, Props: props, T: t}), nil
}

func (s *Service) status(ctx context.Context, l *Live) (templ.Component, error) {
	props, err := l.Form.Props(ctx)
	if err != nil {
		return nil, err
	}
	return s.views.Status(StatusParams{
		Base:       s.base(l),
		Definition: l.Definition,
		Props:      props,
		T:          s.translate(l.Lang),
	}), nil
}

// fragments renders every field followed by the status.
func (s *Service) fragments(ctx context.Context, l *Live) ([]templ.Component, error) {
	out := make([]templ.Component, 0, len(l.Definition.Fields)+1)
	for _, fd := range l.Definition.Fields {
		c, err := s.fragment(ctx, l, fd)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	st, err := s.status(ctx, l)
	if err != nil {
		return nil, err
	}
	return append(out, st), nil
}

// respond answers a state change. Datastar requests get the touched
// fragment at once and every fragment after validation settled, since
// covalidation may change other fields. Plain requests are redirected back
// to the page.
func (s *Service) respond(w http.ResponseWriter, r *http.Request, l *Live, touched string) error {
	ctx := r.Context()
	if !IsDataStar(r) {
		s.settle(ctx, l)
		http.Redirect(w, r, s.base(l), http.StatusSeeOther)
		return nil
	}

	st := newStream(w, r)
	if fd, ok := l.Definition.Field(touched); ok {
		c, err := s.fragment(ctx, l, fd)
		if err != nil {
			return errors.Join(ErrFailedToRender, err)
		}
		if err := st.patch(c); err != nil {
			return err
		}
	}

	s.settle(ctx, l)
	all, err := s.fragments(ctx, l)
	if err != nil {
		return errors.Join(ErrFailedToRender, err)
	}
	return st.patch(all...)
}

func (s *Service) index(w http.ResponseWriter, r *http.Request) error {
	t := s.translate(i18n.Locale(r.Context()))
	return page(r.Context(), w, s.views.Index(IndexParams{Forms: s.registry.Definitions(), T: t}))
}

func (s *Service) page(w http.ResponseWriter, r *http.Request) error {
	l, err := s.open(r)
	if err != nil {
		return err
	}
	s.settle(r.Context(), l)

	all, err := s.fragments(r.Context(), l)
	if err != nil {
		return err
	}
	return page(r.Context(), w, s.views.Page(PageParams{
		Definition: l.Definition,
		Lang:       l.Lang,
		Body:       all[:len(all)-1],
		Status:     all[len(all)-1],
		T:          s.translate(l.Lang),
	}))
}

func (s *Service) field(r *http.Request) (*Live, *form.Field, error) {
	l, err := s.open(r)
	if err != nil {
		return nil, nil, err
	}
	fl, err := l.Field(chi.URLParam(r, "field"))
	if err != nil {
		return nil, nil, err
	}
	return l, fl, nil
}

func (s *Service) change(w http.ResponseWriter, r *http.Request) error {
	l, fl, err := s.field(r)
	if err != nil {
		return err
	}
	value, err := s.fieldValue(r, l, fl.Name())
	if err != nil {
		return err
	}
	if err := fl.Change(r.Context(), value); err != nil {
		return err
	}
	return s.respond(w, r, l, fl.Name())
}

// fieldValue reads the new value of a field. With ?via it comes from the
// linked input using that transform and is mapped back first.
func (s *Service) fieldValue(r *http.Request, l *Live, name string) (any, error) {
	via := r.URL.Query().Get("via")
	if via == "" {
		return readSignal(r, name)
	}
	fd, _ := l.Definition.Field(name)
	link, ok := fd.Link(via)
	if !ok {
		return nil, errors.Join(ErrInvalidSignals, fmt.Errorf("no linked input %q on %q", via, name))
	}
	v, err := readSignal(r, LinkedSignal(name, via))
	if err != nil {
		return nil, err
	}
	return link.Restore(validation.Stringify(v)), nil
}

func (s *Service) focus(w http.ResponseWriter, r *http.Request) error {
	l, fl, err := s.field(r)
	if err != nil {
		return err
	}
	if err := fl.Focus(r.Context()); err != nil {
		return err
	}
	return s.respond(w, r, l, fl.Name())
}

func (s *Service) blur(w http.ResponseWriter, r *http.Request) error {
	l, fl, err := s.field(r)
	if err != nil {
		return err
	}
	if err := fl.Blur(r.Context()); err != nil {
		return err
	}
	return s.respond(w, r, l, fl.Name())
}

func (s *Service) array(r *http.Request) (*Live, *form.FieldArray, error) {
	l, err := s.open(r)
	if err != nil {
		return nil, nil, err
	}
	a, err := l.Array(chi.URLParam(r, "field"))
	if err != nil {
		return nil, nil, err
	}
	return l, a, nil
}

func (s *Service) element(r *http.Request) (*Live, *form.FieldArray, int, error) {
	l, a, err := s.array(r)
	if err != nil {
		return nil, nil, 0, err
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		return nil, nil, 0, errors.Join(ErrInvalidIndex, err)
	}
	return l, a, i, nil
}

func (s *Service) add(w http.ResponseWriter, r *http.Request) error {
	l, a, err := s.array(r)
	if err != nil {
		return err
	}
	if err := a.Add(r.Context()); err != nil {
		return err
	}
	return s.respond(w, r, l, a.Name())
}

func (s *Service) changeElement(w http.ResponseWriter, r *http.Request) error {
	l, a, i, err := s.element(r)
	if err != nil {
		return err
	}
	value, err := readSignal(r, ElementSignal(a.Name(), i))
	if err != nil {
		return err
	}
	if err := a.Change(r.Context(), i, value); err != nil {
		return err
	}
	return s.respond(w, r, l, a.Name())
}

func (s *Service) focusElement(w http.ResponseWriter, r *http.Request) error {
	l, a, i, err := s.element(r)
	if err != nil {
		return err
	}
	if err := a.Focus(r.Context(), i); err != nil {
		return err
	}
	return s.respond(w, r, l, a.Name())
}

func (s *Service) blurElement(w http.ResponseWriter, r *http.Request) error {
	l, a, i, err := s.element(r)
	if err != nil {
		return err
	}
	if err := a.Blur(r.Context(), i); err != nil {
		return err
	}
	return s.respond(w, r, l, a.Name())
}

func (s *Service) remove(w http.ResponseWriter, r *http.Request) error {
	l, a, i, err := s.element(r)
	if err != nil {
		return err
	}
	if err := a.Remove(r.Context(), i); err != nil {
		return err
	}
	return s.respond(w, r, l, a.Name())
}

// submit decides on settled validations and runs the submitters with the
// session in the context.
func (s *Service) submit(w http.ResponseWriter, r *http.Request) error {
	l, err := s.open(r)
	if err != nil {
		return err
	}
	s.settle(r.Context(), l)

	ctx := submission.WithSession(r.Context(), l.Session)
	if err := l.Form.Submit(ctx); err != nil {
		return err
	}
	return s.respond(w, r, l, "")
}

func (s *Service) reset(w http.ResponseWriter, r *http.Request) error {
	l, err := s.open(r)
	if err != nil {
		return err
	}
	if err := l.Form.Reset(r.Context()); err != nil {
		return err
	}
	return s.respond(w, r, l, "")
}

func (s *Service) submissions(w http.ResponseWriter, r *http.Request) error {
	if s.lister == nil {
		return ErrNoSubmissions
	}
	name := chi.URLParam(r, "form")
	if _, ok := s.registry.Definition(name); !ok {
		return ErrUnknownForm
	}
	list, err := s.lister.List(r.Context(), name, s.cfg.SubmissionsLimit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []submission.Submission{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		return errors.Join(ErrFailedToRender, err)
	}
	return nil
}
