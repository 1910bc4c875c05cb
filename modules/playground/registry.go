package playground

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// MessagePrefix is the translation key prefix of validation messages.
const MessagePrefix = "validation"

// StoreFactory returns the state store of one form in one session. The
// registry calls it once per form and session and shares the store between
// the languages of that session.
type StoreFactory func(formName, session string) (form.Store, error)

// MemoryStores returns a StoreFactory keeping state in process memory. The
// state is dropped together with the idle session.
func MemoryStores() StoreFactory {
	return func(string, string) (form.Store, error) {
		return form.NewMemoryStore(), nil
	}
}

// Submitter builds the submit handlers of a form. *submission.Repository
// implements it.
type Submitter interface {
	Handler(formName string, valid bool) form.Handler
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStores sets the store factory. Defaults to MemoryStores.
func WithStores(f StoreFactory) RegistryOption {
	return func(r *Registry) {
		if f != nil {
			r.stores = f
		}
	}
}

// WithObserver sets the observer every opened form reports to.
func WithObserver(o form.Observer) RegistryOption {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTranslator localises validation messages per language.
func WithTranslator(t *i18n.Translator) RegistryOption {
	return func(r *Registry) { r.translator = t }
}

// WithSubmitters adds submit handlers, called in order until one fails.
func WithSubmitters(s ...Submitter) RegistryOption {
	return func(r *Registry) { r.submitters = append(r.submitters, s...) }
}

// WithIdleTTL sets how long a live form may go unused before it is evicted.
// Non-positive values keep the default of DefaultConfig().SessionTTL.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

// WithRegistryClock replaces time.Now.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRegistryLogger sets the logger handed to opened forms.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger.OrDiscard(l) }
}

type compiledKey struct {
	form, lang string
}

type liveKey struct {
	form, session, lang string
}

type storeKey struct {
	form, session string
}

func (k liveKey) store() storeKey {
	return storeKey{form: k.form, session: k.session}
}

// Registry keeps the live forms of every session.
type Registry struct {
	compiler   *formdef.Compiler
	defs       []formdef.Definition
	index      map[string]int
	stores     StoreFactory
	observer   form.Observer
	translator *i18n.Translator
	submitters []Submitter
	logger     *slog.Logger
	idleTTL    time.Duration
	now        func() time.Time

	mu        sync.Mutex
	compiled  map[compiledKey]formdef.Compiled
	live      map[liveKey]*Live
	store     map[storeKey]form.Store
	nextSweep time.Time
}

// NewRegistry returns a registry serving defs. Every definition is compiled
// once up front so broken rules fail at startup.
func NewRegistry(compiler *formdef.Compiler, defs []formdef.Definition, opts ...RegistryOption) (*Registry, error) {
	if compiler == nil {
		compiler = formdef.NewCompiler()
	}
	r := &Registry{
		compiler: compiler,
		defs:     defs,
		index:    make(map[string]int, len(defs)),
		stores:   MemoryStores(),
		observer: form.NopObserver{},
		logger:   logger.Discard(),
		idleTTL:  DefaultConfig().SessionTTL,
		now:      time.Now,
		compiled: make(map[compiledKey]formdef.Compiled),
		live:     make(map[liveKey]*Live),
		store:    make(map[storeKey]form.Store),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, d := range defs {
		if _, ok := r.index[d.Name]; ok {
			return nil, errors.Join(ErrFailedToCompile, fmt.Errorf("duplicate form %q", d.Name))
		}
		r.index[d.Name] = i
		if _, err := compiler.Compile(d); err != nil {
			return nil, errors.Join(ErrFailedToCompile, fmt.Errorf("form %q: %w", d.Name, err))
		}
	}
	return r, nil
}

// Definitions returns the served definitions in file order.
func (r *Registry) Definitions() []formdef.Definition {
	return r.defs
}

// Definition returns the definition of the named form.
func (r *Registry) Definition(name string) (formdef.Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return formdef.Definition{}, false
	}
	return r.defs[i], true
}

// Open returns the live form of a session, creating and mounting it on
// first use. Messages are localised for lang when a translator is set.
// Live forms unused for longer than the idle TTL are evicted along with
// their store.
func (r *Registry) Open(ctx context.Context, formName, session, lang string) (*Live, error) {
	if session == "" {
		return nil, ErrNoSession
	}
	def, ok := r.Definition(formName)
	if !ok {
		return nil, errors.Join(ErrUnknownForm, fmt.Errorf("%q", formName))
	}

	key := liveKey{form: formName, session: session, lang: lang}
	now := r.now()

	r.mu.Lock()
	r.sweep(ctx, now)
	l, ok := r.live[key]
	if ok {
		l.lastSeen = now
		r.mu.Unlock()
		return l, nil
	}
	store, err := r.sessionStore(key.store())
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// mounting may hit a remote store, so it runs unlocked
	l, err = r.build(ctx, def, store, session, lang)
	if err != nil {
		return nil, err
	}
	l.lastSeen = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.live[key]; ok {
		existing.lastSeen = now
		return existing, nil
	}
	r.store[key.store()] = store
	r.live[key] = l
	return l, nil
}

// sessionStore returns the store shared by every language of a form in one
// session. It must be called with r.mu held.
func (r *Registry) sessionStore(key storeKey) (form.Store, error) {
	if s, ok := r.store[key]; ok {
		return s, nil
	}
	s, err := r.stores(key.form, key.session)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	r.store[key] = s
	return s, nil
}

// sweep evicts idle live forms. It runs at most twice per idle TTL and
// must be called with r.mu held.
func (r *Registry) sweep(ctx context.Context, now time.Time) {
	if now.Before(r.nextSweep) {
		return
	}
	r.nextSweep = now.Add(r.idleTTL / 2)

	orphaned := make(map[storeKey]struct{})
	for key, l := range r.live {
		if now.Sub(l.lastSeen) > r.idleTTL {
			delete(r.live, key)
			orphaned[key.store()] = struct{}{}
		}
	}
	if len(orphaned) == 0 {
		return
	}
	for key := range r.live {
		delete(orphaned, key.store())
	}
	for key := range orphaned {
		delete(r.store, key)
	}
	r.logger.DebugContext(ctx, "idle forms evicted", slog.Int("stores", len(orphaned)), slog.Int("live", len(r.live)))
}

// Sessions returns the number of live forms.
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *Registry) build(ctx context.Context, def formdef.Definition, store form.Store, session, lang string) (*Live, error) {
	compiled, err := r.compile(def, lang)
	if err != nil {
		return nil, err
	}

	opts := append(compiled.Options(),
		form.WithStore(store),
		form.WithObserver(r.observer),
		form.WithLogger(r.logger),
	)
	if h := r.handler(def.Name, true); h != nil {
		opts = append(opts, form.WithOnSubmit(h))
	}
	if h := r.handler(def.Name, false); h != nil {
		opts = append(opts, form.WithOnSubmitFailed(h))
	}

	f, err := form.New(def.Name, opts...)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}

	l := &Live{
		Definition: def,
		Form:       f,
		Session:    session,
		Lang:       lang,
		fields:     make(map[string]*form.Field),
		arrays:     make(map[string]*form.FieldArray),
	}
	for _, fd := range def.Fields {
		if fd.Array {
			a, err := f.FieldArray(ctx, fd.Name)
			if err != nil {
				return nil, errors.Join(ErrFailedToOpen, err)
			}
			l.arrays[fd.Name] = a
			continue
		}
		fl, err := f.Field(ctx, fd.Name)
		if err != nil {
			return nil, errors.Join(ErrFailedToOpen, err)
		}
		l.fields[fd.Name] = fl
	}

	r.logger.DebugContext(ctx, "form opened",
		logger.Form(def.Name),
		logger.Session(session),
		slog.String("lang", lang),
	)
	return l, nil
}

func (r *Registry) compile(def formdef.Definition, lang string) (formdef.Compiled, error) {
	key := compiledKey{form: def.Name, lang: lang}
	r.mu.Lock()
	c, ok := r.compiled[key]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	var opts []validation.Option
	if r.translator != nil {
		opts = append(opts, validation.WithFormatter(validation.TranslatorFormatter(r.translator, lang, MessagePrefix)))
	}
	c, err := r.compiler.Compile(def, opts...)
	if err != nil {
		return formdef.Compiled{}, errors.Join(ErrFailedToCompile, err)
	}

	r.mu.Lock()
	r.compiled[key] = c
	r.mu.Unlock()
	return c, nil
}

// handler chains the submitters' handlers for one outcome.
func (r *Registry) handler(formName string, valid bool) form.Handler {
	handlers := make([]form.Handler, 0, len(r.submitters))
	for _, s := range r.submitters {
		if h := s.Handler(formName, valid); h != nil {
			handlers = append(handlers, h)
		}
	}
	if len(handlers) == 0 {
		return nil
	}
	return func(ctx context.Context, fields form.FieldMap) error {
		for _, h := range handlers {
			if err := h(ctx, fields); err != nil {
				return err
			}
		}
		return nil
	}
}

// Live is a mounted form of one session.
type Live struct {
	Definition formdef.Definition
	Form       *form.Form
	Session    string
	Lang       string

	fields   map[string]*form.Field
	arrays   map[string]*form.FieldArray
	lastSeen time.Time
}

// Field returns the accessor of a plain field.
func (l *Live) Field(name string) (*form.Field, error) {
	fl, ok := l.fields[name]
	if !ok {
		return nil, errors.Join(ErrUnknownField, fmt.Errorf("%q in form %q", name, l.Definition.Name))
	}
	return fl, nil
}

// Array returns the accessor of an array field.
func (l *Live) Array(name string) (*form.FieldArray, error) {
	a, ok := l.arrays[name]
	if !ok {
		return nil, errors.Join(ErrUnknownField, fmt.Errorf("array %q in form %q", name, l.Definition.Name))
	}
	return a, nil
}
