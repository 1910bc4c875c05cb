// Command formdemo serves the forms of a definitions file with live
// validation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/formkit/modules/playground"
	"github.com/dmitrymomot/formkit/pkg/config"
	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/httpserver"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/metrics"
	"github.com/dmitrymomot/formkit/pkg/redisstore"
	"github.com/dmitrymomot/formkit/pkg/submission"
)

// Config is the application configuration.
type Config struct {
	Env             string `env:"APP_ENV" envDefault:"development"`
	Name            string `env:"APP_NAME" envDefault:"formkit"`
	FormsFile       string `env:"FORMS_FILE"`       // FormsFile overrides the bundled form definitions.
	TranslationsDir string `env:"TRANSLATIONS_DIR"` // TranslationsDir overrides the bundled catalogues.
	DefaultLang     string `env:"DEFAULT_LANG" envDefault:"en"`
	MetricsPrefix   string `env:"METRICS_NAMESPACE" envDefault:"formkit"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfg      Config
		httpCfg  httpserver.Config
		redisCfg redisstore.Config
		pgCfg    submission.Config
		playCfg  playground.Config
	)
	if err := errors.Join(
		config.Load(&cfg),
		config.Load(&httpCfg),
		config.Load(&redisCfg),
		config.Load(&pgCfg),
		config.Load(&playCfg),
	); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(playground.LogSession, requestID),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defs, err := loadForms(cfg.FormsFile)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}

	translator, err := newTranslator(ctx, cfg.TranslationsDir,
		i18n.WithDefaultLanguage(cfg.DefaultLang),
		i18n.WithLogger(log),
		i18n.WithMissingTranslationsLogging(cfg.Env != logger.EnvProduction),
	)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	matcher := i18n.NewMatcher(translator.SupportedLanguages(), cfg.DefaultLang)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.New(cfg.MetricsPrefix, promReg)
	if err != nil {
		return err
	}

	var (
		checks      []httpserver.Check
		compileOpts []formdef.CompilerOption
		registryOpts = []playground.RegistryOption{
			playground.WithObserver(collector),
			playground.WithTranslator(translator),
			playground.WithRegistryLogger(log),
			playground.WithIdleTTL(playCfg.SessionTTL),
		}
		serviceOpts = []playground.ServiceOption{
			playground.WithLanguages(translator, matcher),
			playground.WithLogger(log),
		}
	)

	if redisCfg.Enabled() {
		client, err := redisstore.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		factory := redisstore.NewFactory(client, redisCfg)
		claims, err := newClaimer(client, factory, defs)
		if err != nil {
			return err
		}
		compileOpts = append(compileOpts, formdef.WithRule(uniqueRuleName, uniqueRule(client, factory)))
		registryOpts = append(registryOpts,
			playground.WithStores(func(formName, session string) (form.Store, error) {
				s, err := factory.Store(formName, session)
				if err != nil {
					return nil, err
				}
				return s, nil
			}),
			playground.WithSubmitters(claims),
		)
		checks = append(checks, httpserver.Check{Name: "redis", Probe: redisstore.Healthcheck(client)})
		log.InfoContext(ctx, "form state kept in redis", slog.String("prefix", redisCfg.KeyPrefix))
	} else {
		compileOpts = append(compileOpts, formdef.WithRule(uniqueRuleName, skipUnique))
		log.WarnContext(ctx, "REDIS_URL is not set: form state stays in memory and uniqueness is not checked")
	}

	if pgCfg.Enabled() {
		pool, err := submission.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := submission.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}
		repo := submission.NewRepository(pool)
		registryOpts = append(registryOpts, playground.WithSubmitters(repo))
		serviceOpts = append(serviceOpts, playground.WithLister(repo))
		checks = append(checks, httpserver.Check{Name: "postgres", Probe: submission.Healthcheck(pool)})
	} else {
		log.WarnContext(ctx, "PG_CONN_URL is not set: submissions are not stored")
	}

	registry, err := playground.NewRegistry(formdef.NewCompiler(compileOpts...), defs, registryOpts...)
	if err != nil {
		return err
	}

	router := playground.Router(playground.RouterOptions{
		Forms:   playground.NewService(playCfg, registry, serviceOpts...),
		Metrics: collector.Handler(),
		Health:  httpserver.HealthHandler(log, checks...),
		Middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.Recoverer,
			collector.Middleware,
		},
	})

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

func requestID(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}
