package playground

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures what the playground router mounts. Each entry is
// optional and only mounted if provided.
type RouterOptions struct {
	Forms   Mountable
	Metrics http.Handler
	Health  http.Handler
	// Middlewares wrap every route, /metrics and /healthz included.
	Middlewares []func(http.Handler) http.Handler
}

// Router creates the playground router.
//
// Example:
//
//	collector := metrics.MustNew("formkit", prometheus.NewRegistry())
//	r := playground.Router(playground.RouterOptions{
//	    Forms:       svc,
//	    Metrics:     collector.Handler(),
//	    Health:      httpserver.HealthHandler(log),
//	    Middlewares: []func(http.Handler) http.Handler{collector.Middleware},
//	})
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(opts.Middlewares...)

	if opts.Forms != nil {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/forms", http.StatusFound)
		})
		r.Mount("/forms", opts.Forms.Handle())
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	if opts.Health != nil {
		r.Handle("/healthz", opts.Health)
	}
	return r
}
