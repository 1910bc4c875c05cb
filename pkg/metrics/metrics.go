package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "formkit"

// Collector exports form activity as Prometheus metrics. It implements
// form.Observer.
type Collector struct {
	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	validationErrors   *prometheus.CounterVec
	discarded          *prometheus.CounterVec
	submits            *prometheus.CounterVec
	submitDuration     *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

var _ form.Observer = (*Collector)(nil)

// New creates a collector and registers its metrics with reg. A nil reg uses
// a fresh private registry.
func New(namespace string, reg *prometheus.Registry) (*Collector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of validator runs by outcome",
		}, []string{"form", "field", "outcome"}),
		validationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Validator run duration in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"form", "field"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Total number of validators that failed to run",
		}, []string{"form", "field"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_discarded_total",
			Help:      "Total number of stale validation results dropped",
		}, []string{"form", "field"}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Total number of form submits by validity and status",
		}, []string{"form", "valid", "status"}),
		submitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Submit handler duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"form"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path", "status"}),
		gatherer: reg,
	}

	var errs []error
	for _, col := range []prometheus.Collector{
		c.validations, c.validationDuration, c.validationErrors, c.discarded,
		c.submits, c.submitDuration, c.httpRequests, c.httpDuration,
	} {
		if err := reg.Register(col); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, errors.Join(ErrRegister, err)
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(namespace string, reg *prometheus.Registry) *Collector {
	c, err := New(namespace, reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) ObserveValidation(_ context.Context, formName, field string, res validation.Result, elapsed time.Duration, err error) {
	c.validationDuration.WithLabelValues(formName, field).Observe(elapsed.Seconds())

	outcome := "valid"
	switch {
	case err != nil:
		outcome = "error"
		c.validationErrors.WithLabelValues(formName, field).Inc()
	case !res.Valid:
		outcome = "invalid"
	}
	c.validations.WithLabelValues(formName, field, outcome).Inc()
}

func (c *Collector) ObserveDiscarded(_ context.Context, formName, field string) {
	c.discarded.WithLabelValues(formName, field).Inc()
}

func (c *Collector) ObserveSubmit(_ context.Context, formName string, valid bool, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.submits.WithLabelValues(formName, strconv.FormatBool(valid), status).Inc()
	c.submitDuration.WithLabelValues(formName).Observe(elapsed.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
