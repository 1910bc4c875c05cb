// Package metrics exports form activity to Prometheus.
//
// Collector implements form.Observer: pass it to form.WithObserver to count
// validator runs by outcome, validator failures, dropped stale results and
// submits. Its Middleware records HTTP requests by chi route pattern and
// Handler serves the registry.
package metrics
