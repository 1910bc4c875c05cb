// Package httpserver runs the demo's HTTP handler.
//
// New builds a Server from a Config loaded from HTTP_* variables. Run serves
// until its context is cancelled or Shutdown is called, then drains open
// connections within the shutdown timeout.
//
// HealthHandler answers liveness and readiness probes over named checks,
// such as the Redis and PostgreSQL pings of the demo.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
package httpserver
