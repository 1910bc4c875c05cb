package httpserver

import (
	"net/http"
	"time"
)

// Defaults applied to zero Config fields.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 5 * time.Second
)

// Config configures a Server. WriteTimeout stays zero unless set, which
// keeps the playground's SSE streams open.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

// fill copies the configured values into the zero fields of srv.
func (c Config) fill(srv *http.Server) {
	if srv.Addr == "" {
		srv.Addr = c.Addr
	}
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = c.ReadTimeout
	}
	if srv.WriteTimeout == 0 {
		srv.WriteTimeout = c.WriteTimeout
	}
	if srv.IdleTimeout == 0 {
		srv.IdleTimeout = c.IdleTimeout
	}
}
