package playground

import "time"

// Config configures the playground service.
type Config struct {
	SessionCookie string        `env:"PLAYGROUND_SESSION_COOKIE" envDefault:"formkit_session"`
	SessionTTL    time.Duration `env:"PLAYGROUND_SESSION_TTL" envDefault:"24h"`
	SecureCookie  bool          `env:"PLAYGROUND_SECURE_COOKIE" envDefault:"false"`
	// SettleTimeout bounds how long a request waits for pending validations
	// before streaming the settled fragments.
	SettleTimeout time.Duration `env:"PLAYGROUND_SETTLE_TIMEOUT" envDefault:"5s"`
	// SubmissionsLimit caps the submissions listed per form.
	SubmissionsLimit int `env:"PLAYGROUND_SUBMISSIONS_LIMIT" envDefault:"20"`
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		SessionCookie:    "formkit_session",
		SessionTTL:       24 * time.Hour,
		SettleTimeout:    5 * time.Second,
		SubmissionsLimit: 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SessionCookie == "" {
		c.SessionCookie = d.SessionCookie
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = d.SessionTTL
	}
	if c.SettleTimeout <= 0 {
		c.SettleTimeout = d.SettleTimeout
	}
	if c.SubmissionsLimit <= 0 {
		c.SubmissionsLimit = d.SubmissionsLimit
	}
	return c
}
