package redisstore

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                                // ConnectionURL is the URL of the server, e.g. "redis://:password@localhost:6379/0". Empty disables Redis.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`      // RetryAttempts is the number of attempts to connect to the server.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`     // RetryInterval is the delay between connection attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`   // ConnectTimeout bounds the whole connection phase.
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"formkit"`    // KeyPrefix namespaces every key written by this package.
	StateTTL       time.Duration `env:"REDIS_STATE_TTL" envDefault:"24h"`         // StateTTL expires abandoned form states. Zero keeps them forever.
	TxRetries      int           `env:"REDIS_TX_RETRIES" envDefault:"20"`         // TxRetries bounds optimistic transaction retries per update.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
