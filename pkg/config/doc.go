// Package config loads typed configuration from environment variables using
// github.com/caarlos0/env/v11, with optional .env files read through
// github.com/joho/godotenv.
//
// Each configuration type is parsed once and cached. Packages that need
// configuration declare their own struct with `env` tags (see
// redisstore.Config and submission.Config), and the application loads them
// at startup with Load or MustLoad. Tests call ResetCache or ForceReload after
// changing the environment.
package config
