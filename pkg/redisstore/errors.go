package redisstore

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrTxConflict                   = errors.New("form state changed concurrently too many times")
	ErrCorruptState                 = errors.New("stored form state cannot be decoded")
	ErrEmptyKey                     = errors.New("redis key must not be empty")
)
