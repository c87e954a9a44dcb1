package config

import "errors"

var (
	// ErrInvalidConfig wraps validation failures, reported by koanf key.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps provider, parser and unmarshal failures.
	ErrLoadConfig = errors.New("load config failed")
)
