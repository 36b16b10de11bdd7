package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrMissingCredential  = goerr.New("required credential is not set")
	ErrInvalidBackend     = goerr.New("invalid repository backend")
	ErrInvalidResourceURL = goerr.New("invalid resource URL")
	ErrInvalidLogConfig   = goerr.New("invalid logger configuration")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FlagKey       = "flag"
	BackendKey    = "backend"
	ResourceKey   = "resource"
)
