package reconcile

import (
	"github.com/pkg/errors"
)

// NewBackend creates a backend based on the configuration.
func NewBackend(cfg *Config) (Backend, error) {
	// Select backend implementation.
	switch cfg.Backend {
	case HTTPBackendType:
		return NewHTTPBackend(cfg)
	case EtcdBackendType:
		return NewEtcdBackend(cfg)
	default:
		return nil, errors.Errorf("unknown backend type: %s", cfg.Backend)
	}
}
