// Package worker runs queued alpha jobs against a scorer and records outcomes.
package worker

import (
	"github.com/okian/kalpha/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger used by the pool and handed to its workers.
func WithPoolLogger(logger logger.Logger) PoolOption {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}
