package guard

import (
	"github.com/on-the-ground/infrequent_go/hitregistry"
	"go.uber.org/zap"
)

type Option func(*Guard)

// WithRegistry counts hits in reg instead of the process-wide registry.
func WithRegistry(reg *hitregistry.Registry) Option {
	return func(g *Guard) {
		g.registry = reg
	}
}

// WithDepth keeps only the innermost n frames of each call chain.
// Zero keeps the whole chain.
func WithDepth(n int) Option {
	return func(g *Guard) {
		g.depth = n
	}
}

// WithLogger logs every violation at error level before panicking.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// OnViolation registers a hook that runs before the panic.
// Hooks never run while a registry lock is held.
func OnViolation(hook func(*FrequencyExceeded)) Option {
	return func(g *Guard) {
		g.hooks = append(g.hooks, hook)
	}
}
