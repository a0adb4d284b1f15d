package guard

import (
	"fmt"
	"sync"

	"github.com/on-the-ground/infrequent_go/callsite"
	"github.com/on-the-ground/infrequent_go/hitregistry"
	"go.uber.org/zap"
)

// Guard enforces per-call-site hit limits against one registry.
type Guard struct {
	registry *hitregistry.Registry
	depth    int
	logger   *zap.Logger
	hooks    []func(*FrequencyExceeded)
}

func New(opts ...Option) *Guard {
	g := &Guard{}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = hitregistry.Default()
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.depth < 0 {
		panic(fmt.Sprintf("depth should not be negative: %d", g.depth))
	}
	return g
}

var (
	defaultOnce  sync.Once
	defaultGuard *Guard
)

// Default returns the guard behind the package-level AtMost.
func Default() *Guard {
	defaultOnce.Do(func() {
		defaultGuard = New()
	})
	return defaultGuard
}

// AtMost panics with *FrequencyExceeded once the calling site has been hit
// more than limit times. A limit of zero forbids the site entirely.
func AtMost(limit uint) {
	Default().check(limit, 1)
}

func (g *Guard) AtMost(limit uint) {
	g.check(limit, 1)
}

func (g *Guard) Registry() *hitregistry.Registry { return g.registry }

// check counts a hit for the site skip frames above it. The comparison
// happens after the registry lock is released.
func (g *Guard) check(limit uint, skip int) {
	site := callsite.Capture(skip+1, g.depth)
	hits := g.registry.RecordAndGet(site)
	if hits <= uint64(limit) {
		return
	}

	err := &FrequencyExceeded{
		Limit: uint64(limit),
		Hits:  hits,
		Site:  site,
	}
	g.logger.Error("call site frequency exceeded",
		zap.Stringer("site", site),
		zap.Uint64("limit", err.Limit),
		zap.Uint64("hits", err.Hits),
		zap.String("registry", g.registry.ID()),
	)
	for _, hook := range g.hooks {
		hook(err)
	}
	panic(err)
}
