package proxy

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"

	"github.com/VanDung-dev/columnar/metrics"
)

type config struct {
	mem     memory.Allocator
	logger  log.Logger
	metrics *metrics.Metrics
}

func defaultConfig() config {
	return config{
		mem:     memory.DefaultAllocator,
		logger:  log.NewNopLogger(),
		metrics: metrics.DefaultMetrics,
	}
}

// Option configures a Proxy.
type Option func(*config)

// WithAllocator sets the allocator used for copies and for buffers grown in
// place.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *config) { c.mem = mem }
}

// WithLogger sets the logger teardown failures are reported to.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics sets the metrics the proxy records into.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// AllocatorOf returns the allocator opts select.
func AllocatorOf(opts ...Option) memory.Allocator {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg.mem
}
