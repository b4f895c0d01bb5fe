package mcgate

import (
	"time"

	"github.com/gogogo1024/mcgate/protocol"
)

const (
	defaultAddr                 = ":25565"
	defaultIdleTimeout          = 30 * time.Second
	defaultWriteTimeout         = 10 * time.Second
	defaultCompressionThreshold = 256
)

// StatsRecorder counts decoded packets. internal/stats provides in-memory and
// Redis implementations.
type StatsRecorder interface {
	Record(state protocol.State, name string) error
}

type serveConfig struct {
	addr                 string
	idleTimeout          time.Duration
	writeTimeout         time.Duration
	compressionThreshold int
	limits               ConnLimits
	stats                StatsRecorder
}

type ServeOption func(*serveConfig)

// WithAddr sets the listen address used when ListenAndServe gets an empty addr.
func WithAddr(addr string) ServeOption {
	return func(c *serveConfig) { c.addr = addr }
}

// WithIdleTimeout closes connections that send nothing for d. Zero disables it.
func WithIdleTimeout(d time.Duration) ServeOption {
	return func(c *serveConfig) { c.idleTimeout = d }
}

// WithWriteTimeout bounds each clientbound write. Zero disables it.
func WithWriteTimeout(d time.Duration) ServeOption {
	return func(c *serveConfig) { c.writeTimeout = d }
}

// WithCompressionThreshold sets the threshold announced to clients at login.
// protocol.CompressionDisabled (-1) turns compression off.
func WithCompressionThreshold(n int) ServeOption {
	return func(c *serveConfig) { c.compressionThreshold = n }
}

// WithConnLimits replaces DefaultConnLimits for every connection. Zero fields
// keep their default.
func WithConnLimits(l ConnLimits) ServeOption {
	return func(c *serveConfig) { c.limits = l }
}

func WithStats(s StatsRecorder) ServeOption {
	return func(c *serveConfig) { c.stats = s }
}

func newServeConfig(opts []ServeOption) serveConfig {
	cfg := serveConfig{
		idleTimeout:          defaultIdleTimeout,
		writeTimeout:         defaultWriteTimeout,
		compressionThreshold: defaultCompressionThreshold,
		limits:               DefaultConnLimits,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.compressionThreshold < 0 {
		cfg.compressionThreshold = protocol.CompressionDisabled
	}
	return cfg
}

func normalizeAddr(addr string, opts []ServeOption) string {
	if addr != "" {
		return addr
	}
	if cfg := newServeConfig(opts); cfg.addr != "" {
		return cfg.addr
	}
	return defaultAddr
}
