package harness

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for the run deadlines. The batch deadline is deliberately
// generous because a cold server may compile caches or open storage on
// first request; shutdown should be quick on any healthy server.
const (
	DefaultBatchTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultTermGrace       = 2 * time.Second
)

// Option configures optional behavior of a Harness.
type Option func(*options)

// options holds the optional configuration for a Harness instance.
type options struct {
	logger          zerolog.Logger
	stderrSink      io.Writer
	batchTimeout    time.Duration
	shutdownTimeout time.Duration
	termGrace       time.Duration
	query           QueryArgs
}

// defaultOptions returns options with the documented defaults.
func defaultOptions() options {
	return options{
		logger:          zerolog.Nop(),
		stderrSink:      os.Stderr,
		batchTimeout:    DefaultBatchTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		termGrace:       DefaultTermGrace,
		query:           DefaultQueryArgs(),
	}
}

// WithLogger sets the structured logger. If not provided, logging is
// discarded.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStderrSink redirects the child's relayed stderr. If not provided, it
// goes to the harness process's own stderr.
func WithStderrSink(w io.Writer) Option {
	return func(o *options) {
		o.stderrSink = w
	}
}

// WithBatchTimeout bounds how long the run waits for the four batch
// responses as a group.
func WithBatchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.batchTimeout = d
	}
}

// WithShutdownTimeout bounds the separate shutdown exchange.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}

// WithTermGrace sets how long a SIGTERM'd server may linger before it is
// force-killed.
func WithTermGrace(d time.Duration) Option {
	return func(o *options) {
		o.termGrace = d
	}
}

// WithQueryArgs replaces the stock query_memory probe arguments.
func WithQueryArgs(q QueryArgs) Option {
	return func(o *options) {
		o.query = q
	}
}
