// Package mcpsmoke smoke-tests MCP servers over stdio JSON-RPC.
//
// Example usage:
//
//	h, err := mcpsmoke.New("memory", mcpsmoke.Spec{
//	    Command: "/path/to/memory-server",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rep, err := h.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d of %d probes failed\n", rep.Failures(), len(rep.Exchanges))
package mcpsmoke

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/d-o-hub/mcp-smoke/pkg/harness"
	"github.com/d-o-hub/mcp-smoke/pkg/proc"
)

// Harness drives one smoke-test conversation per Run. Every Run spawns a
// fresh server process and a fresh request id stream.
type Harness = harness.Harness

// Spec describes the server process to launch: command, arguments and
// environment overrides.
type Spec = proc.Spec

// Report is the complete outcome of one smoke run.
type Report = harness.Report

// Exchange is the outcome of one request in the probe sequence.
type Exchange = harness.Exchange

// QueryArgs are the query_memory probe arguments.
type QueryArgs = harness.QueryArgs

// Option configures optional harness behavior.
type Option = harness.Option

// New validates the server spec and assembles a harness. The name is only
// used for reporting and logs.
func New(name string, spec Spec, opts ...Option) (*Harness, error) {
	return harness.New(name, spec, opts...)
}

// DefaultQueryArgs returns the stock query_memory probe arguments.
func DefaultQueryArgs() QueryArgs {
	return harness.DefaultQueryArgs()
}

// WithLogger sets the structured logger. If not provided, logging is
// discarded.
func WithLogger(logger zerolog.Logger) Option {
	return harness.WithLogger(logger)
}

// WithStderrSink redirects the child's relayed stderr.
func WithStderrSink(w io.Writer) Option {
	return harness.WithStderrSink(w)
}

// WithBatchTimeout bounds how long a run waits for the pipelined batch
// responses as a group.
func WithBatchTimeout(d time.Duration) Option {
	return harness.WithBatchTimeout(d)
}

// WithShutdownTimeout bounds the separate shutdown exchange.
func WithShutdownTimeout(d time.Duration) Option {
	return harness.WithShutdownTimeout(d)
}

// WithTermGrace sets how long a SIGTERM'd server may linger before it is
// force-killed.
func WithTermGrace(d time.Duration) Option {
	return harness.WithTermGrace(d)
}

// WithQueryArgs replaces the stock query_memory probe arguments.
func WithQueryArgs(q QueryArgs) Option {
	return harness.WithQueryArgs(q)
}
