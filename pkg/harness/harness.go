package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/d-o-hub/mcp-smoke/pkg/jsonrpc"
	"github.com/d-o-hub/mcp-smoke/pkg/proc"
)

// ErrNoCommand is returned by New when the server spec has no command.
var ErrNoCommand = errors.New("harness: no command configured")

// Harness drives one smoke-test conversation per Run against a single MCP
// server process. A Harness is reusable; every Run spawns a fresh process
// and a fresh id stream.
type Harness struct {
	name string
	spec proc.Spec
	opts options
}

// New validates the server spec and assembles a harness. The name is only
// used for reporting and logs.
func New(name string, spec proc.Spec, opts ...Option) (*Harness, error) {
	if spec.Command == "" {
		return nil, ErrNoCommand
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Harness{name: name, spec: spec, opts: o}, nil
}

// Run executes the full sequence: spawn, pipelined batch, batch
// correlation, independent shutdown exchange, teardown. Teardown happens
// on every path once the process is up: stdin is closed, the process gets
// SIGTERM and a bounded grace before a forced kill, and the stderr relay
// is joined.
//
// Run returns an error only when the server never started (or a request
// could not even be built). Absent responses, RPC errors and a server that
// ignores shutdown are all recorded in the Report instead.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	logger := h.opts.logger.With().Str("server", h.name).Logger()
	started := time.Now()

	srv, err := proc.Spawn(ctx, h.spec, logger)
	if err != nil {
		return nil, err
	}

	var relayWG sync.WaitGroup
	relayStderr(&relayWG, srv.Stderr(), h.opts.stderrSink, logger)
	frames := startReader(srv.Stdout(), logger)

	report := &Report{
		Server:    h.name,
		Command:   h.spec.Command,
		StartedAt: started,
	}
	defer func() {
		srv.CloseStdin()
		outcome := srv.Terminate(h.opts.termGrace)
		relayWG.Wait()
		// Join the reader: reaping the process closed its stdout, so the
		// channel is about to close; leftover frames are discarded.
		for range frames {
		}
		report.ProcessOutcome = outcome.String()
		report.Elapsed = time.Since(started)
	}()

	ids := &idAllocator{}
	batch, err := buildBatch(ids, h.opts.query)
	if err != nil {
		return nil, fmt.Errorf("building request batch: %w", err)
	}

	// The whole batch is written before any response is read; the server
	// is free to answer in any order it likes.
	sentAt := time.Now()
	for _, p := range batch {
		if err := jsonrpc.EncodeFrame(srv.Stdin(), p.msg); err != nil {
			logger.Warn().Err(err).Str("method", p.msg.Method).Msg("request write failed, skipping remaining writes")
			break
		}
	}

	table := correlate(ctx, frames, idKeys(batch), h.opts.batchTimeout, logger)
	for i, p := range batch {
		report.Exchanges = append(report.Exchanges, newExchange(i+1, p, table, sentAt))
	}

	// Shutdown is its own pass with its own deadline: a server that
	// answered the batch but hangs on shutdown still yields a full batch
	// report plus one absent entry here.
	shutdown, err := jsonrpc.NewRequest(ids.Next(), MethodShutdown, nil)
	if err != nil {
		return nil, fmt.Errorf("building shutdown request: %w", err)
	}
	sentAt = time.Now()
	if err := jsonrpc.EncodeFrame(srv.Stdin(), shutdown); err != nil {
		logger.Warn().Err(err).Msg("shutdown write failed")
	}
	table = correlate(ctx, frames, []string{shutdown.IDKey()}, h.opts.shutdownTimeout, logger)
	report.Exchanges = append(report.Exchanges, newExchange(len(batch)+1, probe{msg: shutdown}, table, sentAt))

	return report, nil
}

func newExchange(seq int, p probe, table map[string]received, sentAt time.Time) Exchange {
	ex := Exchange{
		Seq:    seq,
		Method: p.msg.Method,
		Tool:   p.tool,
		ID:     p.msg.IDKey(),
	}
	if rcv, ok := table[ex.ID]; ok {
		ex.Response = rcv.Msg
		ex.Duration = rcv.At.Sub(sentAt)
	}
	return ex
}
