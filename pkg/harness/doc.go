// Package harness drives a scripted smoke-test conversation against an MCP
// server speaking length-prefixed JSON-RPC over stdio.
//
// A run launches the configured server process, pipelines the fixed batch
// of probe requests (initialize, tools/list, and two tools/call probes)
// before reading anything back, correlates responses by id under a batch
// deadline, then performs an independent shutdown exchange and always tears
// the process down. Responses may arrive in any order; missing ones are
// reported as absent rather than failing the run.
//
// # Usage
//
//	h, err := harness.New("memory", proc.Spec{Command: "./memory-server"},
//	    harness.WithLogger(logger),
//	    harness.WithBatchTimeout(15*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	report, err := h.Run(ctx)
//	if err != nil {
//	    return err // the server never started
//	}
//	// Inspect report.Exchanges...
//
// The only error Run returns is a failure to start the process. Everything
// that happens after launch (absent responses, RPC errors, a server that
// ignores shutdown) is data in the Report.
package harness
