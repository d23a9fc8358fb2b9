package harness

import (
	"time"

	"github.com/d-o-hub/mcp-smoke/pkg/jsonrpc"
)

// Exchange is the outcome of one request in the sequence.
type Exchange struct {
	Seq    int    `json:"seq"`
	Method string `json:"method"`
	// Tool is the tools/call target, empty for plain methods.
	Tool string `json:"tool,omitempty"`
	ID   string `json:"id"`
	// Duration is request-write to response-arrival; zero when absent.
	Duration time.Duration `json:"duration_ns"`
	// Response is nil when no reply arrived before the pass deadline.
	Response *jsonrpc.Message `json:"response,omitempty"`
}

// Absent reports whether no response arrived for this exchange.
func (e Exchange) Absent() bool {
	return e.Response == nil
}

// Errored reports whether the server answered with an RPC error.
func (e Exchange) Errored() bool {
	return e.Response != nil && e.Response.IsError()
}

// Report is the complete outcome of one smoke run. It is plain data: the
// run that produced it has already torn the server down.
type Report struct {
	Server    string    `json:"server"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
	// Elapsed covers spawn through teardown.
	Elapsed time.Duration `json:"elapsed_ns"`
	// Exchanges hold the four batch probes then shutdown, in request order
	// regardless of response arrival order.
	Exchanges []Exchange `json:"exchanges"`
	// ProcessOutcome is the child's final lifecycle state.
	ProcessOutcome string `json:"process_outcome"`
}

// Failures counts exchanges that are absent or errored.
func (r *Report) Failures() int {
	n := 0
	for _, ex := range r.Exchanges {
		if ex.Absent() || ex.Errored() {
			n++
		}
	}
	return n
}
