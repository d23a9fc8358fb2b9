package harness

import (
	"github.com/d-o-hub/mcp-smoke/pkg/jsonrpc"
)

// Methods the smoke sequence exercises.
const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"
	MethodShutdown   = "shutdown"
)

// Tools probed via tools/call.
const (
	ToolHealthCheck = "health_check"
	ToolQueryMemory = "query_memory"
)

// QueryArgs are the arguments for the query_memory probe.
type QueryArgs struct {
	Query    string `json:"query"`
	Domain   string `json:"domain"`
	TaskType string `json:"task_type"`
	Limit    int    `json:"limit"`
}

// DefaultQueryArgs returns the stock probe: a retrieval any memory server
// can answer without prepared fixtures.
func DefaultQueryArgs() QueryArgs {
	return QueryArgs{
		Query:    "implement async storage",
		Domain:   "web-api",
		TaskType: "code_generation",
		Limit:    3,
	}
}

type toolCallParams struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments"`
}

// idAllocator hands out request ids. It is a struct owned by the run, not
// package state, so every run starts its id stream at 1.
type idAllocator struct {
	next int64
}

func (a *idAllocator) Next() int64 {
	a.next++
	return a.next
}

// probe pairs a request envelope with its report metadata.
type probe struct {
	msg *jsonrpc.Message
	// tool is the tools/call target, empty for plain methods.
	tool string
}

// buildBatch assembles the fixed four-request batch in its logical order:
// initialize, tools/list, then the health_check and query_memory calls.
func buildBatch(ids *idAllocator, q QueryArgs) ([]probe, error) {
	initialize, err := jsonrpc.NewRequest(ids.Next(), MethodInitialize, nil)
	if err != nil {
		return nil, err
	}
	list, err := jsonrpc.NewRequest(ids.Next(), MethodToolsList, nil)
	if err != nil {
		return nil, err
	}
	health, err := jsonrpc.NewRequest(ids.Next(), MethodToolsCall, toolCallParams{
		Name:      ToolHealthCheck,
		Arguments: map[string]any{},
	})
	if err != nil {
		return nil, err
	}
	query, err := jsonrpc.NewRequest(ids.Next(), MethodToolsCall, toolCallParams{
		Name:      ToolQueryMemory,
		Arguments: q,
	})
	if err != nil {
		return nil, err
	}

	return []probe{
		{msg: initialize},
		{msg: list},
		{msg: health, tool: ToolHealthCheck},
		{msg: query, tool: ToolQueryMemory},
	}, nil
}

func idKeys(batch []probe) []string {
	keys := make([]string, 0, len(batch))
	for _, p := range batch {
		keys = append(keys, p.msg.IDKey())
	}
	return keys
}
