package proc

import (
	"sort"
	"strings"
)

// Quiet-log default for the child. MCP servers share stdout with the
// protocol, so their tracing goes to stderr; keeping it at error level
// stops a chatty server from drowning the relay.
const (
	quietLogKey     = "RUST_LOG"
	quietLogDefault = "error"
)

// MergeEnv overlays overrides onto base, where base uses the os.Environ
// "key=value" form. Override values win over inherited ones. The quiet-log
// default is added only when neither side defines the key, so a caller
// provided value always survives. Override keys are applied in sorted order
// to keep the result deterministic.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	order := make([]string, 0, len(base)+len(overrides)+1)

	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, seen := merged[k]; !seen {
			order = append(order, k)
		}
		merged[k] = v
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, seen := merged[k]; !seen {
			order = append(order, k)
		}
		merged[k] = overrides[k]
	}

	if _, ok := merged[quietLogKey]; !ok {
		order = append(order, quietLogKey)
		merged[quietLogKey] = quietLogDefault
	}

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+merged[k])
	}
	return out
}
