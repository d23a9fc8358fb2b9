package serverdef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/d-o-hub/mcp-smoke/pkg/proc"
)

var (
	// ErrServerNotFound is returned when the requested name has no entry.
	ErrServerNotFound = errors.New("serverdef: server not found")

	// ErrInvalidDefinition is returned when a selected entry cannot be
	// launched, e.g. its command is empty.
	ErrInvalidDefinition = errors.New("serverdef: invalid server definition")
)

// EnvMap is a string-valued environment map. Its decoder accepts JSON
// numbers and booleans and coerces them, keeping the literal digits for
// numbers (256 stays "256", 1.5 stays "1.5"). Null coerces to the empty
// string.
type EnvMap map[string]string

func (m *EnvMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(EnvMap, len(raw))
	for k, v := range raw {
		s, err := coerceEnvValue(v)
		if err != nil {
			return fmt.Errorf("env %q: %w", k, err)
		}
		out[k] = s
	}
	*m = out
	return nil
}

func coerceEnvValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// Definition describes how to launch one MCP server.
type Definition struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Env     EnvMap   `json:"env"`
}

// Spec converts the definition into a launch spec. Args and Env are
// copied so callers can overlay per-run values without mutating the
// registry.
func (d Definition) Spec() proc.Spec {
	spec := proc.Spec{
		Command: d.Command,
		Args:    append([]string(nil), d.Args...),
		Env:     make(map[string]string, len(d.Env)),
	}
	for k, v := range d.Env {
		spec.Env[k] = v
	}
	return spec
}

// Registry is the decoded servers document: name → definition.
type Registry map[string]Definition

// Load reads and parses the servers document at path.
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading servers file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("servers file %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a servers document.
func Parse(data []byte) (Registry, error) {
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Names returns the registered server names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the definition for name. The entry is validated here and
// not at parse time: a registry may carry broken entries for servers the
// run never selects.
func (r Registry) Resolve(name string) (Definition, error) {
	def, ok := r[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q (available: %s)", ErrServerNotFound, name, strings.Join(r.Names(), ", "))
	}
	if def.Command == "" {
		return Definition{}, fmt.Errorf("%w: %q has an empty command", ErrInvalidDefinition, name)
	}
	return def, nil
}
