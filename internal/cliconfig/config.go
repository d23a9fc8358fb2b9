package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/d-o-hub/mcp-smoke/pkg/harness"
)

// Defaults for the probe target.
const (
	DefaultServersFile = "mcp-servers.json"
	DefaultServer      = "memory"
	DefaultMaxBody     = 2048
)

// CompatEnvVar is injected into the child environment when the compat
// toggle is on. Servers read it to accept legacy method aliases; anything
// other than "false", "0" or "no" enables them on the server side.
const CompatEnvVar = "MCP_COMPAT_ALIASES"

// Config holds CLI configuration for mcp-smoke.
type Config struct {
	ServersFile string
	Server      string
	Command     string
	Compat      bool

	BatchTimeout    time.Duration
	ShutdownTimeout time.Duration
	TermGrace       time.Duration

	Query    string
	Domain   string
	TaskType string
	Limit    int

	MaxBody int
	JSON    bool
	Out     string
	Watch   bool
	Debug   bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	q := harness.DefaultQueryArgs()
	return Config{
		ServersFile:     DefaultServersFile,
		Server:          DefaultServer,
		BatchTimeout:    harness.DefaultBatchTimeout,
		ShutdownTimeout: harness.DefaultShutdownTimeout,
		TermGrace:       harness.DefaultTermGrace,
		Query:           q.Query,
		Domain:          q.Domain,
		TaskType:        q.TaskType,
		Limit:           q.Limit,
		MaxBody:         DefaultMaxBody,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ServersFile == "" && c.Command == "" {
		return fmt.Errorf("servers file is required (or --command)")
	}
	if c.Server == "" {
		return fmt.Errorf("server name is required")
	}
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("batch timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.TermGrace <= 0 {
		return fmt.Errorf("term grace must be positive")
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if c.MaxBody < 0 {
		return fmt.Errorf("max body must not be negative")
	}
	return nil
}

// QueryArgs assembles the query_memory probe arguments from the config.
func (c *Config) QueryArgs() harness.QueryArgs {
	return harness.QueryArgs{
		Query:    c.Query,
		Domain:   c.Domain,
		TaskType: c.TaskType,
		Limit:    c.Limit,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
