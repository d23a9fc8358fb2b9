package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServersFile     string `toml:"servers_file"`
	Server          string `toml:"server"`
	Command         string `toml:"command"`
	Compat          *bool  `toml:"compat"`
	BatchTimeout    string `toml:"batch_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	TermGrace       string `toml:"term_grace"`
	Query           string `toml:"query"`
	Domain          string `toml:"domain"`
	TaskType        string `toml:"task_type"`
	Limit           int    `toml:"limit"`
	MaxBody         int    `toml:"max_body"`
	JSON            *bool  `toml:"json"`
	Out             string `toml:"out"`
	Debug           *bool  `toml:"debug"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.mcp-smoke/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mcp-smoke", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("servers", fc.ServersFile, &cfg.ServersFile)
	s.setString("server", fc.Server, &cfg.Server)
	s.setString("command", fc.Command, &cfg.Command)
	s.setString("query", fc.Query, &cfg.Query)
	s.setString("domain", fc.Domain, &cfg.Domain)
	s.setString("task-type", fc.TaskType, &cfg.TaskType)
	s.setString("out", fc.Out, &cfg.Out)

	if err := s.setDuration("batch-timeout", fc.BatchTimeout, &cfg.BatchTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("term-grace", fc.TermGrace, &cfg.TermGrace); err != nil {
		return err
	}

	s.setInt("limit", fc.Limit, &cfg.Limit)
	s.setInt("max-body", fc.MaxBody, &cfg.MaxBody)

	s.setBool("compat", fc.Compat, &cfg.Compat)
	s.setBool("json", fc.JSON, &cfg.JSON)
	s.setBool("debug", fc.Debug, &cfg.Debug)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
