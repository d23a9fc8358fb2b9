package cliconfig

import "os"

// ApplyEnvConfig applies MCP_SMOKE_* environment variables to the config.
// Environment values override file config but lose to explicitly set flags
// (checked via the changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("servers", os.Getenv("MCP_SMOKE_SERVERS_FILE"), &cfg.ServersFile)
	s.setString("server", os.Getenv("MCP_SMOKE_SERVER"), &cfg.Server)
	s.setString("command", os.Getenv("MCP_SMOKE_COMMAND"), &cfg.Command)
	s.setString("query", os.Getenv("MCP_SMOKE_QUERY"), &cfg.Query)
	s.setString("domain", os.Getenv("MCP_SMOKE_DOMAIN"), &cfg.Domain)
	s.setString("task-type", os.Getenv("MCP_SMOKE_TASK_TYPE"), &cfg.TaskType)
	s.setString("out", os.Getenv("MCP_SMOKE_OUT"), &cfg.Out)

	if err := s.setDuration("batch-timeout", os.Getenv("MCP_SMOKE_BATCH_TIMEOUT"), &cfg.BatchTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("MCP_SMOKE_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("term-grace", os.Getenv("MCP_SMOKE_TERM_GRACE"), &cfg.TermGrace); err != nil {
		return err
	}

	if err := s.setIntFromString("limit", os.Getenv("MCP_SMOKE_LIMIT"), &cfg.Limit); err != nil {
		return err
	}
	if err := s.setIntFromString("max-body", os.Getenv("MCP_SMOKE_MAX_BODY"), &cfg.MaxBody); err != nil {
		return err
	}

	s.setBoolFromString("compat", os.Getenv("MCP_SMOKE_COMPAT"), &cfg.Compat)
	s.setBoolFromString("json", os.Getenv("MCP_SMOKE_JSON"), &cfg.JSON)
	s.setBoolFromString("debug", os.Getenv("MCP_SMOKE_DEBUG"), &cfg.Debug)

	return nil
}
