package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all field types",
			envVars: map[string]string{
				"MCP_SMOKE_SERVERS_FILE":     "/etc/mcp/servers.json",
				"MCP_SMOKE_SERVER":           "files",
				"MCP_SMOKE_COMMAND":          "/opt/bin/files-server",
				"MCP_SMOKE_BATCH_TIMEOUT":    "30s",
				"MCP_SMOKE_SHUTDOWN_TIMEOUT": "10s",
				"MCP_SMOKE_TERM_GRACE":       "3s",
				"MCP_SMOKE_QUERY":            "env query",
				"MCP_SMOKE_DOMAIN":           "env-domain",
				"MCP_SMOKE_TASK_TYPE":        "env-task",
				"MCP_SMOKE_LIMIT":            "9",
				"MCP_SMOKE_MAX_BODY":         "512",
				"MCP_SMOKE_OUT":              "/tmp/report.json",
				"MCP_SMOKE_COMPAT":           "true",
				"MCP_SMOKE_JSON":             "1",
				"MCP_SMOKE_DEBUG":            "false",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ServersFile:     "/etc/mcp/servers.json",
				Server:          "files",
				Command:         "/opt/bin/files-server",
				BatchTimeout:    30 * time.Second,
				ShutdownTimeout: 10 * time.Second,
				TermGrace:       3 * time.Second,
				Query:           "env query",
				Domain:          "env-domain",
				TaskType:        "env-task",
				Limit:           9,
				MaxBody:         512,
				Out:             "/tmp/report.json",
				Compat:          true,
				JSON:            true,
				Debug:           false,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"MCP_SMOKE_SERVER": "files",
				"MCP_SMOKE_COMPAT": "true",
				"MCP_SMOKE_LIMIT":  "9",
			},
			changed: map[string]bool{"server": true, "compat": true, "limit": true},
			initial: Config{Server: "memory", Limit: 3},
			expected: Config{
				Server: "memory",
				Limit:  3,
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"MCP_SMOKE_BATCH_TIMEOUT": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"MCP_SMOKE_LIMIT": "not-a-number",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "non-positive ints are ignored",
			envVars: map[string]string{
				"MCP_SMOKE_LIMIT": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{Limit: 3},
			expected: Config{Limit: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
