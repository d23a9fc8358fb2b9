// Package serverdef reads the MCP servers document: a JSON file mapping
// server names to launch definitions.
//
//	{
//	  "memory": {
//	    "command": "./target/release/memory-server",
//	    "args": ["--stdio"],
//	    "env": {"MEMORY_DIR": "/var/lib/memory", "CACHE_SIZE": 256, "STRICT": true}
//	  }
//	}
//
// The format is shared with other MCP tooling, so env values may be JSON
// numbers or booleans; they are coerced to strings at decode time because
// that is all a process environment can carry.
package serverdef
