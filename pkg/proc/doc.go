// Package proc launches and supervises a child MCP server process.
//
// Spawn starts the configured command with piped stdio and returns a Server
// handle owning the process for its whole lifetime. The handle moves through
// three states (Running, Exited, Killed) and guarantees the child is reaped
// on every path: Terminate asks politely with SIGTERM, waits out a bounded
// grace period, then force-kills.
//
// The child environment is the parent environment overlaid with per-server
// overrides; see MergeEnv for the exact precedence rules.
package proc
