package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/d-o-hub/mcp-smoke/internal/cliconfig"
	"github.com/d-o-hub/mcp-smoke/internal/report"
	"github.com/d-o-hub/mcp-smoke/internal/serverdef"
	"github.com/d-o-hub/mcp-smoke/internal/watch"
	"github.com/d-o-hub/mcp-smoke/pkg/harness"
	"github.com/d-o-hub/mcp-smoke/pkg/proc"
)

const helpDescription = `
Smoke-test an MCP server over stdio without a client IDE in the loop.

mcp-smoke launches the server as a child process, speaks Content-Length
framed JSON-RPC 2.0 over its pipes, and fires a fixed probe sequence:
initialize, tools/list, a health_check call and a query_memory call in
one pipelined batch, then a separate shutdown exchange. Responses may
arrive in any order; missing or error responses are recorded, not fatal.

Highlights:
  - One pipelined write pass, out-of-order correlation under a deadline.
  - Child stderr is relayed live, so server-side panics stay visible.
  - Deterministic teardown: stdin close, then SIGTERM, bounded grace, kill.
  - --watch reruns the sequence when the server binary is rebuilt.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  mcp-smoke --servers mcp-servers.json --server memory
  mcp-smoke --command ./target/release/memory-server --json
  mcp-smoke --server memory --watch --debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger(false)

	root := &cobra.Command{
		Use:     "mcp-smoke",
		Short:   "Smoke-test an MCP server over stdio",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.mcp-smoke/config.toml),
			// then environment, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log = cliconfig.Logger(cfg.Debug)
			log.Debug().Interface("config", cfg).Msg("configuration")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			if cfg.Watch {
				return runWatch(ctx, &cfg, log)
			}
			return runOnce(ctx, &cfg, log)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.mcp-smoke/config.toml)")
	root.Flags().StringVar(&cfg.ServersFile, "servers", cfg.ServersFile, "path to the MCP servers definition file")
	root.Flags().StringVar(&cfg.Server, "server", cfg.Server, "server entry to smoke-test")
	root.Flags().StringVar(&cfg.Command, "command", cfg.Command, "replace the configured command path (configured args and env are kept)")
	root.Flags().BoolVar(&cfg.Compat, "compat", cfg.Compat, fmt.Sprintf("set %s=true for servers that gate legacy tool aliases", cliconfig.CompatEnvVar))

	root.Flags().DurationVar(&cfg.BatchTimeout, "batch-timeout", cfg.BatchTimeout, "deadline for the pipelined request batch")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "deadline for the shutdown exchange")
	root.Flags().DurationVar(&cfg.TermGrace, "term-grace", cfg.TermGrace, "grace period between SIGTERM and SIGKILL")

	root.Flags().StringVar(&cfg.Query, "query", cfg.Query, "query_memory probe text")
	root.Flags().StringVar(&cfg.Domain, "domain", cfg.Domain, "query_memory domain")
	root.Flags().StringVar(&cfg.TaskType, "task-type", cfg.TaskType, "query_memory task type")
	root.Flags().IntVar(&cfg.Limit, "limit", cfg.Limit, "query_memory result limit")

	root.Flags().IntVar(&cfg.MaxBody, "max-body", cfg.MaxBody, "response preview bound in bytes (0 disables previews)")
	root.Flags().BoolVar(&cfg.JSON, "json", cfg.JSON, "emit the report as JSON on stdout")
	root.Flags().StringVar(&cfg.Out, "out", cfg.Out, "also write the JSON report to this file (atomic replace)")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "rerun when the servers file or server binary changes")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("mcp-smoke")
		os.Exit(1)
	}
}

// runOnce executes a single smoke run and renders its report. Probe
// failures live in the report; only a server that never started makes the
// command itself fail.
func runOnce(ctx context.Context, cfg *cliconfig.Config, log zerolog.Logger) error {
	spec, err := resolveSpec(cfg)
	if err != nil {
		return err
	}
	h, err := harness.New(cfg.Server, spec, harnessOptions(cfg, log)...)
	if err != nil {
		return err
	}
	rep, err := h.Run(ctx)
	if err != nil {
		return fmt.Errorf("smoke run: %w", err)
	}
	return renderReport(cfg, rep)
}

// runWatch runs once immediately, then reruns whenever the servers file or
// the server binary changes, until a signal arrives. The definition is
// re-resolved per run so servers file edits take effect.
func runWatch(ctx context.Context, cfg *cliconfig.Config, log zerolog.Logger) error {
	spec, err := resolveSpec(cfg)
	if err != nil {
		return err
	}

	runSmoke := func(runCtx context.Context) {
		spec, err := resolveSpec(cfg)
		if err != nil {
			log.Error().Err(err).Msg("resolving server definition")
			return
		}
		h, err := harness.New(cfg.Server, spec, harnessOptions(cfg, log)...)
		if err != nil {
			log.Error().Err(err).Msg("assembling harness")
			return
		}
		rep, err := h.Run(runCtx)
		if err != nil {
			log.Error().Err(err).Msg("smoke run failed")
			return
		}
		if err := renderReport(cfg, rep); err != nil {
			log.Error().Err(err).Msg("rendering report")
		}
	}

	runSmoke(ctx)

	w, err := watch.New(watch.Config{Paths: watchTargets(cfg, spec)}, runSmoke, log)
	if err != nil {
		return fmt.Errorf("watch mode: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	return nil
}

// resolveSpec turns the configuration into a launch spec. The servers file
// entry is the base; --command replaces just the command path and keeps the
// configured args and env. With no usable servers file, --command alone
// launches the server with empty args and env.
func resolveSpec(cfg *cliconfig.Config) (proc.Spec, error) {
	haveFile := cfg.ServersFile != "" && cliconfig.FileExists(cfg.ServersFile)
	if !haveFile && cfg.Command == "" {
		return proc.Spec{}, fmt.Errorf("servers file %s not found (and no --command given)", cfg.ServersFile)
	}

	var spec proc.Spec
	if haveFile {
		reg, err := serverdef.Load(cfg.ServersFile)
		if err != nil {
			return proc.Spec{}, err
		}
		def, err := reg.Resolve(cfg.Server)
		if err != nil {
			return proc.Spec{}, err
		}
		spec = def.Spec()
		if cfg.Command != "" {
			spec.Command = cfg.Command
		}
	} else {
		spec = proc.Spec{Command: cfg.Command}
	}

	if cfg.Compat {
		if spec.Env == nil {
			spec.Env = map[string]string{}
		}
		spec.Env[cliconfig.CompatEnvVar] = "true"
	}
	return spec, nil
}

func harnessOptions(cfg *cliconfig.Config, log zerolog.Logger) []harness.Option {
	return []harness.Option{
		harness.WithLogger(log),
		harness.WithQueryArgs(cfg.QueryArgs()),
		harness.WithBatchTimeout(cfg.BatchTimeout),
		harness.WithShutdownTimeout(cfg.ShutdownTimeout),
		harness.WithTermGrace(cfg.TermGrace),
	}
}

func renderReport(cfg *cliconfig.Config, rep *harness.Report) error {
	if cfg.Out != "" {
		if err := report.Save(cfg.Out, rep); err != nil {
			return err
		}
	}
	if cfg.JSON {
		return report.WriteJSON(os.Stdout, rep)
	}
	report.Render(os.Stdout, rep, report.Options{MaxBody: cfg.MaxBody})
	return nil
}

// watchTargets lists the files whose changes should trigger a rerun: the
// servers file when one is in use, and the server binary when the command
// is a concrete path rather than a bare program name.
func watchTargets(cfg *cliconfig.Config, spec proc.Spec) []string {
	var paths []string
	if cfg.Command == "" && cfg.ServersFile != "" {
		paths = append(paths, cfg.ServersFile)
	}
	if strings.ContainsRune(spec.Command, os.PathSeparator) {
		if _, err := os.Stat(spec.Command); err == nil {
			paths = append(paths, spec.Command)
		}
	}
	return paths
}
