package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// State represents the lifecycle state of the child process.
type State int

const (
	StateRunning State = iota
	StateExited
	StateKilled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateExited:
		return "Exited"
	case StateKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// LaunchError reports that the server process could not be started. It is
// the only fatal error class in this package: nothing was spawned and no
// protocol traffic happened.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Spec describes the command to launch.
type Spec struct {
	Command string
	Args    []string
	// Env is overlaid on the parent environment; see MergeEnv.
	Env map[string]string
	// Dir is the working directory; empty means inherit.
	Dir string
}

// Server is the handle for a spawned child. It has exactly one owner; none
// of its methods are meant for concurrent use except State and Pid.
type Server struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	logger zerolog.Logger

	mu          sync.Mutex
	state       State
	stdinClosed bool
	waitErr     error
}

// Spawn starts the process described by spec with all three stdio streams
// piped. Any failure before the child is running is reported as a
// *LaunchError.
func Spawn(ctx context.Context, spec Spec, logger zerolog.Logger) (*Server, error) {
	if spec.Command == "" {
		return nil, &LaunchError{Command: spec.Command, Err: errors.New("empty command")}
	}

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = MergeEnv(os.Environ(), spec.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &LaunchError{Command: spec.Command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Command: spec.Command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &LaunchError{Command: spec.Command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Command: spec.Command, Err: err}
	}

	logger.Debug().
		Int("pid", cmd.Process.Pid).
		Str("command", spec.Command).
		Strs("args", spec.Args).
		Msg("server process started")

	return &Server{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		state:  StateRunning,
	}, nil
}

// Stdin returns the writer connected to the child's standard input.
func (s *Server) Stdin() io.Writer {
	return s.stdin
}

// Stdout returns the reader connected to the child's standard output.
func (s *Server) Stdout() io.Reader {
	return s.stdout
}

// Stderr returns the reader connected to the child's standard error.
func (s *Server) Stderr() io.Reader {
	return s.stderr
}

// Pid returns the child's process id.
func (s *Server) Pid() int {
	return s.cmd.Process.Pid
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// WaitErr returns the error recorded when the child was reaped, nil before
// teardown or after a clean exit.
func (s *Server) WaitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitErr
}

// CloseStdin closes the child's standard input. Safe to call more than
// once; a close failure is irrelevant during teardown and is not reported.
func (s *Server) CloseStdin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdinClosed {
		return
	}
	s.stdinClosed = true
	_ = s.stdin.Close()
}

// Terminate ends the child: SIGTERM first, then a forced kill once grace
// has passed, then reaps. Signal and kill failures are ignored because they
// mean the process is already gone; Wait settles the truth either way.
// Calling Terminate on an already reaped child just returns its state.
func (s *Server) Terminate(grace time.Duration) State {
	s.mu.Lock()
	if s.state != StateRunning {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.mu.Unlock()

	_ = s.cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-done:
		s.finish(StateExited, err)
	case <-timer.C:
		s.logger.Warn().Int("pid", s.Pid()).Dur("grace", grace).Msg("server ignored SIGTERM, killing")
		_ = s.cmd.Process.Kill()
		s.finish(StateKilled, <-done)
	}
	return s.State()
}

func (s *Server) finish(state State, waitErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.waitErr = waitErr

	ev := s.logger.Debug().Stringer("state", state)
	if waitErr != nil {
		ev = ev.AnErr("wait", waitErr)
	}
	ev.Msg("server process reaped")
}
