package mlflowserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultExecutable    = "mlflow"
	defaultShutdownGrace = 10 * time.Second
)

// ShellCommandError means the server process could not be started or
// exited with a non-zero status. ExitCode is -1 when it never started or
// was killed by a signal.
type ShellCommandError struct {
	Command  []string
	Started  bool
	ExitCode int
	Err      error
}

func (e *ShellCommandError) Error() string {
	cmd := strings.Join(redactArgs(e.Command), " ")
	if !e.Started {
		return fmt.Sprintf("failed to start command %q: %v", cmd, e.Err)
	}
	return fmt.Sprintf("command %q failed: %v", cmd, e.Err)
}

func (e *ShellCommandError) Unwrap() error {
	return e.Err
}

// Runner starts "mlflow server" and blocks until it exits.
type Runner struct {
	log           *logrus.Logger
	executable    string
	shutdownGrace time.Duration
	stdout        io.Writer
	stderr        io.Writer
}

func New(log *logrus.Logger, executable string) *Runner {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Runner{
		log:           log,
		executable:    executable,
		shutdownGrace: defaultShutdownGrace,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

func (r *Runner) WithShutdownGrace(d time.Duration) *Runner {
	if d > 0 {
		r.shutdownGrace = d
	}
	return r
}

func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	r.stdout, r.stderr = stdout, stderr
	return r
}

// RunServer returns nil when the server exits cleanly and ctx.Err() when
// it was stopped through ctx by SIGTERM. A server that is still running
// after the grace period is killed and reported as a ShellCommandError.
func (r *Runner) RunServer(ctx context.Context, opts Options) error {
	args := Args(opts)
	command := append([]string{r.executable}, args...)

	cmd := exec.CommandContext(ctx, r.executable, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = r.shutdownGrace

	r.log.Infof("starting mlflow server on %s:%d with %d worker(s)", opts.Host, opts.Port, opts.Workers)
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ShellCommandError{Command: command, ExitCode: -1, Err: err}
	}

	err := cmd.Wait()
	if ctx.Err() != nil {
		if stoppedByTerm(err) {
			r.log.Info("mlflow server stopped")
			return ctx.Err()
		}
		r.log.Warnf("mlflow server did not stop cleanly on SIGTERM (grace %s)", r.shutdownGrace)
		return &ShellCommandError{Command: command, Started: true, ExitCode: exitCode(err), Err: err}
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ShellCommandError{Command: command, Started: true, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return errors.Wrap(err, "wait for mlflow server")
}

// stoppedByTerm reports whether Wait's result after Cancel means the server
// shut down on SIGTERM. exec reports a zero exit after Cancel as ctx.Err().
func stoppedByTerm(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		return false
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ws.Signal() == syscall.SIGTERM
	}
	// sh and friends exit 128+signal
	return exitErr.ExitCode() == 128+int(syscall.SIGTERM)
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
