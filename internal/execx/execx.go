package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command describes a single external command invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin string

	// Timeout overrides the runner default when non-zero.
	Timeout time.Duration
}

// Result is the outcome of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// Combined returns stdout and stderr joined, for parsers that do not care
// which stream a diagnostic landed on.
func (r Result) Combined() string {
	return r.Stdout + "\n" + r.Stderr
}

// Runner is the single capability through which every external tool is
// invoked: git queries, package builds, dependency checks, uploads. There are
// no retries anywhere; a failed invocation is surfaced immediately.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) bool
}

// Local runs commands on the host, synchronously.
type Local struct {
	// DefaultTimeout bounds invocations that do not set their own.
	DefaultTimeout time.Duration
}

// NewLocal returns a Local runner with a 30 minute default timeout, which is
// generous enough for a full dpkg-buildpackage run.
func NewLocal() *Local {
	return &Local{DefaultTimeout: 30 * time.Minute}
}

// Run executes the command and captures its output. A non-zero exit is not an
// error; it is reported through Result.ExitCode. The returned error is
// reserved for invocations that never produced an exit status: binary not
// found, context cancelled, timeout.
func (l *Local) Run(ctx context.Context, c Command) (Result, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = l.DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: command names and args are fixed tool invocations
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return res, fmt.Errorf("%s timed out after %v", c.Name, timeout)
		}
		return res, fmt.Errorf("running %s: %w", c.Name, err)
	}

	return res, nil
}

// LookPath reports whether the named tool is on PATH.
func (l *Local) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
