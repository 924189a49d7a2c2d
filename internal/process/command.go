// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/signalbroker"
	"github.com/matt-FFFFFF/wheelwrap/internal/teereader"
)

const lastLineMaxLength = 256

// TickerInterval controls how often a long-running child is reported in the debug log.
var TickerInterval = 30 * time.Second

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the stderr pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrEmptyPath is returned when a Command has no executable path.
	ErrEmptyPath = errors.New("command path is empty")
	// ErrContextDone is returned when the context ends before the child exits and the child is killed.
	ErrContextDone = errors.New("context done, process killed")
	// ErrSignalReceived is returned when a termination signal was forwarded to the child.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a repeated signal forced the child to be killed.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// Command is a single child process invocation.
type Command struct {
	Label  string            // Label used in logs and errors
	Path   string            // Executable path, used as argv[0]
	Args   []string          // Arguments, not including the executable
	Cwd    string            // Working directory, empty means inherit
	Env    map[string]string // Added to the parent's environment
	Stdin  *os.File          // Defaults to os.Stdin
	Stdout *os.File          // Defaults to os.Stdout
	Stderr io.Writer         // Defaults to os.Stderr
	sigCh  chan os.Signal    // Allows mocking in test
}

// New returns a Command for path and args with the standard streams inherited.
func New(label, path string, args ...string) *Command {
	return &Command{
		Label: label,
		Path:  path,
		Args:  args,
	}
}

// Argv returns the full argument vector passed to the child.
func (c *Command) Argv() []string {
	return slices.Concat([]string{c.Path}, c.Args)
}

func (c *Command) environ() []string {
	env := os.Environ()

	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, c.Env[k]))
	}

	return env
}

// Run starts the child, waits for it to exit and reports the result.
func (c *Command) Run(ctx context.Context) *Result {
	logger := ctxlog.Logger(ctx).With("label", c.Label)

	res := &Result{
		Label:    c.Label,
		ExitCode: -1,
		Status:   StatusError,
	}

	if c.Path == "" {
		res.Error = ErrEmptyPath
		return res
	}

	stdin, stdout := c.Stdin, c.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}

	if stdout == nil {
		stdout = os.Stdout
	}

	var stderr io.Writer = os.Stderr
	if c.Stderr != nil {
		stderr = c.Stderr
	}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		res.Error = errors.Join(ErrFailedToCreatePipe, err)
		return res
	}

	defer rErr.Close() //nolint:errcheck

	logger.Debug("starting process", "path", c.Path, "args", c.Args, "cwd", c.Cwd)

	ps, err := os.StartProcess(c.Path, c.Argv(), &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   c.environ(),
		Files: []*os.File{stdin, stdout, wErr},
	})

	// The child holds its own copy of the write end.
	_ = wErr.Close()

	if err != nil {
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		return res
	}

	startTime := time.Now()

	logger.Info("process started", "pid", ps.Pid)

	tee := teereader.NewLastLineTeeReader(rErr)
	copyDone := make(chan struct{})

	go func() {
		defer close(copyDone)

		if _, err := io.Copy(stderr, tee); err != nil {
			logger.Debug("stderr passthrough failed, discarding the rest", "error", err)
			_, _ = io.Copy(io.Discard, tee)
		}
	}()

	done := make(chan struct{})

	var (
		wg       sync.WaitGroup
		watchErr error
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		watchErr = watch(ctx, ps, sigCh, done, startTime)
	}()

	state, psErr := ps.Wait()

	close(done)
	wg.Wait()
	<-copyDone

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	res.Error = errors.Join(psErr, watchErr)
	res.LastStdErrLine = tee.GetLastLine(lastLineMaxLength)

	if res.ExitCode == 0 && res.Error == nil {
		res.Status = StatusSuccess
	} else if res.ExitCode == 0 {
		res.ExitCode = -1
	}

	logger.Info("process finished",
		"exitCode", res.ExitCode,
		"status", res.Status.String(),
		"duration", time.Since(startTime).Round(time.Millisecond).String(),
	)

	return res
}

// watch forwards signals to ps and kills it when ctx ends or a signal repeats.
// It returns once done is closed, reporting anything it had to do to the child.
func watch(ctx context.Context, ps *os.Process, sigCh <-chan os.Signal, done <-chan struct{}, startTime time.Time) error {
	logger := ctxlog.Logger(ctx)
	seen := make(map[os.Signal]struct{})

	ticker := time.NewTicker(TickerInterval)
	defer ticker.Stop()

	var errs error

	for {
		select {
		case <-ticker.C:
			logger.Debug("process still running", "pid", ps.Pid, "elapsed", time.Since(startTime).Round(time.Second).String())

		case s, ok := <-sigCh:
			if !ok {
				sigCh = nil
				continue
			}

			if _, dup := seen[s]; dup {
				logger.Info("received duplicate signal, killing process", "signal", s.String())
				killPs(ctx, ps)

				return errors.Join(errs, ErrDuplicateSignalReceived)
			}

			seen[s] = struct{}{}

			logger.Info("forwarding signal to process", "signal", s.String())

			if err := ps.Signal(s); err != nil {
				logger.Info("failed to send signal", "signal", s.String(), "error", err)
			}

			errs = errors.Join(errs, ErrSignalReceived)

		case <-ctx.Done():
			logger.Info("context done, killing process")
			killPs(ctx, ps)

			return errors.Join(errs, ErrContextDone, ctx.Err())

		case <-done:
			return errs
		}
	}
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}
