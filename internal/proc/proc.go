// Package proc runs toolchain child processes.
//
// Every process is run synchronously. Standard streams are inherited from
// the invoking process unless the command overrides them, so compiler
// diagnostics reach the terminal unmodified.
package proc

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Cmd describes one child process invocation.
type Cmd struct {
	// Name is the executable. A name without a path separator is looked up
	// on PATH.
	Name string

	// Args are the arguments, not including Name.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=value entries appended to the inherited
	// environment.
	Env []string

	// Stdin, Stdout and Stderr override the inherited streams when set.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line for logging.
func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner runs a command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Cmd) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, cmd Cmd) error {
	return f(ctx, cmd)
}

// Exec is the Runner backed by os/exec.
type Exec struct{}

// Run starts the command and waits for it to exit. A nonzero exit is
// returned as an *ExitError.
func (Exec) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	cmd.Stdin = os.Stdin
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}
	cmd.Stdout = os.Stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = os.Stderr
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return &ExitError{Cmd: c.String(), Status: exitErr.ExitCode(), err: err}
	}
	if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Name: c.Name, err: err}
	}
	return err
}

// ExitError reports a child process that ran and exited unsuccessfully.
type ExitError struct {
	Cmd    string
	Status int
	err    error
}

func (e *ExitError) Error() string {
	return e.Cmd + ": exit status " + strconv.Itoa(e.Status)
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// NotFoundError reports an executable that could not be located.
type NotFoundError struct {
	Name string
	err  error
}

func (e *NotFoundError) Error() string {
	return e.err.Error()
}

func (e *NotFoundError) Unwrap() error {
	return e.err
}

// ExitStatus returns the exit status carried by err, if any.
func ExitStatus(err error) (int, bool) {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Status, true
	}
	return 0, false
}

// IsNotFound reports whether err means the executable does not exist.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}
