// Package proctest provides a recording proc.Runner for tests.
package proctest

import (
	"context"
	"sync"

	"github.com/azle-dev/azle/internal/proc"
)

// Recorder records every command it is asked to run. Handler, when set,
// decides the outcome of each call; otherwise every call succeeds.
type Recorder struct {
	Handler func(ctx context.Context, cmd proc.Cmd) error

	mu    sync.Mutex
	calls []proc.Cmd
}

// Run records cmd and delegates to Handler.
func (r *Recorder) Run(ctx context.Context, cmd proc.Cmd) error {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	if r.Handler == nil {
		return nil
	}
	return r.Handler(ctx, cmd)
}

// Calls returns a copy of the recorded commands in call order.
func (r *Recorder) Calls() []proc.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]proc.Cmd(nil), r.calls...)
}

// Names returns the executable and first argument of each recorded call,
// e.g. "cargo build".
func (r *Recorder) Names() []string {
	calls := r.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
		if len(c.Args) > 0 {
			names[i] += " " + c.Args[0]
		}
	}
	return names
}

// Exit returns the error a real runner reports for a nonzero exit.
func Exit(cmd proc.Cmd, status int) error {
	return &proc.ExitError{Cmd: cmd.String(), Status: status}
}
