// Package optimizer manages the canister binary size optimizer.
//
// The optimizer is installed with cargo into a local root on first use and
// reused afterwards. It rewrites the compiled binary in place.
package optimizer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/adrg/xdg"
	"go.uber.org/zap"

	"github.com/azle-dev/azle/internal/errors"
	"github.com/azle-dev/azle/internal/proc"
)

const (
	// Tool is the crate and executable name of the optimizer.
	Tool = "ic-cdk-optimizer"

	// SharedDir is the directory under the XDG data home used as the
	// install root when tools are shared between projects.
	SharedDir = "azle"
)

// SharedRoot returns the per-user install root.
func SharedRoot() string {
	return filepath.Join(xdg.DataHome, SharedDir)
}

// Binary is the optimizer executable under a cargo install root.
type Binary struct {
	// Root is the cargo install root. The executable lives in Root/bin.
	Root string

	// Cargo is the cargo executable used to install the tool.
	Cargo string

	// Dir is the working directory for the install.
	Dir string

	// Runner runs child processes. Nil means proc.Exec.
	Runner proc.Runner

	// Logger receives debug output. Nil means no logging.
	Logger *zap.Logger

	// path is the cached path to the binary.
	path string
	mu   sync.Mutex
}

// NewBinary creates a Binary installed under root with cargo.
func NewBinary(root, cargo string) *Binary {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Binary{
		Root:  root,
		Cargo: cargo,
	}
}

// Path returns where the executable is, or will be, installed.
func (b *Binary) Path() string {
	name := Tool
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(b.Root, "bin", name)
}

// IsInstalled checks if the executable is present.
func (b *Binary) IsInstalled() bool {
	info, err := os.Stat(b.Path())
	return err == nil && !info.IsDir()
}

// EnsureInstalled installs the optimizer if it is absent and returns the
// path to the executable. An existing install is reused as is.
func (b *Binary) EnsureInstalled(ctx context.Context, progress func(msg string)) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.path != "" {
		return b.path, nil
	}

	path := b.Path()
	if b.IsInstalled() {
		b.logger().Debug("optimizer already installed", zap.String("path", path))
		b.path = path
		return path, nil
	}

	if progress != nil {
		progress("Installing " + Tool + "...")
	}

	cmd := proc.Cmd{
		Name: b.Cargo,
		Args: []string{"install", Tool, "--root", b.Root},
		Dir:  b.Dir,
	}
	b.logger().Debug("running", zap.Stringer("cmd", cmd))
	if err := b.runner().Run(ctx, cmd); err != nil {
		return "", installError(b.Cargo, err)
	}

	if !b.IsInstalled() {
		return "", errors.New(errors.CodeOptimize).
			WithDetail(b.Cargo + " install finished but " + path + " does not exist")
	}

	if progress != nil {
		progress("Installed to " + path)
	}

	b.path = path
	return path, nil
}

func installError(cargo string, err error) error {
	if proc.IsNotFound(err) {
		return errors.New(errors.CodeCargoNotFound).
			WithDetail(cargo + " was not found").
			Wrap(err)
	}
	e := errors.New(errors.CodeOptimize).Wrap(err)
	if status, ok := proc.ExitStatus(err); ok {
		e.WithExitStatus(status).
			WithDetail(cargo + " install " + Tool + " exited with status " + strconv.Itoa(status))
	}
	return e
}

func (b *Binary) runner() proc.Runner {
	if b.Runner == nil {
		return proc.Exec{}
	}
	return b.Runner
}

func (b *Binary) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// Result reports the artifact size around an optimization.
type Result struct {
	// Path is the optimized binary.
	Path string

	// Before is the size of the input binary in bytes.
	Before int64

	// After is the size of the optimized binary in bytes.
	After int64
}

// Saved returns the number of bytes removed.
func (r Result) Saved() int64 {
	return r.Before - r.After
}

// Optimizer runs the optimizer over compiled binaries.
type Optimizer struct {
	binary *Binary
	dir    string
	runner proc.Runner
	logger *zap.Logger
}

// New creates an Optimizer for binary. Commands run in dir.
func New(binary *Binary, dir string) *Optimizer {
	return &Optimizer{
		binary: binary,
		dir:    dir,
		runner: binary.runner(),
		logger: binary.logger(),
	}
}

// Run optimizes the binary at artifact in place, installing the tool first
// if needed.
func (o *Optimizer) Run(ctx context.Context, artifact string, progress func(msg string)) (*Result, error) {
	tool, err := o.binary.EnsureInstalled(ctx, progress)
	if err != nil {
		return nil, err
	}

	before, err := os.Stat(artifact)
	if err != nil {
		return nil, errors.New(errors.CodeOptimizeRun).
			WithDetail("Compiled binary not found at " + artifact).
			Wrap(err)
	}

	cmd := proc.Cmd{
		Name: tool,
		Args: []string{artifact, "-o", artifact},
		Dir:  o.dir,
	}
	o.logger.Debug("running", zap.Stringer("cmd", cmd))
	if err := o.runner.Run(ctx, cmd); err != nil {
		e := errors.New(errors.CodeOptimizeRun).Wrap(err)
		if status, ok := proc.ExitStatus(err); ok {
			e.WithExitStatus(status).
				WithDetail(Tool + " exited with status " + strconv.Itoa(status))
		}
		return nil, e
	}

	after, err := os.Stat(artifact)
	if err != nil {
		return nil, errors.New(errors.CodeOptimizeRun).
			WithDetail(Tool + " did not leave a binary at " + artifact).
			Wrap(err)
	}

	return &Result{
		Path:   artifact,
		Before: before.Size(),
		After:  after.Size(),
	}, nil
}
