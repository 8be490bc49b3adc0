package build

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/azle-dev/azle/internal/config"
	"github.com/azle-dev/azle/internal/errors"
	"github.com/azle-dev/azle/internal/manifest"
	"github.com/azle-dev/azle/internal/proc"
	"github.com/azle-dev/azle/internal/transpile"
)

const (
	// SourceDir is the library source directory inside a package.
	SourceDir = "src"

	// EntryPointFile is the generated library entry point.
	EntryPointFile = "lib.rs"
)

// EntryPointPath returns the entry point path for a package directory.
func EntryPointPath(pkgDir string) string {
	return filepath.Join(pkgDir, SourceDir, EntryPointFile)
}

// generateEntryPoint transpiles the canister script into the package's
// library entry point.
func (b *Builder) generateEntryPoint(ctx context.Context, spec *config.CanisterSpec, pkgDir string) error {
	srcDir := filepath.Join(pkgDir, SourceDir)
	if err := os.MkdirAll(srcDir, manifest.DirMode); err != nil {
		return errors.New(errors.CodeDirectoryCreate).
			WithDetail("Cannot create " + srcDir).
			Wrap(err)
	}

	scriptPath := b.settings.Resolve(spec.ScriptPath)
	source, err := os.ReadFile(scriptPath)
	if err != nil {
		return errors.New(errors.CodeSourceRead).
			WithDetail("Cannot read " + spec.ScriptPath).
			Wrap(err)
	}

	b.logger.Debug("transpiling",
		zap.String("script", scriptPath),
		zap.Int("bytes", len(source)))

	native, err := b.transpiler.Transpile(ctx, scriptPath, string(source))
	if err != nil {
		return b.transpileError(scriptPath, err)
	}

	out := EntryPointPath(pkgDir)
	if err := os.WriteFile(out, []byte(native), manifest.FileMode); err != nil {
		return errors.New(errors.CodeWrite).
			WithDetail("Failed to write " + out).
			Wrap(err)
	}
	return nil
}

// transpileError converts a transpiler failure into a coded error,
// attaching the source location when the diagnostic has one.
func (b *Builder) transpileError(scriptPath string, err error) error {
	var coded *errors.Error
	if stderrors.As(err, &coded) && coded.Code == errors.CodeTranspile {
		return coded
	}

	e := errors.New(errors.CodeTranspile).Wrap(err)

	var d *transpile.Diagnostic
	if stderrors.As(err, &d) {
		e.WithDetail(d.Message)
		if d.Line > 0 {
			file := d.File
			if file == "" {
				file = scriptPath
			}
			e.WithLocation(b.settings.Resolve(file), d.Line, d.Column)
		}
		return e
	}

	if proc.IsNotFound(err) {
		e.WithDetail("The transpiler " + b.settings.Transpiler + " was not found").
			WithSuggestion("Install it or point --transpiler (or $" + config.EnvTranspiler + ") at it")
	}
	return e
}
