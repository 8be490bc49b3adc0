package build

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/azle-dev/azle/internal/errors"
	"github.com/azle-dev/azle/internal/proc"
)

// CompileArgs returns the cargo arguments that build a canister package.
func CompileArgs(target, pkg string) []string {
	return []string{"build", "--target", target, "--package", pkg, "--release"}
}

// compile runs cargo against the generated package. Compiler output goes
// straight to the terminal.
func (b *Builder) compile(ctx context.Context, pkg string) error {
	cmd := proc.Cmd{
		Name: b.settings.Cargo,
		Args: CompileArgs(b.settings.Target, pkg),
		Dir:  b.settings.ProjectDir,
	}
	if b.options.Color {
		cmd.Env = append(cmd.Env, "CARGO_TERM_COLOR=always")
	}

	b.logger.Debug("running", zap.Stringer("cmd", cmd))
	err := b.runner.Run(ctx, cmd)
	if err == nil {
		return nil
	}

	if proc.IsNotFound(err) {
		return errors.New(errors.CodeCargoNotFound).
			WithDetail(b.settings.Cargo + " was not found").
			Wrap(err)
	}
	e := errors.New(errors.CodeBuild).Wrap(err)
	if status, ok := proc.ExitStatus(err); ok {
		e.WithExitStatus(status).
			WithDetail("cargo build exited with status " + strconv.Itoa(status))
	}
	return e
}
