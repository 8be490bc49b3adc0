package optimizer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"

	"github.com/azle-dev/azle/internal/errors"
	"github.com/azle-dev/azle/internal/proc"
	"github.com/azle-dev/azle/internal/proc/proctest"
)

// fakeCargo returns a runner that installs an executable stub when asked
// to cargo install, and shrinks the artifact when the optimizer is run.
func fakeCargo(t *testing.T, root string) *proctest.Recorder {
	t.Helper()
	return &proctest.Recorder{
		Handler: func(_ context.Context, cmd proc.Cmd) error {
			switch {
			case cmd.Name == "cargo" && len(cmd.Args) > 0 && cmd.Args[0] == "install":
				bin := filepath.Join(root, "bin")
				if err := os.MkdirAll(bin, 0755); err != nil {
					return err
				}
				return os.WriteFile(filepath.Join(bin, filepath.Base(NewBinary(root, "").Path())), []byte("stub"), 0755)
			case strings.HasSuffix(filepath.Base(cmd.Name), Tool) || strings.HasSuffix(filepath.Base(cmd.Name), Tool+".exe"):
				return os.WriteFile(cmd.Args[2], []byte("small"), 0644)
			}
			return nil
		},
	}
}

func TestBinary_Path(t *testing.T) {
	root := t.TempDir()
	b := NewBinary(root, "cargo")

	want := filepath.Join(root, "bin", Tool)
	if runtime.GOOS == "windows" {
		want += ".exe"
	}
	require.Equal(t, want, b.Path())
}

func TestNewBinary_AbsoluteRoot(t *testing.T) {
	b := NewBinary("target", "cargo")
	require.True(t, filepath.IsAbs(b.Root), "root %q should be absolute", b.Root)
}

func TestSharedRoot(t *testing.T) {
	require.Equal(t, filepath.Join(xdg.DataHome, "azle"), SharedRoot())
}

func TestBinary_EnsureInstalled_Installs(t *testing.T) {
	root := t.TempDir()
	rec := fakeCargo(t, root)
	b := NewBinary(root, "cargo")
	b.Runner = rec

	var messages []string
	path, err := b.EnsureInstalled(context.Background(), func(msg string) {
		messages = append(messages, msg)
	})
	require.NoError(t, err)
	require.Equal(t, b.Path(), path)
	require.True(t, b.IsInstalled())

	calls := rec.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, []string{"install", Tool, "--root", root}, calls[0].Args)
	require.NotEmpty(t, messages)
}

func TestBinary_EnsureInstalled_SkipsExisting(t *testing.T) {
	root := t.TempDir()
	b := NewBinary(root, "cargo")
	require.NoError(t, os.MkdirAll(filepath.Dir(b.Path()), 0755))
	require.NoError(t, os.WriteFile(b.Path(), []byte("stub"), 0755))

	rec := &proctest.Recorder{}
	b.Runner = rec

	path, err := b.EnsureInstalled(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, b.Path(), path)
	require.Empty(t, rec.Calls(), "cargo install must not run when the tool exists")
}

func TestBinary_EnsureInstalled_Idempotent(t *testing.T) {
	root := t.TempDir()
	rec := fakeCargo(t, root)

	for i := 0; i < 2; i++ {
		b := NewBinary(root, "cargo")
		b.Runner = rec
		_, err := b.EnsureInstalled(context.Background(), nil)
		require.NoError(t, err, "run %d", i+1)
	}
	require.Len(t, rec.Calls(), 1, "second run should reuse the first install")
}

func TestBinary_EnsureInstalled_InstallFails(t *testing.T) {
	rec := &proctest.Recorder{
		Handler: func(_ context.Context, cmd proc.Cmd) error {
			return proctest.Exit(cmd, 101)
		},
	}
	b := NewBinary(t.TempDir(), "cargo")
	b.Runner = rec

	_, err := b.EnsureInstalled(context.Background(), nil)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeOptimize), "got %v", err)
	require.Equal(t, 101, errors.ExitStatus(err))
}

func TestBinary_EnsureInstalled_NothingInstalled(t *testing.T) {
	b := NewBinary(t.TempDir(), "cargo")
	b.Runner = &proctest.Recorder{}

	_, err := b.EnsureInstalled(context.Background(), nil)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeOptimize), "got %v", err)
}

func TestBinary_EnsureInstalled_CargoMissing(t *testing.T) {
	b := NewBinary(t.TempDir(), "azle-no-such-cargo")

	_, err := b.EnsureInstalled(context.Background(), nil)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeCargoNotFound), "got %v", err)
}

func TestOptimizer_Run(t *testing.T) {
	root := t.TempDir()
	artifact := filepath.Join(t.TempDir(), "counter.wasm")
	require.NoError(t, os.WriteFile(artifact, []byte("a much larger unoptimized binary"), 0644))

	rec := fakeCargo(t, root)
	b := NewBinary(root, "cargo")
	b.Runner = rec

	res, err := New(b, root).Run(context.Background(), artifact, nil)
	require.NoError(t, err)
	require.Equal(t, artifact, res.Path)
	require.EqualValues(t, len("a much larger unoptimized binary"), res.Before)
	require.EqualValues(t, len("small"), res.After)
	require.Positive(t, res.Saved())

	calls := rec.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, b.Path(), calls[1].Name)
	require.Equal(t, []string{artifact, "-o", artifact}, calls[1].Args)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	require.Equal(t, "small", string(data), "artifact must be replaced in place")
}

func TestOptimizer_Run_Failure(t *testing.T) {
	root := t.TempDir()
	artifact := filepath.Join(t.TempDir(), "counter.wasm")
	require.NoError(t, os.WriteFile(artifact, []byte("wasm"), 0644))

	install := fakeCargo(t, root)
	rec := &proctest.Recorder{
		Handler: func(ctx context.Context, cmd proc.Cmd) error {
			if cmd.Name == "cargo" {
				return install.Run(ctx, cmd)
			}
			return proctest.Exit(cmd, 3)
		},
	}
	b := NewBinary(root, "cargo")
	b.Runner = rec

	_, err := New(b, root).Run(context.Background(), artifact, nil)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeOptimizeRun), "got %v", err)
	require.Equal(t, 3, errors.ExitStatus(err))
}

func TestOptimizer_Run_MissingArtifact(t *testing.T) {
	root := t.TempDir()
	rec := fakeCargo(t, root)
	b := NewBinary(root, "cargo")
	b.Runner = rec

	_, err := New(b, root).Run(context.Background(), filepath.Join(root, "missing.wasm"), nil)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeOptimizeRun), "got %v", err)
	require.Len(t, rec.Calls(), 1, "optimizer must not run without an input binary")
}

func TestOptimizer_Run_ShellScripts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	// A fake cargo that installs a fake optimizer which truncates its input.
	tools := t.TempDir()
	cargo := filepath.Join(tools, "cargo")
	script := `#!/bin/sh
root="$4"
mkdir -p "$root/bin"
cat > "$root/bin/` + Tool + `" <<'OPT'
#!/bin/sh
printf 'opt' > "$3"
OPT
chmod +x "$root/bin/` + Tool + `"
`
	require.NoError(t, os.WriteFile(cargo, []byte(script), 0755))

	root := filepath.Join(t.TempDir(), "target")
	artifact := filepath.Join(t.TempDir(), "counter.wasm")
	require.NoError(t, os.WriteFile(artifact, []byte("unoptimized"), 0644))

	b := NewBinary(root, cargo)
	res, err := New(b, t.TempDir()).Run(context.Background(), artifact, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, res.After)

	// A second run reuses the installed tool.
	require.NoError(t, os.Remove(cargo))
	b2 := NewBinary(root, cargo)
	_, err = New(b2, t.TempDir()).Run(context.Background(), artifact, nil)
	require.NoError(t, err)
}
