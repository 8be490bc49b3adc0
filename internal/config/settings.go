package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultCargo is the cargo executable looked up on PATH.
	DefaultCargo = "cargo"

	// DefaultToolRoot is the install root for the optimizer, relative to the
	// project directory.
	DefaultToolRoot = "target"

	// DefaultTranspiler is the transpiler executable looked up on PATH.
	DefaultTranspiler = "azle-transpile"

	// DefaultSizeCeiling is the deployment size limit for an optimized
	// canister binary, in bytes.
	DefaultSizeCeiling int64 = 2 << 20
)

// Environment variables read by FromEnv.
const (
	EnvCargo      = "CARGO"
	EnvTranspiler = "AZLE_TRANSPILER"
)

// Settings is the run configuration threaded through the pipeline.
//
// It is constructed once, before the pipeline starts, and is never re-read
// from flags or the environment mid-run.
type Settings struct {
	// ProjectDir is the directory containing dfx.json. Generated files and
	// child processes are rooted here.
	ProjectDir string

	// ManifestFile is the project manifest file name inside ProjectDir.
	ManifestFile string

	// Cargo is the cargo executable.
	Cargo string

	// Target is the compilation target triple.
	Target string

	// ToolRoot is the cargo install root for the optimizer.
	ToolRoot string

	// SharedTools installs the optimizer into the per-user data directory
	// instead of ToolRoot.
	SharedTools bool

	// Transpiler is the transpiler executable used when no in-process
	// transpiler is supplied.
	Transpiler string

	// Verify enables post-optimization artifact verification.
	Verify bool

	// SizeCeiling is the size limit reported by verification, in bytes.
	SizeCeiling int64

	// MetricsFile, when set, receives build metrics in the Prometheus text
	// exposition format.
	MetricsFile string
}

// DefaultSettings returns settings rooted at dir with all defaults applied.
func DefaultSettings(dir string) Settings {
	s := Settings{ProjectDir: dir}
	s.ApplyDefaults()
	return s
}

// FromEnv returns settings rooted at dir, taking toolchain locations from
// the environment where set.
func FromEnv(dir string) Settings {
	s := DefaultSettings(dir)
	if v := strings.TrimSpace(os.Getenv(EnvCargo)); v != "" {
		s.Cargo = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTranspiler)); v != "" {
		s.Transpiler = v
	}
	return s
}

// ApplyDefaults fills in default values for empty fields.
func (s *Settings) ApplyDefaults() {
	if s.ProjectDir == "" {
		s.ProjectDir = "."
	}
	if s.ManifestFile == "" {
		s.ManifestFile = ManifestFileName
	}
	if s.Cargo == "" {
		s.Cargo = DefaultCargo
	}
	if s.Target == "" {
		s.Target = DefaultTarget
	}
	if s.ToolRoot == "" {
		s.ToolRoot = DefaultToolRoot
	}
	if s.Transpiler == "" {
		s.Transpiler = DefaultTranspiler
	}
	if s.SizeCeiling == 0 {
		s.SizeCeiling = DefaultSizeCeiling
	}
}

// ManifestPath returns the path to the project manifest.
func (s Settings) ManifestPath() string {
	return s.resolve(s.ManifestFile)
}

// WorkspaceManifestPath returns the path of the generated workspace manifest.
func (s Settings) WorkspaceManifestPath() string {
	return filepath.Join(s.ProjectDir, "Cargo.toml")
}

// PackageDir returns the canister's package directory. rootPath is taken
// verbatim from the resolved CanisterSpec.
func (s Settings) PackageDir(rootPath string) string {
	return s.resolve(rootPath)
}

// TargetDir returns cargo's target directory.
func (s Settings) TargetDir() string {
	return filepath.Join(s.ProjectDir, "target")
}

// ArtifactPath returns the deterministic path of the compiled binary for a
// package. Cargo replaces hyphens with underscores in cdylib file names.
func (s Settings) ArtifactPath(packageName string) string {
	file := strings.ReplaceAll(packageName, "-", "_") + ".wasm"
	return filepath.Join(s.TargetDir(), s.Target, ReleaseProfile, file)
}

// ToolRootPath returns the absolute or project-relative optimizer install
// root.
func (s Settings) ToolRootPath() string {
	return s.resolve(s.ToolRoot)
}

// Resolve returns a manifest-relative path rooted at ProjectDir. Absolute
// paths are returned unchanged.
func (s Settings) Resolve(path string) string {
	return s.resolve(path)
}

// resolve joins a project-relative path onto ProjectDir.
func (s Settings) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.ProjectDir, path)
}
