package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/azle-dev/azle/internal/errors"
)

// Header is written at the top of every generated manifest.
const Header = "# This code is automatically generated by Azle\n\n"

const (
	// DirMode is the permission mode for created package directories.
	DirMode os.FileMode = 0755

	// FileMode is the permission mode for generated files.
	FileMode os.FileMode = 0644
)

// Workspace is the top-level cargo workspace manifest.
type Workspace struct {
	Workspace WorkspaceSection `toml:"workspace"`
	Profile   ProfileSection   `toml:"profile"`
}

// WorkspaceSection lists the packages participating in the build.
type WorkspaceSection struct {
	Members []string `toml:"members"`
}

// ProfileSection holds the build profiles of the workspace.
type ProfileSection struct {
	Release Profile `toml:"release"`
}

// Profile holds code generation settings for one cargo profile.
type Profile struct {
	LTO      bool   `toml:"lto"`
	OptLevel string `toml:"opt-level"`
}

// NewWorkspace returns the workspace manifest for a single member.
//
// The member is used verbatim; no existence check is performed.
func NewWorkspace(member string) *Workspace {
	return &Workspace{
		Workspace: WorkspaceSection{
			Members: []string{member},
		},
		Profile: ProfileSection{
			Release: Profile{
				LTO:      true,
				OptLevel: "z",
			},
		},
	}
}

// Encode returns the manifest text.
func (w *Workspace) Encode() ([]byte, error) {
	return encode(w)
}

// WriteFile writes the manifest to path, replacing any existing file.
func (w *Workspace) WriteFile(path string) error {
	data, err := w.Encode()
	if err != nil {
		return errors.New(errors.CodeWrite).Wrap(err)
	}
	return writeFile(path, data)
}

// ParseWorkspace decodes workspace manifest text.
func ParseWorkspace(data []byte) (*Workspace, error) {
	var w Workspace
	if err := toml.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Package is the per-canister cargo package manifest.
type Package struct {
	Package      PackageSection `toml:"package"`
	Lib          LibSection     `toml:"lib"`
	Dependencies Dependencies   `toml:"dependencies"`
}

// PackageSection holds the package identity.
type PackageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

// LibSection describes the library target.
type LibSection struct {
	CrateType []string `toml:"crate-type"`
}

// NewPackage returns the package manifest for the named canister.
func NewPackage(name string) *Package {
	return &Package{
		Package: PackageSection{
			Name:    name,
			Version: PackageVersion,
			Edition: Edition,
		},
		Lib: LibSection{
			CrateType: []string{CrateType},
		},
		Dependencies: Pins(),
	}
}

// Encode returns the manifest text.
func (p *Package) Encode() ([]byte, error) {
	return encode(p)
}

// WriteFile writes the manifest to path, replacing any existing file. The
// containing package directory is created if absent.
func (p *Package) WriteFile(path string) error {
	data, err := p.Encode()
	if err != nil {
		return errors.New(errors.CodeWrite).Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return errors.New(errors.CodeDirectoryCreate).Wrap(err)
	}
	return writeFile(path, data)
}

// ParsePackage decodes package manifest text.
func ParsePackage(data []byte) (*Package, error) {
	var p Package
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// encode serializes v behind the generated-code header.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, FileMode); err != nil {
		return errors.New(errors.CodeWrite).
			WithDetail("Failed to write " + path).
			Wrap(err)
	}
	return nil
}
