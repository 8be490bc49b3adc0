package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/azle-dev/azle/internal/errors"
)

const (
	// ManifestFileName is the name of the project manifest.
	ManifestFileName = "dfx.json"

	// DefaultTarget is the compilation target triple for canisters.
	DefaultTarget = "wasm32-unknown-unknown"

	// ReleaseProfile is the cargo profile directory for release builds.
	ReleaseProfile = "release"
)

// ProjectManifest maps canister names to their raw configuration.
//
// Entries are validated lazily by Canister so that a malformed entry for
// one canister does not prevent building another.
type ProjectManifest struct {
	canisters map[string]json.RawMessage

	// path stores the path the manifest was loaded from.
	path string
}

// CanisterSpec holds the resolved paths for one canister.
type CanisterSpec struct {
	// Name is the canister name. It is also the cargo package name.
	Name string

	// RootPath is the package directory, exactly as written in the manifest.
	RootPath string

	// ScriptPath is the script source entry point.
	ScriptPath string

	// InterfaceDescriptionPath is the candid interface file.
	InterfaceDescriptionPath string

	// OutputBinaryPath is the wasm path declared in the manifest. Empty when
	// the manifest does not declare one.
	OutputBinaryPath string
}

// rawManifest is the on-disk shape of dfx.json this package reads.
type rawManifest struct {
	Canisters map[string]json.RawMessage `json:"canisters"`
}

// Load reads the project manifest from the specified directory.
func Load(dir string) (*ProjectManifest, error) {
	return LoadFile(filepath.Join(dir, ManifestFileName))
}

// LoadFile reads the project manifest from the specified file path.
func LoadFile(path string) (*ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		e := errors.New(errors.CodeManifestNotFound).Wrap(err)
		if os.IsNotExist(err) {
			e.WithDetail("No " + ManifestFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run azle from the project root or pass --project")
		}
		return nil, e
	}

	return Parse(path, data)
}

// Parse decodes project manifest bytes. The path is used for error messages
// and to resolve the project directory.
func Parse(path string, data []byte) (*ProjectManifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.CodeMalformedConfig).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ManifestFileName + " is valid JSON")
	}
	if raw.Canisters == nil {
		return nil, errors.New(errors.CodeMalformedConfig).
			WithDetail(path + " has no \"canisters\" object")
	}

	return &ProjectManifest{
		canisters: raw.Canisters,
		path:      path,
	}, nil
}

// Path returns the path the manifest was loaded from.
func (m *ProjectManifest) Path() string {
	return m.path
}

// Dir returns the directory containing the manifest.
func (m *ProjectManifest) Dir() string {
	if m.path == "" {
		return ""
	}
	return filepath.Dir(m.path)
}

// Names returns the declared canister names in sorted order.
func (m *ProjectManifest) Names() []string {
	names := make([]string, 0, len(m.canisters))
	for name := range m.canisters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canister resolves the named canister's configuration.
//
// Returns E101 if the name is not declared and E102 if any of root, ts or
// candid is missing or not a string. The wasm field is optional.
func (m *ProjectManifest) Canister(name string) (*CanisterSpec, error) {
	raw, ok := m.canisters[name]
	if !ok {
		e := errors.New(errors.CodeConfigNotFound).
			WithDetail("Canister '" + name + "' is not declared in " + ManifestFileName)
		if names := m.Names(); len(names) > 0 {
			e.WithSuggestion("Declared canisters: " + strings.Join(names, ", "))
		}
		return nil, e
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, errors.New(errors.CodeMalformedConfig).
			WithDetail("Canister '" + name + "' must be a JSON object")
	}

	spec := &CanisterSpec{Name: name}
	required := []struct {
		key string
		dst *string
	}{
		{"root", &spec.RootPath},
		{"ts", &spec.ScriptPath},
		{"candid", &spec.InterfaceDescriptionPath},
	}
	for _, f := range required {
		v, err := stringField(fields, f.key, true)
		if err != nil {
			return nil, errors.New(errors.CodeMalformedConfig).
				WithDetail("Canister '" + name + "': " + err.Error())
		}
		*f.dst = v
	}

	wasm, err := stringField(fields, "wasm", false)
	if err != nil {
		return nil, errors.New(errors.CodeMalformedConfig).
			WithDetail("Canister '" + name + "': " + err.Error())
	}
	spec.OutputBinaryPath = wasm

	return spec, nil
}

type fieldError struct {
	key     string
	missing bool
}

func (e *fieldError) Error() string {
	if e.missing {
		return "field \"" + e.key + "\" is required"
	}
	return "field \"" + e.key + "\" must be a non-empty string"
}

// stringField extracts a string field from a decoded JSON object.
func stringField(fields map[string]any, key string, required bool) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		if required {
			return "", &fieldError{key: key, missing: true}
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &fieldError{key: key}
	}
	return s, nil
}

// Exists checks if a project manifest exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ManifestFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing dfx.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeManifestNotFound).
				WithDetail("No " + ManifestFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run azle from a directory inside a dfx project")
		}
		dir = parent
	}
}
