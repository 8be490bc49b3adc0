// Package verify checks an optimized canister binary before it is handed
// to deployment.
//
// Verification compiles the module with wazero without instantiating it,
// so imports from the host system API need not be satisfied. It reports the
// exported functions and whether the binary fits the deployment size
// ceiling.
package verify

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"

	"github.com/azle-dev/azle/internal/errors"
)

// Canister entry points are exported with these prefixes.
const (
	QueryPrefix  = "canister_query "
	UpdatePrefix = "canister_update "
)

// Report describes a verified binary.
type Report struct {
	// Path is the verified binary.
	Path string

	// Size is the binary size in bytes.
	Size int64

	// SizeCeiling is the limit the binary was checked against. Zero
	// disables the check.
	SizeCeiling int64

	// Exports lists the exported function names in sorted order.
	Exports []string

	// Imports lists imported functions as "module.name" in sorted order.
	Imports []string
}

// OverCeiling reports whether the binary exceeds the size ceiling.
func (r *Report) OverCeiling() bool {
	return r.SizeCeiling > 0 && r.Size > r.SizeCeiling
}

// Methods returns the canister methods exported by the binary, without
// their query or update prefix.
func (r *Report) Methods() []string {
	var methods []string
	for _, name := range r.Exports {
		switch {
		case strings.HasPrefix(name, QueryPrefix):
			methods = append(methods, strings.TrimPrefix(name, QueryPrefix))
		case strings.HasPrefix(name, UpdatePrefix):
			methods = append(methods, strings.TrimPrefix(name, UpdatePrefix))
		}
	}
	return methods
}

// File verifies the binary at path.
func File(ctx context.Context, path string, sizeCeiling int64) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeVerify).
			WithDetail("Cannot read " + path).
			Wrap(err)
	}
	report, err := Bytes(ctx, data, sizeCeiling)
	if err != nil {
		return nil, err
	}
	report.Path = path
	return report, nil
}

// Bytes verifies an in-memory binary.
func Bytes(ctx context.Context, data []byte, sizeCeiling int64) (*Report, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.New(errors.CodeVerify).
			WithDetail("The optimized binary is not a valid WebAssembly module").
			Wrap(err)
	}
	defer compiled.Close(ctx)

	report := &Report{
		Size:        int64(len(data)),
		SizeCeiling: sizeCeiling,
	}
	for name := range compiled.ExportedFunctions() {
		report.Exports = append(report.Exports, name)
	}
	sort.Strings(report.Exports)

	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		report.Imports = append(report.Imports, module+"."+name)
	}
	sort.Strings(report.Imports)

	return report, nil
}
