// Package manifest generates the cargo manifests for a canister build.
//
// Two files are produced on every run and fully overwritten:
//
//	Cargo.toml                  workspace manifest at the project root
//	<root>/Cargo.toml           package manifest for the canister
//
// Both are built from typed structs and encoded with go-toml, so the
// generated text can be decoded back into the same structs. The dependency
// pin set in Pins is a compile-time contract with the embedded script
// runtime; changing any version is a release of this tool.
//
// # Usage
//
//	ws := manifest.NewWorkspace("./canisters/counter")
//	if err := ws.WriteFile("Cargo.toml"); err != nil {
//	    return err
//	}
//
//	pkg := manifest.NewPackage("counter")
//	if err := pkg.WriteFile("canisters/counter/Cargo.toml"); err != nil {
//	    return err
//	}
package manifest
