// Package build runs the canister build pipeline.
//
// A build turns one canister declared in dfx.json into an optimized
// WebAssembly binary. The stages run strictly in order and the first
// failure aborts the rest:
//
//  1. resolve the canister from dfx.json
//  2. write the workspace manifest (./Cargo.toml)
//  3. write the package manifest (<root>/Cargo.toml)
//  4. transpile the script into <root>/src/lib.rs
//  5. cargo build --target wasm32-unknown-unknown --package <name> --release
//  6. install ic-cdk-optimizer if needed and optimize the binary in place
//  7. optionally verify the optimized binary
//
// # Usage
//
//	builder := build.New(config.FromEnv(dir), build.Options{
//	    OnProgress: func(step string) { fmt.Println(step) },
//	})
//	result, err := builder.Build(ctx, "counter")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Built %s in %s\n", result.Artifact, result.Duration)
//
// # Output Structure
//
//	Cargo.toml                 # workspace, one member
//	canisters/counter/
//	├── Cargo.toml             # package manifest
//	└── src/lib.rs             # transpiled entry point
//	target/
//	├── bin/ic-cdk-optimizer
//	└── wasm32-unknown-unknown/release/counter.wasm
package build
