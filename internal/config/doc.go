// Package config resolves canister configuration for azle builds.
//
// The project manifest is dfx.json at the project root. This package reads
// it once per run and extracts the paths the rest of the pipeline needs for
// a single named canister. No later stage re-reads the manifest.
//
// # Project Manifest Structure
//
//	{
//	  "canisters": {
//	    "counter": {
//	      "type": "custom",
//	      "build": "npx azle counter",
//	      "root": "canisters/counter",
//	      "ts": "canisters/counter/src/index.ts",
//	      "candid": "canisters/counter/src/index.did",
//	      "wasm": "target/wasm32-unknown-unknown/release/counter.wasm"
//	    }
//	  }
//	}
//
// # Usage
//
//	manifest, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//
//	spec, err := manifest.Canister("counter")
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println("Root:", spec.RootPath)
//
// Settings carries the remaining run configuration (toolchain locations,
// optional stages). It is built once by the command layer and passed by
// value into the pipeline.
package config
