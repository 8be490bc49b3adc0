// Package errors provides structured, actionable error messages for azle.
//
// Every failure the build pipeline can report is registered here under a
// stable code. A code maps to:
//   - A category (config, generate, transpile, toolchain, optimize, verify)
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Codes
//
//	E100  Project manifest not found
//	E101  Canister not found            (ConfigNotFound)
//	E102  Malformed canister config     (MalformedConfig)
//	E110  Cannot create directory       (DirectoryCreateError)
//	E111  Cannot read script source     (SourceReadError)
//	E112  Cannot write generated file
//	E120  Transpilation failed          (TranspileError)
//	E130  Cargo build failed            (BuildError)
//	E131  Cargo not found
//	E140  Optimizer install failed      (OptimizeError)
//	E141  Optimizer run failed          (OptimizeRunError)
//	E150  Artifact verification failed
//
// # Usage
//
//	err := errors.New(errors.CodeTranspile).
//	    WithLocation("src/index.ts", 12, 5).
//	    WithDetail("Unexpected token '}'")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E120: Transpilation failed
//	//
//	//   src/index.ts:12:5
//	//
//	//     10 │ export function inc(): void {
//	//     11 │     count += 1;
//	//   → 12 │ }}
//	//        │     ^
//	//
//	//   Unexpected token '}'
//	//
//	//   Learn more: https://azle.dev/docs/errors/E120
package errors
