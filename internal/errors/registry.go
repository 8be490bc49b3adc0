package errors

// Registered error codes.
const (
	CodeManifestNotFound = "E100"
	CodeConfigNotFound   = "E101"
	CodeMalformedConfig  = "E102"
	CodeDirectoryCreate  = "E110"
	CodeSourceRead       = "E111"
	CodeWrite            = "E112"
	CodeTranspile        = "E120"
	CodeBuild            = "E130"
	CodeCargoNotFound    = "E131"
	CodeOptimize         = "E140"
	CodeOptimizeRun      = "E141"
	CodeVerify           = "E150"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E109)
	// ============================================

	CodeManifestNotFound: {
		Category: CategoryConfig,
		Message:  "Project manifest not found",
		Detail:   "The dfx.json project manifest could not be read.",
		DocURL:   "https://azle.dev/docs/errors/E100",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Canister not found",
		Detail:   "The requested canister is not declared in the project manifest.",
		DocURL:   "https://azle.dev/docs/errors/E101",
	},
	CodeMalformedConfig: {
		Category: CategoryConfig,
		Message:  "Malformed canister configuration",
		Detail:   "A required canister field is missing or is not a string.",
		DocURL:   "https://azle.dev/docs/errors/E102",
	},

	// ============================================
	// Generation Errors (E110-E119)
	// ============================================

	CodeDirectoryCreate: {
		Category: CategoryGenerate,
		Message:  "Cannot create directory",
		Detail:   "The canister source directory could not be created.",
		DocURL:   "https://azle.dev/docs/errors/E110",
	},
	CodeSourceRead: {
		Category: CategoryGenerate,
		Message:  "Cannot read script source",
		Detail:   "The canister's script source file could not be read.",
		DocURL:   "https://azle.dev/docs/errors/E111",
	},
	CodeWrite: {
		Category: CategoryGenerate,
		Message:  "Cannot write generated file",
		Detail:   "A generated manifest or entry point could not be written.",
		DocURL:   "https://azle.dev/docs/errors/E112",
	},

	// ============================================
	// Transpile Errors (E120-E129)
	// ============================================

	CodeTranspile: {
		Category: CategoryTranspile,
		Message:  "Transpilation failed",
		Detail:   "The transpiler rejected the canister's script source.",
		DocURL:   "https://azle.dev/docs/errors/E120",
	},

	// ============================================
	// Toolchain Errors (E130-E139)
	// ============================================

	CodeBuild: {
		Category: CategoryToolchain,
		Message:  "Cargo build failed",
		Detail:   "The cargo build command failed. Check the output above for compiler errors.",
		DocURL:   "https://azle.dev/docs/errors/E130",
	},
	CodeCargoNotFound: {
		Category: CategoryToolchain,
		Message:  "Cargo not found",
		Detail:   "Cargo is not installed or not in PATH.",
		DocURL:   "https://azle.dev/docs/errors/E131",
	},

	// ============================================
	// Optimizer Errors (E140-E149)
	// ============================================

	CodeOptimize: {
		Category: CategoryOptimize,
		Message:  "Optimizer install failed",
		Detail:   "The ic-cdk-optimizer tool could not be installed.",
		DocURL:   "https://azle.dev/docs/errors/E140",
	},
	CodeOptimizeRun: {
		Category: CategoryOptimize,
		Message:  "Optimizer run failed",
		Detail:   "The ic-cdk-optimizer tool exited with a nonzero status.",
		DocURL:   "https://azle.dev/docs/errors/E141",
	},

	// ============================================
	// Verification Errors (E150-E159)
	// ============================================

	CodeVerify: {
		Category: CategoryVerify,
		Message:  "Artifact verification failed",
		Detail:   "The optimized binary is not a valid WebAssembly module.",
		DocURL:   "https://azle.dev/docs/errors/E150",
	},
}
