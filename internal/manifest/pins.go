package manifest

// Package identity and target shape shared by every generated canister.
const (
	PackageVersion = "0.0.0"
	Edition        = "2018"
	CrateType      = "cdylib"
)

// Pinned dependency versions.
//
// These are exact pins. The generated entry point links against the
// embedded interpreter and the CDK at these versions.
const (
	ICCDKVersion       = "0.3.2"
	ICCDKMacrosVersion = "0.3.2"
	BoaGit             = "https://github.com/lastmjs/boa-azle"
	GetrandomVersion   = "0.2.3"
	SerdeVersion       = "1.0.130"
	SerdeJSONVersion   = "1.0.68"
)

// Dependencies is the fixed dependency set of a canister package.
//
// Field order is the order written to the manifest.
type Dependencies struct {
	ICCDK       string          `toml:"ic-cdk"`
	ICCDKMacros string          `toml:"ic-cdk-macros"`
	Boa         GitDependency   `toml:"Boa,inline"`
	Getrandom   CrateDependency `toml:"getrandom,inline"`
	Serde       string          `toml:"serde"`
	SerdeJSON   string          `toml:"serde_json"`
}

// GitDependency is a dependency fetched from a git repository.
type GitDependency struct {
	Git string `toml:"git"`
}

// CrateDependency is a registry dependency with enabled features.
type CrateDependency struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features,omitempty"`
}

// Pins returns the pinned dependency set.
func Pins() Dependencies {
	return Dependencies{
		ICCDK:       ICCDKVersion,
		ICCDKMacros: ICCDKMacrosVersion,
		Boa:         GitDependency{Git: BoaGit},
		Getrandom: CrateDependency{
			Version:  GetrandomVersion,
			Features: []string{"custom"},
		},
		Serde:     SerdeVersion,
		SerdeJSON: SerdeJSONVersion,
	}
}
