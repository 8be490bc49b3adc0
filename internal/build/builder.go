package build

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/azle-dev/azle/internal/config"
	"github.com/azle-dev/azle/internal/errors"
	"github.com/azle-dev/azle/internal/manifest"
	"github.com/azle-dev/azle/internal/optimizer"
	"github.com/azle-dev/azle/internal/proc"
	"github.com/azle-dev/azle/internal/telemetry"
	"github.com/azle-dev/azle/internal/transpile"
	"github.com/azle-dev/azle/internal/verify"
)

// Pipeline stages, in execution order.
const (
	StageResolve    = "resolve"
	StageWorkspace  = "workspace-manifest"
	StagePackage    = "package-manifest"
	StageEntryPoint = "entry-point"
	StageCompile    = "compile"
	StageOptimize   = "optimize"
	StageVerify     = "verify"
)

// Result contains the build output.
type Result struct {
	// Canister is the resolved canister configuration.
	Canister *config.CanisterSpec

	// Duration is how long the build took.
	Duration time.Duration

	// WorkspaceManifest is the path of the generated workspace manifest.
	WorkspaceManifest string

	// PackageManifest is the path of the generated package manifest.
	PackageManifest string

	// EntryPoint is the path of the generated library source.
	EntryPoint string

	// Artifact is the path of the optimized binary.
	Artifact string

	// UnoptimizedSize is the size of the compiled binary in bytes.
	UnoptimizedSize int64

	// OptimizedSize is the size of the optimized binary in bytes.
	OptimizedSize int64

	// Verification is the artifact report. Nil unless verification is
	// enabled.
	Verification *verify.Report

	// Stages holds the wall time of each completed stage.
	Stages []StageTiming

	// Warnings are non-fatal findings for the user.
	Warnings []string
}

// StageTiming is the duration of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Options configures the builder.
type Options struct {
	// Transpiler converts the canister script into library source. Nil
	// means the external command named by Settings.Transpiler.
	Transpiler transpile.Transpiler

	// Runner runs cargo and the optimizer. Nil means proc.Exec.
	Runner proc.Runner

	// Logger receives structured diagnostics. Nil means no logging.
	Logger *zap.Logger

	// TracerProvider supplies stage spans. Nil means the global provider.
	TracerProvider trace.TracerProvider

	// Metrics collects build metrics. Nil disables collection.
	Metrics *telemetry.Metrics

	// Color forces colored compiler output.
	Color bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder runs the canister build pipeline.
type Builder struct {
	settings config.Settings
	options  Options

	logger     *zap.Logger
	tracer     trace.Tracer
	runner     proc.Runner
	transpiler transpile.Transpiler
}

// New creates a new builder.
func New(settings config.Settings, options Options) *Builder {
	settings.ApplyDefaults()
	if abs, err := filepath.Abs(settings.ProjectDir); err == nil {
		settings.ProjectDir = abs
	}

	b := &Builder{
		settings:   settings,
		options:    options,
		logger:     telemetry.OrNop(options.Logger),
		tracer:     telemetry.Tracer(options.TracerProvider),
		runner:     options.Runner,
		transpiler: options.Transpiler,
	}
	if b.runner == nil {
		b.runner = proc.Exec{}
	}
	if b.transpiler == nil {
		cmd := transpile.NewCommand(settings.Transpiler, settings.ProjectDir)
		cmd.Runner = b.runner
		b.transpiler = cmd
	}
	return b
}

// Settings returns the effective settings.
func (b *Builder) Settings() config.Settings {
	return b.settings
}

// Build builds the named canister. The first failing stage aborts the
// pipeline and its error is returned.
func (b *Builder) Build(ctx context.Context, canister string) (result *Result, err error) {
	start := time.Now()
	result = &Result{}
	log := b.logger.With(zap.String("canister", canister))

	defer func() {
		b.options.Metrics.Finish(canister, err, time.Now())
		if werr := b.options.Metrics.WriteFile(b.settings.MetricsFile); werr != nil {
			log.Warn("writing metrics failed", zap.String("path", b.settings.MetricsFile), zap.Error(werr))
		}
	}()

	var spec *config.CanisterSpec
	err = b.stage(ctx, result, canister, StageResolve, "Resolving "+canister+"...", func(ctx context.Context) error {
		var err error
		spec, err = b.resolve(canister)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Canister = spec

	pkgDir := b.settings.PackageDir(spec.RootPath)
	result.WorkspaceManifest = b.settings.WorkspaceManifestPath()
	result.PackageManifest = filepath.Join(pkgDir, "Cargo.toml")
	result.EntryPoint = EntryPointPath(pkgDir)
	result.Artifact = b.settings.ArtifactPath(spec.Name)

	if spec.OutputBinaryPath == "" {
		spec.OutputBinaryPath = result.Artifact
	} else if declared := b.settings.Resolve(spec.OutputBinaryPath); filepath.Clean(declared) != result.Artifact {
		msg := "dfx.json declares wasm " + spec.OutputBinaryPath + " but the optimized binary is written to " + result.Artifact
		result.Warnings = append(result.Warnings, msg)
		log.Warn("declared wasm path differs from artifact path",
			zap.String("declared", spec.OutputBinaryPath),
			zap.String("artifact", result.Artifact))
	}

	err = b.stage(ctx, result, canister, StageWorkspace, "Writing workspace manifest...", func(ctx context.Context) error {
		return manifest.NewWorkspace(spec.RootPath).WriteFile(result.WorkspaceManifest)
	})
	if err != nil {
		return nil, err
	}

	err = b.stage(ctx, result, canister, StagePackage, "Writing package manifest...", func(ctx context.Context) error {
		return manifest.NewPackage(spec.Name).WriteFile(result.PackageManifest)
	})
	if err != nil {
		return nil, err
	}

	err = b.stage(ctx, result, canister, StageEntryPoint, "Transpiling "+spec.ScriptPath+"...", func(ctx context.Context) error {
		return b.generateEntryPoint(ctx, spec, pkgDir)
	})
	if err != nil {
		return nil, err
	}

	err = b.stage(ctx, result, canister, StageCompile, "Compiling "+spec.Name+"...", func(ctx context.Context) error {
		return b.compile(ctx, spec.Name)
	})
	if err != nil {
		return nil, err
	}

	err = b.stage(ctx, result, canister, StageOptimize, "Optimizing binary...", func(ctx context.Context) error {
		res, err := b.optimize(ctx, result.Artifact)
		if err != nil {
			return err
		}
		result.UnoptimizedSize = res.Before
		result.OptimizedSize = res.After
		b.options.Metrics.SetArtifactSize(canister, telemetry.PhaseUnoptimized, res.Before)
		b.options.Metrics.SetArtifactSize(canister, telemetry.PhaseOptimized, res.After)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if b.settings.Verify {
		err = b.stage(ctx, result, canister, StageVerify, "Verifying binary...", func(ctx context.Context) error {
			report, err := verify.File(ctx, result.Artifact, b.settings.SizeCeiling)
			if err != nil {
				return err
			}
			result.Verification = report
			b.options.Metrics.SetExports(canister, len(report.Exports))
			if report.OverCeiling() {
				result.Warnings = append(result.Warnings,
					"optimized binary exceeds the deployment size ceiling")
				log.Warn("binary over size ceiling",
					zap.Int64("size", report.Size),
					zap.Int64("ceiling", report.SizeCeiling))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	log.Info("build complete",
		zap.Duration("duration", result.Duration),
		zap.String("artifact", result.Artifact))
	return result, nil
}

// resolve loads the project manifest and resolves the canister.
func (b *Builder) resolve(canister string) (*config.CanisterSpec, error) {
	m, err := config.LoadFile(b.settings.ManifestPath())
	if err != nil {
		return nil, err
	}
	return m.Canister(canister)
}

// optimize installs the optimizer if needed and runs it over artifact.
func (b *Builder) optimize(ctx context.Context, artifact string) (*optimizer.Result, error) {
	root := b.settings.ToolRootPath()
	if b.settings.SharedTools {
		root = optimizer.SharedRoot()
	}

	bin := optimizer.NewBinary(root, b.settings.Cargo)
	bin.Dir = b.settings.ProjectDir
	bin.Runner = b.runner
	bin.Logger = b.logger

	return optimizer.New(bin, b.settings.ProjectDir).Run(ctx, artifact, b.progress)
}

// stage runs one pipeline stage inside a span, recording its duration.
func (b *Builder) stage(ctx context.Context, result *Result, canister, name, msg string, fn func(ctx context.Context) error) error {
	b.progress(msg)
	b.logger.Debug("stage started", zap.String("canister", canister), zap.String("stage", name))

	ctx, span := telemetry.StartStage(ctx, b.tracer, canister, name)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	var code string
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		code = coded.Code
	}
	telemetry.EndStage(span, code, err)

	if err != nil {
		b.logger.Debug("stage failed",
			zap.String("canister", canister),
			zap.String("stage", name),
			zap.Error(err))
		return err
	}

	b.options.Metrics.ObserveStage(canister, name, elapsed)
	result.Stages = append(result.Stages, StageTiming{Stage: name, Duration: elapsed})
	b.logger.Debug("stage finished",
		zap.String("canister", canister),
		zap.String("stage", name),
		zap.Duration("duration", elapsed))
	return nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}
