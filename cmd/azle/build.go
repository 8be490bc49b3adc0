package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/azle-dev/azle/internal/build"
	"github.com/azle-dev/azle/internal/config"
	"github.com/azle-dev/azle/internal/errors"
	"github.com/azle-dev/azle/internal/telemetry"
)

// buildOptions holds the command-line flags.
type buildOptions struct {
	verbose     bool
	quiet       bool
	project     string
	verify      bool
	sharedTools bool
	metricsFile string
	transpiler  string
	errFormat   string
}

// Error output formats.
const (
	formatHuman   = "human"
	formatCompact = "compact"
	formatJSON    = "json"
)

func (o *buildOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log every stage and command")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Only print warnings and errors")
	flags.StringVarP(&o.project, "project", "p", "", "Project directory containing dfx.json (default: nearest parent)")
	flags.BoolVar(&o.verify, "verify", false, "Check the optimized binary with wazero after building")
	flags.BoolVar(&o.sharedTools, "shared-tools", false, "Install ic-cdk-optimizer in the per-user data directory")
	flags.StringVar(&o.metricsFile, "metrics-file", "", "Write build metrics in Prometheus text format to this file")
	flags.StringVar(&o.transpiler, "transpiler", "", "Transpiler executable (default $"+config.EnvTranspiler+" or "+config.DefaultTranspiler+")")
	flags.StringVar(&o.errFormat, "error-format", "", "Error output: human, compact or json (default: compact with --quiet, else human)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// errorFormat returns the error output format. Unknown values fall back to
// human so a bad flag is still reported readably.
func (o *buildOptions) errorFormat() string {
	switch o.errFormat {
	case formatHuman, formatCompact, formatJSON:
		return o.errFormat
	case "":
		if o.quiet {
			return formatCompact
		}
	}
	return formatHuman
}

// settings builds the run configuration from flags and environment.
func (o *buildOptions) settings() (config.Settings, error) {
	dir := o.project
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Settings{}, err
		}
		dir = wd
		if root, err := config.FindProjectRoot(wd); err == nil {
			dir = root
		}
	}

	s := config.FromEnv(dir)
	if o.transpiler != "" {
		s.Transpiler = o.transpiler
	}
	s.Transpiler = absTool(s.Transpiler)
	s.Cargo = absTool(s.Cargo)
	s.Verify = o.verify
	s.SharedTools = o.sharedTools
	s.MetricsFile = o.metricsFile
	return s, nil
}

// absTool resolves a tool path given relative to the working directory.
// Child processes run in the project directory, so "./bin/tp" would
// otherwise be looked up there. Bare names are left for PATH lookup.
func absTool(name string) string {
	if !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

func (o *buildOptions) logLevel() zapcore.Level {
	switch {
	case o.verbose:
		return zapcore.DebugLevel
	case o.quiet:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// progress returns the stage progress printer.
func progress(quiet bool) func(step string) {
	return func(step string) {
		if !quiet {
			info("%s", step)
		}
	}
}

func runBuild(ctx context.Context, canister string, opts buildOptions) error {
	if f := opts.errFormat; f != "" && f != opts.errorFormat() {
		return errors.Newf(errors.CategoryCLI, "unknown --error-format %q", f).
			WithSuggestion("Use one of human, compact or json")
	}

	settings, err := opts.settings()
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(stderr, telemetry.LoggerOptions{
		Level: opts.logLevel(),
		Color: colorOutput,
	})
	defer logger.Sync()

	var metrics *telemetry.Metrics
	if settings.MetricsFile != "" {
		metrics = telemetry.NewMetrics()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := build.New(settings, build.Options{
		Logger:     logger.Named("build"),
		Metrics:    metrics,
		Color:      colorOutput && stdoutIsTerm,
		OnProgress: progress(opts.quiet),
	})
	logger.Debug("settings",
		zap.String("project", builder.Settings().ProjectDir),
		zap.String("cargo", builder.Settings().Cargo),
		zap.String("transpiler", builder.Settings().Transpiler))

	result, err := builder.Build(ctx, canister)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		warn("%s", w)
	}
	if opts.quiet {
		return nil
	}

	fmt.Fprintln(stdout)
	success("Built %s in %s", canister, result.Duration.Round(time.Millisecond))
	detail("%s", result.Artifact)
	detail("%s → %s", formatBytes(result.UnoptimizedSize), formatBytes(result.OptimizedSize))
	if r := result.Verification; r != nil {
		detail("%d exported functions, %d canister methods", len(r.Exports), len(r.Methods()))
	}
	return nil
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
