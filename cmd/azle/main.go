package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/azle-dev/azle/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Output streams and color state for the helpers below.
var (
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
	colorOutput            = true
	stdoutIsTerm           = false
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func main() {
	detectTerminal()

	rootCmd, opts := rootCmd()
	if err := rootCmd.Execute(); err != nil {
		reportError(err, opts.errorFormat())
		os.Exit(errors.ExitStatus(err))
	}
}

func rootCmd() (*cobra.Command, *buildOptions) {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "azle <canister>",
		Short: "Build a TypeScript canister into an optimized WebAssembly binary",
		Long: `Azle builds a canister declared in dfx.json.

The canister's TypeScript entry point is transpiled to Rust, compiled for
wasm32-unknown-unknown with cargo, and shrunk with ic-cdk-optimizer.

Examples:
  azle counter
  azle counter --verify
  azle counter -p ./examples/counter --shared-tools`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), args[0], *opts)
		},
	}

	opts.register(cmd)
	cmd.AddCommand(versionCmd())

	return cmd, opts
}

// reportError prints err in the given format. Errors without a code come
// from argument parsing and get a usage hint.
func reportError(err error, format string) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.Newf(errors.CategoryCLI, "%s", err).
			WithSuggestion("Run 'azle --help' for usage.")
	}

	switch format {
	case formatCompact:
		fmt.Fprintln(stderr, e.FormatCompact())
	case formatJSON:
		fmt.Fprintln(stderr, e.FormatJSON())
	default:
		errors.Fprint(stderr, e)
	}
}

// detectTerminal disables color when output is not a terminal or NO_COLOR
// is set.
func detectTerminal() {
	stdoutIsTerm = term.IsTerminal(int(os.Stdout.Fd()))
	if !stdoutIsTerm || !term.IsTerminal(int(os.Stderr.Fd())) || os.Getenv("NO_COLOR") != "" {
		disableColor()
	}
}

func disableColor() {
	colorOutput = false
	errors.DisableColors()
}

func render(style lipgloss.Style, text string) string {
	if !colorOutput {
		return text
	}
	return style.Render(text)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", render(successStyle, "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// detail prints a secondary line.
func detail(format string, args ...any) {
	fmt.Fprintf(stdout, "    %s\n", render(dimStyle, fmt.Sprintf(format, args...)))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", render(warnStyle, "⚠"), fmt.Sprintf(format, args...))
}
