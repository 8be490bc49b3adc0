// Package transpile defines the boundary to the script-to-native source
// transpiler.
//
// The pipeline treats the transpiler as a black box: it hands over a
// script path and its text, and receives native source text or a
// diagnostic. Transpilers may run in process (Func) or as an external
// executable (Command).
package transpile

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/azle-dev/azle/internal/proc"
)

// Transpiler converts script source into native source.
type Transpiler interface {
	// Transpile returns the native source for the script at path. A
	// failure to transpile should be reported as a *Diagnostic.
	Transpile(ctx context.Context, path, source string) (string, error)
}

// Func adapts a function to the Transpiler interface.
type Func func(ctx context.Context, path, source string) (string, error)

// Transpile calls f.
func (f Func) Transpile(ctx context.Context, path, source string) (string, error) {
	return f(ctx, path, source)
}

// Diagnostic is a transpiler failure, optionally pointing into the source.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (d *Diagnostic) Error() string {
	if d.Line == 0 {
		if d.File == "" {
			return d.Message
		}
		return d.File + ": " + d.Message
	}
	loc := d.File + ":" + strconv.Itoa(d.Line)
	if d.Column > 0 {
		loc += ":" + strconv.Itoa(d.Column)
	}
	return loc + ": " + d.Message
}

// Command runs an external transpiler executable.
//
// The executable receives the script path as its only argument and the
// script text on stdin, and writes native source to stdout. A nonzero exit
// is a diagnostic; its stderr is parsed with ParseDiagnostic.
type Command struct {
	// Path is the executable.
	Path string

	// Dir is the working directory.
	Dir string

	// Runner runs the process. Nil means proc.Exec.
	Runner proc.Runner
}

// NewCommand returns a Command for the executable at path.
func NewCommand(path, dir string) *Command {
	return &Command{Path: path, Dir: dir}
}

// Transpile runs the executable over source.
func (c *Command) Transpile(ctx context.Context, path, source string) (string, error) {
	runner := c.Runner
	if runner == nil {
		runner = proc.Exec{}
	}

	var stdout, stderr bytes.Buffer
	err := runner.Run(ctx, proc.Cmd{
		Name:   c.Path,
		Args:   []string{path},
		Dir:    c.Dir,
		Stdin:  strings.NewReader(source),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		if _, ok := proc.ExitStatus(err); ok {
			return "", ParseDiagnostic(path, stderr.String())
		}
		return "", err
	}
	return stdout.String(), nil
}

// ParseDiagnostic extracts a diagnostic from transpiler error output.
//
// The first line of the form "file:line:col: message" or "file:line:
// message" supplies the location. Output without a location becomes a
// message-only diagnostic attributed to path.
func ParseDiagnostic(path, output string) *Diagnostic {
	output = strings.TrimSpace(output)
	for _, line := range strings.Split(output, "\n") {
		if d, ok := parseLocated(strings.TrimSpace(line)); ok {
			return d
		}
	}
	if output == "" {
		output = "transpiler failed without output"
	}
	return &Diagnostic{File: path, Message: output}
}

// parseLocated parses "file:line[:col]: message". The file part may itself
// contain colons, so the first numeric field after it marks the location.
func parseLocated(line string) (*Diagnostic, bool) {
	parts := strings.Split(line, ":")
	for i := 1; i <= len(parts)-2; i++ {
		ln, err := strconv.Atoi(parts[i])
		if err != nil || ln <= 0 {
			continue
		}
		d := &Diagnostic{File: strings.Join(parts[:i], ":"), Line: ln}
		rest := parts[i+1:]
		if len(rest) >= 2 {
			if col, err := strconv.Atoi(rest[0]); err == nil {
				d.Column = col
				rest = rest[1:]
			}
		}
		d.Message = strings.TrimSpace(strings.Join(rest, ":"))
		return d, true
	}
	return nil, false
}
