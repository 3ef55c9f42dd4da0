package ghaction

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
)

// Workflow prints GitHub Actions workflow commands and writes step outputs.
// Outside of Actions it prints colored section headers instead.
type Workflow struct {
	w          io.Writer
	actions    bool
	outputPath string
}

// Option is a functional option for Workflow
type Option func(*Workflow)

// WithWriter sets the destination of workflow commands (default os.Stdout)
func WithWriter(w io.Writer) Option {
	return func(x *Workflow) {
		x.w = w
	}
}

// WithActions forces workflow command mode on or off
func WithActions(enabled bool) Option {
	return func(x *Workflow) {
		x.actions = enabled
	}
}

// WithOutputPath sets the step output file (GITHUB_OUTPUT)
func WithOutputPath(path string) Option {
	return func(x *Workflow) {
		x.outputPath = path
	}
}

// New creates a Workflow configured from GITHUB_ACTIONS and GITHUB_OUTPUT
func New(opts ...Option) *Workflow {
	x := &Workflow{
		w:          os.Stdout,
		actions:    os.Getenv("GITHUB_ACTIONS") == "true",
		outputPath: strings.TrimSpace(os.Getenv("GITHUB_OUTPUT")),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Group opens a collapsible log group. Call the returned function to close it.
func (x *Workflow) Group(title string) func() {
	if !x.actions {
		header := color.New(color.FgCyan, color.Bold)
		_, _ = header.Fprintf(x.w, "==> %s\n", title)
		return func() {}
	}

	fmt.Fprintf(x.w, "::group::%s\n", escapeData(title))
	return func() {
		fmt.Fprintln(x.w, "::endgroup::")
	}
}

// Warning emits a warning annotation
func (x *Workflow) Warning(msg string) {
	if !x.actions {
		_, _ = color.New(color.FgYellow).Fprintf(x.w, "warning: %s\n", msg)
		return
	}
	fmt.Fprintf(x.w, "::warning::%s\n", escapeData(msg))
}

// Error emits an error annotation
func (x *Workflow) Error(msg string) {
	if !x.actions {
		_, _ = color.New(color.FgRed).Fprintf(x.w, "error: %s\n", msg)
		return
	}
	fmt.Fprintf(x.w, "::error::%s\n", escapeData(msg))
}

// SetOutput appends a step output. It is a no-op when no output file is configured.
func (x *Workflow) SetOutput(key, value string) error {
	if x.outputPath == "" || strings.TrimSpace(key) == "" {
		return nil
	}

	f, err := os.OpenFile(x.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open step output file", goerr.V("path", x.outputPath))
	}
	defer f.Close()

	if strings.Contains(value, "\n") {
		delimiter := "EOF"
		for strings.Contains(value, delimiter) {
			delimiter += "_"
		}
		_, err = fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
	} else {
		_, err = fmt.Fprintf(f, "%s=%s\n", key, value)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to write step output", goerr.V("key", key))
	}
	return nil
}

// escapeData escapes a workflow command message
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
