package capture

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

const (
	// DefaultCommand is the page-rendering tool invoked per target
	DefaultCommand = "capture-website"

	// launchOptions disables the Chromium sandbox, which is unavailable in CI containers
	launchOptions = `{"args":["--no-sandbox"]}`
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Command runs an external capture tool and collects the rendered image
type Command struct {
	command   string
	outputDir string
}

// Option is a functional option for Command
type Option func(*Command)

// WithCommand sets the capture executable (name in PATH or absolute path)
func WithCommand(command string) Option {
	return func(c *Command) {
		if command != "" {
			c.command = command
		}
	}
}

// WithOutputDir makes the tool write images into dir instead of stdout.
// Files are kept after the run so the workflow can publish them as artifacts.
func WithOutputDir(dir string) Option {
	return func(c *Command) {
		c.outputDir = dir
	}
}

// New creates a Capturer backed by an external command
func New(opts ...Option) interfaces.Capturer {
	c := &Command{command: DefaultCommand}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture renders the target and returns the image bytes
func (c *Command) Capture(ctx context.Context, target *model.CaptureTarget) ([]byte, error) {
	input, err := commandInput(target)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--launch-options", launchOptions,
		"--full-page",
	}

	var outputPath string
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return nil, goerr.Wrap(err, "failed to create capture output directory", goerr.V("dir", c.outputDir))
		}
		outputPath = filepath.Join(c.outputDir, OutputName(target.DisplayName))
		args = append(args, "--output="+outputPath)
	}
	args = append(args, input)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	ctxlog.From(ctx).Debug("Running capture command",
		"command", c.command,
		"target", target.DisplayName,
		"kind", target.Kind,
		"input", input,
	)

	if err := cmd.Run(); err != nil {
		return nil, goerr.Wrap(err, "capture command failed",
			goerr.V("command", c.command),
			goerr.V("target", target.DisplayName),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
		)
	}

	data := stdout.Bytes()
	if outputPath != "" {
		raw, err := os.ReadFile(outputPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read captured image",
				goerr.V("target", target.DisplayName),
				goerr.V("path", outputPath),
			)
		}
		data = raw
	}

	if len(data) == 0 {
		return nil, goerr.New("capture command produced no image",
			goerr.V("command", c.command),
			goerr.V("target", target.DisplayName),
		)
	}

	return data, nil
}

// commandInput is the positional argument handed to the tool. File paths
// always start with "./" or "/" so names from a pull request cannot be
// parsed as options.
func commandInput(target *model.CaptureTarget) (string, error) {
	name := target.DisplayName
	if target.Kind == model.TargetHTMLFile {
		if filepath.IsAbs(name) {
			return filepath.Clean(name), nil
		}
		return "." + string(filepath.Separator) + filepath.Clean(name), nil
	}

	if strings.HasPrefix(name, "-") {
		return "", goerr.New("capture target looks like an option", goerr.V("target", name))
	}
	return name, nil
}

// OutputName is the file name used for a target in output-dir mode. A short
// digest of the display name keeps targets that sanitize alike apart.
func OutputName(displayName string) string {
	name := unsafeChars.ReplaceAllString(displayName, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "screenshot"
	}
	sum := sha256.Sum256([]byte(displayName))
	return name + "-" + hex.EncodeToString(sum[:4]) + ".png"
}
