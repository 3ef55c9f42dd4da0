package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
	"github.com/m-mizutani/pagesnap/pkg/infra/capture"
)

// Capture holds what to capture and how
type Capture struct {
	URLs             []string
	HTMLFilePaths    []string
	Images           []string
	ChangedHTMLFiles bool
	Command          string
	OutputDir        string

	rawURLs          string
	rawHTMLFilePaths string
	rawImages        string
}

// Flags returns CLI flags for capture configuration
func (c *Capture) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "capture-urls",
			Usage:       "Comma separated URLs to capture",
			Destination: &c.rawURLs,
			Sources:     cli.EnvVars("INPUT_CAPTURE_URLS"),
		},
		&cli.StringFlag{
			Name:        "capture-html-file-paths",
			Usage:       "Comma separated HTML file paths or glob patterns to capture",
			Destination: &c.rawHTMLFilePaths,
			Sources:     cli.EnvVars("INPUT_CAPTURE_HTML_FILE_PATHS"),
		},
		&cli.StringFlag{
			Name:        "images",
			Usage:       "Comma separated paths or glob patterns of existing images to upload",
			Destination: &c.rawImages,
			Sources:     cli.EnvVars("INPUT_IMAGES"),
		},
		&cli.BoolFlag{
			Name:        "capture-changed-html-files",
			Usage:       "Capture HTML files added or modified by the pull request",
			Destination: &c.ChangedHTMLFiles,
			Sources:     cli.EnvVars("INPUT_CAPTURE_CHANGED_HTML_FILES"),
		},
		&cli.StringFlag{
			Name:        "capture-command",
			Usage:       "Screenshot command",
			Value:       capture.DefaultCommand,
			Destination: &c.Command,
			Sources:     cli.EnvVars("INPUT_CAPTURE_COMMAND"),
		},
		&cli.StringFlag{
			Name:        "capture-output-dir",
			Usage:       "Keep captured images in this directory",
			Destination: &c.OutputDir,
			Sources:     cli.EnvVars("INPUT_CAPTURE_OUTPUT_DIR"),
		},
	}
}

// Validate parses the comma separated inputs. Entries already present (from
// the config file) are kept after the ones given on the command line.
func (c *Capture) Validate() error {
	c.URLs = mergeList(c.rawURLs, c.URLs)
	c.HTMLFilePaths = mergeList(c.rawHTMLFilePaths, c.HTMLFilePaths)
	c.Images = mergeList(c.rawImages, c.Images)

	c.Command = strings.TrimSpace(c.Command)
	if c.Command == "" {
		return goerr.Wrap(model.ErrInvalidConfig, "capture command must not be empty")
	}
	return nil
}

// SplitList splits a comma separated value, trimming entries and dropping empty ones
func SplitList(value string) []string {
	return lo.FilterMap(strings.Split(value, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}

func mergeList(raw string, existing []string) []string {
	merged := SplitList(raw)
	for _, item := range existing {
		if item = strings.TrimSpace(item); item != "" {
			merged = append(merged, item)
		}
	}
	return lo.Uniq(merged)
}
