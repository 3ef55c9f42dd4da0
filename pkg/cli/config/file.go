package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// File is an optional TOML configuration file
type File struct {
	Path string
}

type fileConfig struct {
	Capture struct {
		URLs             []string `toml:"urls"`
		HTMLFilePaths    []string `toml:"html_file_paths"`
		Images           []string `toml:"images"`
		ChangedHTMLFiles *bool    `toml:"changed_html_files"`
	} `toml:"capture"`
	Comment struct {
		CustomAttachmentMsg *string `toml:"custom_attachment_msg"`
		EditPreviousComment *bool   `toml:"edit_previous_comment"`
	} `toml:"comment"`
}

// Flags returns CLI flags for the config file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML config file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("PAGESNAP_CONFIG"),
		},
	}
}

// Apply merges the file into capture and comment settings. Lists are appended;
// a scalar is used only when isSet reports its flag as not given.
func (c *File) Apply(isSet func(name string) bool, capture *Capture, comment *Comment) error {
	if c.Path == "" {
		return nil
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return goerr.Wrap(model.ErrInvalidConfig, "failed to open config file",
			goerr.V("path", c.Path),
			goerr.V("error", err.Error()),
		)
	}
	defer f.Close()

	var cfg fileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return goerr.Wrap(model.ErrInvalidConfig, "failed to parse config file",
			goerr.V("path", c.Path),
			goerr.V("error", err.Error()),
		)
	}

	capture.URLs = append(capture.URLs, cfg.Capture.URLs...)
	capture.HTMLFilePaths = append(capture.HTMLFilePaths, cfg.Capture.HTMLFilePaths...)
	capture.Images = append(capture.Images, cfg.Capture.Images...)
	if cfg.Capture.ChangedHTMLFiles != nil && !isSet("capture-changed-html-files") {
		capture.ChangedHTMLFiles = *cfg.Capture.ChangedHTMLFiles
	}

	if cfg.Comment.CustomAttachmentMsg != nil && !isSet("custom-attachment-msg") {
		comment.AttachmentMessage = *cfg.Comment.CustomAttachmentMsg
	}
	if cfg.Comment.EditPreviousComment != nil && !isSet("edit-previous-comment") {
		comment.EditPreviousComment = *cfg.Comment.EditPreviousComment
	}
	return nil
}
