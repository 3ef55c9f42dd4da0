package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// Comment holds pull request comment configuration
type Comment struct {
	AttachmentMessage   string
	EditPreviousComment bool
}

// Flags returns CLI flags for comment configuration
func (c *Comment) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "custom-attachment-msg",
			Usage:       "Message that opens the comment and identifies earlier ones",
			Value:       "Screenshots for commit",
			Destination: &c.AttachmentMessage,
			Sources:     cli.EnvVars("INPUT_CUSTOM_ATTACHMENT_MSG"),
		},
		&cli.BoolFlag{
			Name:        "edit-previous-comment",
			Usage:       "Mark the previous screenshot comment as outdated",
			Value:       true,
			Destination: &c.EditPreviousComment,
			Sources:     cli.EnvVars("INPUT_EDIT_PREVIOUS_COMMENT"),
		},
	}
}

// Validate checks the attachment message
func (c *Comment) Validate() error {
	c.AttachmentMessage = strings.TrimSpace(c.AttachmentMessage)
	if c.AttachmentMessage == "" {
		return goerr.Wrap(model.ErrInvalidConfig, "custom attachment message must not be empty")
	}
	return nil
}
