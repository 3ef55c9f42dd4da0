package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
	"github.com/m-mizutani/pagesnap/pkg/infra/upload"
)

// Upload backends
const (
	UploadToGitHubBranch = "github_branch"
	UploadToImgur        = "imgur"
	UploadToS3           = "s3"
)

// Branch setup modes of the github_branch backend
const (
	BranchSetupAPI = "api"
	BranchSetupGit = "git"
)

// Upload holds the upload backend configuration
type Upload struct {
	To            string
	ImgurClientID string
	BranchSetup   string

	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3Endpoint  string
	S3PublicURL string

	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Flags returns CLI flags for upload configuration
func (c *Upload) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "upload-to",
			Usage:       "Upload backend (github_branch, imgur, s3)",
			Value:       UploadToGitHubBranch,
			Destination: &c.To,
			Sources:     cli.EnvVars("INPUT_UPLOAD_TO"),
		},
		&cli.StringFlag{
			Name:        "imgur-client-id",
			Usage:       "Imgur application client ID",
			Destination: &c.ImgurClientID,
			Sources:     cli.EnvVars("INPUT_IMGUR_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "branch-setup",
			Usage:       "How the upload branch is created (api, git)",
			Value:       BranchSetupAPI,
			Destination: &c.BranchSetup,
			Sources:     cli.EnvVars("INPUT_BRANCH_SETUP"),
		},
		&cli.StringFlag{
			Name:        "s3-bucket",
			Usage:       "S3 bucket for the s3 backend",
			Destination: &c.S3Bucket,
			Sources:     cli.EnvVars("INPUT_S3_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "S3 region",
			Destination: &c.S3Region,
			Sources:     cli.EnvVars("INPUT_S3_REGION"),
		},
		&cli.StringFlag{
			Name:        "s3-prefix",
			Usage:       "Key prefix of uploaded objects",
			Destination: &c.S3Prefix,
			Sources:     cli.EnvVars("INPUT_S3_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "Custom S3 endpoint (MinIO, R2, ...)",
			Destination: &c.S3Endpoint,
			Sources:     cli.EnvVars("INPUT_S3_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "s3-public-url",
			Usage:       "Public URL root that serves the bucket",
			Destination: &c.S3PublicURL,
			Sources:     cli.EnvVars("INPUT_S3_PUBLIC_URL"),
		},
		&cli.StringFlag{
			Name:        "s3-access-key-id",
			Usage:       "Access key ID for the s3 backend (default credential chain when empty)",
			Destination: &c.S3AccessKeyID,
			Sources:     cli.EnvVars("INPUT_S3_ACCESS_KEY_ID"),
		},
		&cli.StringFlag{
			Name:        "s3-secret-access-key",
			Usage:       "Secret access key for the s3 backend",
			Destination: &c.S3SecretAccessKey,
			Sources:     cli.EnvVars("INPUT_S3_SECRET_ACCESS_KEY"),
		},
	}
}

// Validate normalizes the backend name and checks backend specific settings.
// An unknown backend name falls back to github_branch.
func (c *Upload) Validate() error {
	c.To = strings.ToLower(strings.TrimSpace(c.To))
	switch c.To {
	case UploadToGitHubBranch, UploadToImgur, UploadToS3:
	default:
		c.To = UploadToGitHubBranch
	}

	c.BranchSetup = strings.ToLower(strings.TrimSpace(c.BranchSetup))
	switch c.BranchSetup {
	case "":
		c.BranchSetup = BranchSetupAPI
	case BranchSetupAPI, BranchSetupGit:
	default:
		return goerr.Wrap(model.ErrInvalidConfig, "invalid branch setup mode", goerr.V("branch_setup", c.BranchSetup))
	}

	if c.To == UploadToS3 && c.S3Bucket == "" {
		return goerr.Wrap(model.ErrInvalidConfig, "s3 backend requires a bucket")
	}
	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		return goerr.Wrap(model.ErrInvalidConfig, "s3 access key ID and secret access key must be set together")
	}
	return nil
}

// S3ClientConfig returns the settings for building the S3 client
func (c *Upload) S3ClientConfig() upload.S3ClientConfig {
	return upload.S3ClientConfig{
		Region:          c.S3Region,
		Endpoint:        c.S3Endpoint,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
}
