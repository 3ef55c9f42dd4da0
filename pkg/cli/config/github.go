package config

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
	githubinfra "github.com/m-mizutani/pagesnap/pkg/infra/github"
)

const (
	defaultServerURL = "https://github.com"
	defaultAPIURL    = "https://api.github.com"
)

// GitHub holds the workflow context and GitHub credentials
type GitHub struct {
	Repository string
	Ref        string
	EventName  string
	EventPath  string
	RunID      string
	SHA        string
	ServerURL  string
	APIURL     string

	Token             string
	AppID             int64
	AppInstallationID int64
	AppPrivateKey     string

	BotLogin string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-repository",
			Usage:       "Repository in owner/repo form",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "github-ref",
			Usage:       "Git ref of the workflow run (refs/pull/<n>/merge)",
			Destination: &c.Ref,
			Sources:     cli.EnvVars("GITHUB_REF"),
		},
		&cli.StringFlag{
			Name:        "github-event-name",
			Usage:       "Name of the event that triggered the workflow",
			Destination: &c.EventName,
			Sources:     cli.EnvVars("GITHUB_EVENT_NAME"),
		},
		&cli.StringFlag{
			Name:        "github-event-path",
			Usage:       "Path of the event payload file",
			Destination: &c.EventPath,
			Sources:     cli.EnvVars("GITHUB_EVENT_PATH"),
		},
		&cli.StringFlag{
			Name:        "github-run-id",
			Usage:       "Workflow run ID",
			Destination: &c.RunID,
			Sources:     cli.EnvVars("GITHUB_RUN_ID"),
		},
		&cli.StringFlag{
			Name:        "github-sha",
			Usage:       "Commit SHA of the workflow run",
			Destination: &c.SHA,
			Sources:     cli.EnvVars("GITHUB_SHA"),
		},
		&cli.StringFlag{
			Name:        "github-server-url",
			Usage:       "GitHub web URL",
			Value:       defaultServerURL,
			Destination: &c.ServerURL,
			Sources:     cli.EnvVars("GITHUB_SERVER_URL"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API URL",
			Value:       defaultAPIURL,
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("INPUT_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (instead of a token)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("INPUT_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.AppInstallationID,
			Sources:     cli.EnvVars("INPUT_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM content or file path)",
			Destination: &c.AppPrivateKey,
			Sources:     cli.EnvVars("INPUT_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "bot-login",
			Usage:       "Login of the account that posts comments",
			Value:       "github-actions[bot]",
			Destination: &c.BotLogin,
			Sources:     cli.EnvVars("INPUT_BOT_LOGIN"),
		},
	}
}

// UseApp reports whether GitHub App credentials are configured
func (c *GitHub) UseApp() bool {
	return c.AppID != 0 || c.AppInstallationID != 0 || c.AppPrivateKey != ""
}

// Validate checks the credentials
func (c *GitHub) Validate() error {
	if c.UseApp() {
		if c.AppID == 0 || c.AppInstallationID == 0 || c.AppPrivateKey == "" {
			return goerr.Wrap(model.ErrInvalidConfig, "GitHub App auth needs app ID, installation ID and private key",
				goerr.V("app_id", c.AppID),
				goerr.V("installation_id", c.AppInstallationID),
			)
		}
		return nil
	}

	if c.Token == "" {
		return goerr.Wrap(model.ErrInvalidConfig, "GitHub token is required")
	}
	return nil
}

// NewClient creates an authenticated GitHub API client
func (c *GitHub) NewClient(ctx context.Context) (interfaces.GitHubClient, error) {
	var opts []githubinfra.Option
	if c.APIURL != "" && strings.TrimSuffix(c.APIURL, "/") != defaultAPIURL {
		opts = append(opts, githubinfra.WithBaseURL(c.APIURL))
	}

	if !c.UseApp() {
		return githubinfra.NewClient(githubinfra.NewTokenHTTPClient(ctx, c.Token), opts...)
	}

	key, err := c.privateKey()
	if err != nil {
		return nil, err
	}
	httpClient, err := githubinfra.NewAppHTTPClient(c.AppID, c.AppInstallationID, key, c.APIURL)
	if err != nil {
		return nil, err
	}
	return githubinfra.NewClient(httpClient, opts...)
}

func (c *GitHub) privateKey() ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(c.AppPrivateKey), "-----BEGIN") {
		return []byte(c.AppPrivateKey), nil
	}

	key, err := os.ReadFile(c.AppPrivateKey)
	if err != nil {
		return nil, goerr.Wrap(model.ErrInvalidConfig, "failed to read GitHub App private key file",
			goerr.V("path", c.AppPrivateKey),
			goerr.V("error", err.Error()),
		)
	}
	return key, nil
}
