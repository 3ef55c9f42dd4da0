package upload

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

const (
	// DefaultBranch is the branch that stores uploaded screenshots
	DefaultBranch = "webpage-screenshot-action-branch"

	// DefaultDirectory is the directory on DefaultBranch that holds the images
	DefaultDirectory = "webpage-screenshots"

	// DefaultServerURL is the web root used to build raw content URLs
	DefaultServerURL = "https://github.com"
)

// BotIdentity is the author and committer of screenshot commits
var BotIdentity = model.Identity{
	Name:  "github-actions[bot]",
	Email: "github-actions[bot]@users.noreply.github.com",
}

// GitHubBranch commits images to a dedicated branch of the repository with the contents API
type GitHubBranch struct {
	queue
	client    interfaces.GitHubClient
	ensurer   interfaces.BranchEnsurer
	pr        *model.PullRequest
	serverURL string
	branch    string
	directory string
}

// GitHubBranchOption is a functional option for GitHubBranch
type GitHubBranchOption func(*GitHubBranch)

// WithServerURL sets the web root of the GitHub server (GITHUB_SERVER_URL)
func WithServerURL(serverURL string) GitHubBranchOption {
	return func(u *GitHubBranch) {
		u.serverURL = strings.TrimSuffix(serverURL, "/")
	}
}

// WithBranch overrides the upload branch name
func WithBranch(branch string) GitHubBranchOption {
	return func(u *GitHubBranch) {
		u.branch = branch
	}
}

// NewGitHubBranch creates a repository-branch uploader for the pull request's repository
func NewGitHubBranch(client interfaces.GitHubClient, ensurer interfaces.BranchEnsurer, pr *model.PullRequest, opts ...GitHubBranchOption) interfaces.Uploader {
	u := &GitHubBranch{
		client:    client,
		ensurer:   ensurer,
		pr:        pr,
		serverURL: DefaultServerURL,
		branch:    DefaultBranch,
		directory: DefaultDirectory,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload makes sure the branch exists and then commits every queued image
func (u *GitHubBranch) Upload(ctx context.Context) []*model.UploadedImage {
	if u.Len() == 0 {
		return []*model.UploadedImage{}
	}
	logger := ctxlog.From(ctx)

	if err := u.ensurer.EnsureBranch(ctx, u.branch); err != nil {
		logger.Error("Failed to set up upload branch, skipping repository upload",
			"branch", u.branch,
			"skipped", u.Len(),
			"error", err,
		)
		u.items = nil
		return []*model.UploadedImage{}
	}

	message := fmt.Sprintf("[webpage-screenshot-action] Added Screenshots for PR #%d", u.pr.Number)

	return u.flush(ctx, "github_branch", func(ctx context.Context, item *model.CapturedImage) (string, error) {
		path := u.directory + "/" + item.Filename
		err := u.client.CreateFile(ctx, u.pr.Owner, u.pr.Repo, &model.RepositoryFile{
			Path:      path,
			Branch:    u.branch,
			Message:   message,
			Content:   item.Data,
			Committer: BotIdentity,
		})
		if err != nil {
			return "", err
		}
		return u.rawURL(item.Filename), nil
	})
}

func (u *GitHubBranch) rawURL(filename string) string {
	return fmt.Sprintf("%s/%s/raw/%s/%s/%s",
		u.serverURL,
		u.pr.FullName(),
		u.branch,
		u.directory,
		url.PathEscape(filename),
	)
}
