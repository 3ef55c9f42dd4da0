package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
	"golang.org/x/oauth2"
)

// perPage is the page size used for every list call
const perPage = 100

type client struct {
	githubClient *github.Client
}

// Option is a functional option for the GitHub client
type Option func(*github.Client) error

// WithBaseURL points the client at another API root (GHES or a test server)
func WithBaseURL(baseURL string) Option {
	return func(c *github.Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "failed to parse GitHub API URL", goerr.V("url", baseURL))
		}
		c.BaseURL = u
		return nil
	}
}

// NewTokenHTTPClient creates an HTTP client authenticated with a token (GITHUB_TOKEN or PAT)
func NewTokenHTTPClient(ctx context.Context, token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, src)
}

// NewAppHTTPClient creates an HTTP client authenticated as a GitHub App installation
func NewAppHTTPClient(appID, installationID int64, privateKey []byte, apiURL string) (*http.Client, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}
	if apiURL != "" {
		itr.BaseURL = strings.TrimSuffix(apiURL, "/")
	}

	return &http.Client{Transport: itr}, nil
}

// NewClient creates a new GitHub client on top of an authenticated HTTP client
func NewClient(httpClient *http.Client, opts ...Option) (interfaces.GitHubClient, error) {
	githubClient := github.NewClient(httpClient)
	for _, opt := range opts {
		if err := opt(githubClient); err != nil {
			return nil, err
		}
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// ListPullRequestFiles returns all files changed by a pull request
func (c *client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*model.ChangedFile, error) {
	var files []*model.ChangedFile
	opts := &github.ListOptions{PerPage: perPage}

	for {
		page, resp, err := c.githubClient.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, handleGithubError(err, "list pull request files",
				goerr.V("repo", owner+"/"+repo),
				goerr.V("number", number),
			)
		}

		for _, f := range page {
			files = append(files, &model.ChangedFile{
				Filename: f.GetFilename(),
				Status:   f.GetStatus(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// CreateComment creates a comment on a pull request or issue
func (c *client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*model.Comment, error) {
	comment, resp, err := c.githubClient.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, handleGithubError(err, "create comment",
			goerr.V("repo", owner+"/"+repo),
			goerr.V("number", number),
		)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, goerr.New("unexpected status code on comment creation",
			goerr.V("repo", owner+"/"+repo),
			goerr.V("number", number),
			goerr.V("status", resp.StatusCode),
		)
	}

	return toComment(comment), nil
}

// ListComments returns all comments of a pull request or issue
func (c *client) ListComments(ctx context.Context, owner, repo string, number int) ([]*model.Comment, error) {
	var comments []*model.Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		page, resp, err := c.githubClient.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, handleGithubError(err, "list comments",
				goerr.V("repo", owner+"/"+repo),
				goerr.V("number", number),
			)
		}

		for _, comment := range page {
			comments = append(comments, toComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// EditComment replaces the body of an existing comment
func (c *client) EditComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	_, _, err := c.githubClient.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return handleGithubError(err, "edit comment",
			goerr.V("repo", owner+"/"+repo),
			goerr.V("comment_id", commentID),
		)
	}
	return nil
}

// CreateFile commits a new file to a branch through the contents API
func (c *client) CreateFile(ctx context.Context, owner, repo string, file *model.RepositoryFile) error {
	identity := &github.CommitAuthor{
		Name:  github.Ptr(file.Committer.Name),
		Email: github.Ptr(file.Committer.Email),
	}

	_, _, err := c.githubClient.Repositories.CreateFile(ctx, owner, repo, file.Path, &github.RepositoryContentFileOptions{
		Message:   github.Ptr(file.Message),
		Content:   file.Content,
		Branch:    github.Ptr(file.Branch),
		Author:    identity,
		Committer: identity,
	})
	if err != nil {
		return handleGithubError(err, "create file",
			goerr.V("repo", owner+"/"+repo),
			goerr.V("path", file.Path),
			goerr.V("branch", file.Branch),
		)
	}
	return nil
}

// BranchExists reports whether the branch exists on the remote repository
func (c *client) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	if _, _, err := c.githubClient.Git.GetRef(ctx, owner, repo, "heads/"+branch); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, handleGithubError(err, "get branch ref",
			goerr.V("repo", owner+"/"+repo),
			goerr.V("branch", branch),
		)
	}
	return true, nil
}

// CreateBranch creates a branch pointing at the given commit
func (c *client) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	ref := github.CreateRef{
		Ref: "refs/heads/" + branch,
		SHA: sha,
	}
	if _, _, err := c.githubClient.Git.CreateRef(ctx, owner, repo, ref); err != nil {
		return handleGithubError(err, "create branch ref",
			goerr.V("repo", owner+"/"+repo),
			goerr.V("branch", branch),
			goerr.V("sha", sha),
		)
	}
	return nil
}

func toComment(c *github.IssueComment) *model.Comment {
	return &model.Comment{
		ID:        c.GetID(),
		Body:      c.GetBody(),
		Author:    c.GetUser().GetLogin(),
		IssueURL:  c.GetIssueURL(),
		HTMLURL:   c.GetHTMLURL(),
		CreatedAt: c.GetCreatedAt().Time,
	}
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

// handleGithubError turns a go-github error into a goerr error carrying the HTTP status
func handleGithubError(err error, op string, opts ...goerr.Option) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		opts = append(opts,
			goerr.V("status", errResp.Response.StatusCode),
			goerr.V("message", errResp.Message),
		)
	}

	return goerr.Wrap(err, "github: failed to "+op, opts...)
}
