package github

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
)

// APIBranchEnsurer creates the upload branch through the git refs API.
// Unlike the local variant it works with shallow checkouts or without any checkout.
type APIBranchEnsurer struct {
	client interfaces.GitHubClient
	owner  string
	repo   string
	sha    string
}

// NewAPIBranchEnsurer creates a BranchEnsurer that branches off the given commit
func NewAPIBranchEnsurer(client interfaces.GitHubClient, owner, repo, sha string) interfaces.BranchEnsurer {
	return &APIBranchEnsurer{
		client: client,
		owner:  owner,
		repo:   repo,
		sha:    sha,
	}
}

// EnsureBranch creates the branch at the configured commit unless it already exists
func (e *APIBranchEnsurer) EnsureBranch(ctx context.Context, branch string) error {
	logger := ctxlog.From(ctx)

	exists, err := e.client.BranchExists(ctx, e.owner, e.repo, branch)
	if err != nil {
		return goerr.Wrap(err, "failed to check branch", goerr.V("branch", branch))
	}
	if exists {
		logger.Info("Branch already exists", "branch", branch)
		return nil
	}

	if e.sha == "" {
		return goerr.New("commit SHA is required to create a branch", goerr.V("branch", branch))
	}

	if err := e.client.CreateBranch(ctx, e.owner, e.repo, branch, e.sha); err != nil {
		return goerr.Wrap(err, "failed to create branch", goerr.V("branch", branch))
	}

	logger.Info("Created branch", "branch", branch, "sha", e.sha)
	return nil
}
