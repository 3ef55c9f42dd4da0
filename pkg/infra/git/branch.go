package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
)

// DefaultRemote is the remote the branch is pushed to
const DefaultRemote = "origin"

// LocalBranchEnsurer creates the upload branch from the local checkout and pushes it.
// It needs a working tree (actions/checkout) with a remote pointing at the repository.
type LocalBranchEnsurer struct {
	repoDir string
	remote  string
	auth    transport.AuthMethod
}

// Option is a functional option for LocalBranchEnsurer
type Option func(*LocalBranchEnsurer)

// WithRemote sets the remote name
func WithRemote(name string) Option {
	return func(e *LocalBranchEnsurer) {
		e.remote = name
	}
}

// WithToken authenticates fetch/push over HTTPS with a GitHub token
func WithToken(token string) Option {
	return func(e *LocalBranchEnsurer) {
		if token == "" {
			return
		}
		e.auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: token,
		}
	}
}

// NewLocalBranchEnsurer creates a BranchEnsurer backed by the git repository at repoDir
func NewLocalBranchEnsurer(repoDir string, opts ...Option) interfaces.BranchEnsurer {
	e := &LocalBranchEnsurer{
		repoDir: repoDir,
		remote:  DefaultRemote,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnsureBranch creates the branch at HEAD and pushes it unless the remote already has it
func (e *LocalBranchEnsurer) EnsureBranch(ctx context.Context, branch string) error {
	logger := ctxlog.From(ctx)

	repo, err := git.PlainOpenWithOptions(e.repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return goerr.Wrap(err, "failed to open git repository", goerr.V("dir", e.repoDir))
	}

	remote, err := repo.Remote(e.remote)
	if err != nil {
		return goerr.Wrap(err, "failed to find git remote", goerr.V("remote", e.remote))
	}

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: e.auth})
	if err != nil {
		return goerr.Wrap(err, "failed to list remote branches", goerr.V("remote", e.remote))
	}

	refName := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == refName {
			logger.Info("Branch already exists", "branch", branch, "remote", e.remote)
			return nil
		}
	}

	head, err := repo.Head()
	if err != nil {
		return goerr.Wrap(err, "failed to resolve HEAD")
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
		return goerr.Wrap(err, "failed to create local branch", goerr.V("branch", branch))
	}

	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", refName, refName))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: e.remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       e.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return goerr.Wrap(err, "failed to push branch",
			goerr.V("branch", branch),
			goerr.V("remote", e.remote),
		)
	}

	logger.Info("Created and pushed branch",
		"branch", branch,
		"remote", e.remote,
		"commit", head.Hash().String(),
	)
	return nil
}
