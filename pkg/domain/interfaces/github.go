package interfaces

import (
	"context"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// ListPullRequestFiles returns all files changed by a pull request
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*model.ChangedFile, error)

	// CreateComment creates a comment on a pull request or issue
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (*model.Comment, error)

	// ListComments returns all comments of a pull request or issue
	ListComments(ctx context.Context, owner, repo string, number int) ([]*model.Comment, error)

	// EditComment replaces the body of an existing comment
	EditComment(ctx context.Context, owner, repo string, commentID int64, body string) error

	// CreateFile commits a new file to a branch through the contents API
	CreateFile(ctx context.Context, owner, repo string, file *model.RepositoryFile) error

	// BranchExists reports whether the branch exists on the remote repository
	BranchExists(ctx context.Context, owner, repo, branch string) (bool, error)

	// CreateBranch creates a branch pointing at the given commit
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error
}
