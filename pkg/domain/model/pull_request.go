package model

import "fmt"

// PullRequest holds the pull request the workflow run belongs to
type PullRequest struct {
	Owner   string // Repository owner
	Repo    string // Repository name
	Number  int    // Pull request number
	HeadSHA string // Commit SHA being tested (GITHUB_SHA)
}

// FullName returns "owner/repo"
func (p *PullRequest) FullName() string {
	return fmt.Sprintf("%s/%s", p.Owner, p.Repo)
}

// ChangedFile is an entry of the pull request file diff
type ChangedFile struct {
	Filename string
	Status   string // added, modified, removed, renamed, ...
}

// IsRemoved reports whether the file was deleted by the pull request
func (f *ChangedFile) IsRemoved() bool {
	return f.Status == "removed"
}

// RepositoryFile is a file committed through the contents API
type RepositoryFile struct {
	Path      string
	Branch    string
	Message   string
	Content   []byte // raw bytes; base64 encoding is done by the client
	Committer Identity
}

// Identity is a git author/committer identity
type Identity struct {
	Name  string
	Email string
}
