package usecase_test

import (
	"context"
	"errors"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// MockGitHubClient is a mock implementation of GitHubClient
type MockGitHubClient struct {
	listPullRequestFilesFunc func(ctx context.Context, owner, repo string, number int) ([]*model.ChangedFile, error)
	createCommentFunc        func(ctx context.Context, owner, repo string, number int, body string) (*model.Comment, error)
	listCommentsFunc         func(ctx context.Context, owner, repo string, number int) ([]*model.Comment, error)
	editCommentFunc          func(ctx context.Context, owner, repo string, commentID int64, body string) error
	createFileFunc           func(ctx context.Context, owner, repo string, file *model.RepositoryFile) error
	branchExistsFunc         func(ctx context.Context, owner, repo, branch string) (bool, error)
	createBranchFunc         func(ctx context.Context, owner, repo, branch, sha string) error

	createdBodies []string
	edits         []EditCall
	calls         []string
}

type EditCall struct {
	CommentID int64
	Body      string
}

func (m *MockGitHubClient) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*model.ChangedFile, error) {
	m.calls = append(m.calls, "list_pull_request_files")
	if m.listPullRequestFilesFunc != nil {
		return m.listPullRequestFilesFunc(ctx, owner, repo, number)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*model.Comment, error) {
	m.calls = append(m.calls, "create_comment")
	m.createdBodies = append(m.createdBodies, body)
	if m.createCommentFunc != nil {
		return m.createCommentFunc(ctx, owner, repo, number, body)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGitHubClient) ListComments(ctx context.Context, owner, repo string, number int) ([]*model.Comment, error) {
	m.calls = append(m.calls, "list_comments")
	if m.listCommentsFunc != nil {
		return m.listCommentsFunc(ctx, owner, repo, number)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGitHubClient) EditComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	m.calls = append(m.calls, "edit_comment")
	m.edits = append(m.edits, EditCall{CommentID: commentID, Body: body})
	if m.editCommentFunc != nil {
		return m.editCommentFunc(ctx, owner, repo, commentID, body)
	}
	return nil
}

func (m *MockGitHubClient) CreateFile(ctx context.Context, owner, repo string, file *model.RepositoryFile) error {
	m.calls = append(m.calls, "create_file:"+file.Path)
	if m.createFileFunc != nil {
		return m.createFileFunc(ctx, owner, repo, file)
	}
	return errors.New("mock not configured")
}

func (m *MockGitHubClient) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	m.calls = append(m.calls, "branch_exists")
	if m.branchExistsFunc != nil {
		return m.branchExistsFunc(ctx, owner, repo, branch)
	}
	return false, errors.New("mock not configured")
}

func (m *MockGitHubClient) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	m.calls = append(m.calls, "create_branch:"+branch+"@"+sha)
	if m.createBranchFunc != nil {
		return m.createBranchFunc(ctx, owner, repo, branch, sha)
	}
	return errors.New("mock not configured")
}

// MockCapturer returns canned image bytes per display name
type MockCapturer struct {
	images   map[string][]byte
	captured []string
}

func (m *MockCapturer) Capture(ctx context.Context, target *model.CaptureTarget) ([]byte, error) {
	m.captured = append(m.captured, target.DisplayName)
	data, ok := m.images[target.DisplayName]
	if !ok {
		return nil, errors.New("capture failed")
	}
	return data, nil
}

// MockUploader records queued images and returns them as uploaded
type MockUploader struct {
	added      []*model.CapturedImage
	uploadFunc func(items []*model.CapturedImage) []*model.UploadedImage
}

func (m *MockUploader) Add(displayName, filename string, data []byte) {
	m.added = append(m.added, &model.CapturedImage{DisplayName: displayName, Filename: filename, Data: data})
}

func (m *MockUploader) Upload(ctx context.Context) []*model.UploadedImage {
	if m.uploadFunc != nil {
		return m.uploadFunc(m.added)
	}
	uploaded := []*model.UploadedImage{}
	for _, item := range m.added {
		uploaded = append(uploaded, &model.UploadedImage{
			DisplayName: item.DisplayName,
			Filename:    item.Filename,
			URL:         "https://i.example.com/" + item.Filename,
		})
	}
	return uploaded
}

// MockWorkflow records workflow commands and step outputs
type MockWorkflow struct {
	groups   []string
	warnings []string
	errors   []string
	outputs  map[string]string
}

func (m *MockWorkflow) Group(title string) func() {
	m.groups = append(m.groups, title)
	return func() {}
}

func (m *MockWorkflow) Warning(msg string) {
	m.warnings = append(m.warnings, msg)
}

func (m *MockWorkflow) Error(msg string) {
	m.errors = append(m.errors, msg)
}

func (m *MockWorkflow) SetOutput(key, value string) error {
	if m.outputs == nil {
		m.outputs = map[string]string{}
	}
	m.outputs[key] = value
	return nil
}
