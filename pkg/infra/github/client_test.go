package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
	githubinfra "github.com/m-mizutani/pagesnap/pkg/infra/github"
)

func newTestClient(t *testing.T, mux *http.ServeMux) interfaces.GitHubClient {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := githubinfra.NewClient(server.Client(), githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)
	return client
}

func TestClient_ListPullRequestFiles_Pagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"filename":"docs/b.html","status":"removed"}]`)
			return
		}
		next := fmt.Sprintf("<http://%s%s?page=2&per_page=100>; rel=\"next\"", r.Host, r.URL.Path)
		w.Header().Set("Link", next)
		fmt.Fprint(w, `[{"filename":"index.html","status":"added"},{"filename":"main.go","status":"modified"}]`)
	})

	client := newTestClient(t, mux)
	files, err := client.ListPullRequestFiles(context.Background(), "owner", "repo", 7)
	gt.NoError(t, err)
	gt.A(t, files).Length(3)
	gt.Value(t, files[0].Filename).Equal("index.html")
	gt.Value(t, files[2].Filename).Equal("docs/b.html")
	gt.True(t, files[2].IsRemoved())
}

func TestClient_ListPullRequestFiles_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	client := newTestClient(t, mux)
	files, err := client.ListPullRequestFiles(context.Background(), "owner", "repo", 7)
	gt.Error(t, err)
	gt.A(t, files).Length(0)
}

func TestClient_CreateComment(t *testing.T) {
	var received map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/owner/repo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{
			"id": 42,
			"body": "hello",
			"user": {"login": "github-actions[bot]"},
			"issue_url": "https://api.github.com/repos/owner/repo/issues/7",
			"html_url": "https://github.com/owner/repo/pull/7#issuecomment-42",
			"created_at": "2026-10-18T10:00:00Z"
		}`)
	})

	client := newTestClient(t, mux)
	comment, err := client.CreateComment(context.Background(), "owner", "repo", 7, "hello")
	gt.NoError(t, err)
	gt.Value(t, received["body"]).Equal("hello")
	gt.Value(t, comment.ID).Equal(int64(42))
	gt.Value(t, comment.Author).Equal("github-actions[bot]")
	gt.Value(t, comment.IssueURL).Equal("https://api.github.com/repos/owner/repo/issues/7")
	gt.Value(t, comment.CreatedAt.Year()).Equal(2026)
}

func TestClient_CreateComment_Forbidden(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/owner/repo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Resource not accessible by integration"}`)
	})

	client := newTestClient(t, mux)
	comment, err := client.CreateComment(context.Background(), "owner", "repo", 7, "hello")
	gt.Error(t, err)
	gt.Value(t, comment).Nil()
}

func TestClient_CreateFile(t *testing.T) {
	var received struct {
		Message   string            `json:"message"`
		Content   string            `json:"content"`
		Branch    string            `json:"branch"`
		Author    map[string]string `json:"author"`
		Committer map[string]string `json:"committer"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/owner/repo/contents/webpage-screenshots/a.png", func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"content":{"path":"webpage-screenshots/a.png"}}`)
	})

	client := newTestClient(t, mux)
	err := client.CreateFile(context.Background(), "owner", "repo", &model.RepositoryFile{
		Path:    "webpage-screenshots/a.png",
		Branch:  "screenshots",
		Message: "add a.png",
		Content: []byte("png-bytes"),
		Committer: model.Identity{
			Name:  "github-actions[bot]",
			Email: "github-actions[bot]@users.noreply.github.com",
		},
	})
	gt.NoError(t, err)
	gt.Value(t, received.Message).Equal("add a.png")
	gt.Value(t, received.Branch).Equal("screenshots")
	gt.Value(t, received.Content).Equal(base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	gt.Value(t, received.Author["name"]).Equal("github-actions[bot]")
	gt.Value(t, received.Committer["email"]).Equal("github-actions[bot]@users.noreply.github.com")
}

func TestClient_BranchExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/git/ref/heads/exists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ref":"refs/heads/exists","object":{"sha":"abc"}}`)
	})
	mux.HandleFunc("GET /repos/owner/repo/git/ref/heads/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	mux.HandleFunc("GET /repos/owner/repo/git/ref/heads/previews/shots", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ref":"refs/heads/previews/shots","object":{"sha":"def"}}`)
	})
	mux.HandleFunc("GET /repos/owner/repo/git/ref/heads/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"boom"}`)
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("existing branch", func(t *testing.T) {
		ok, err := client.BranchExists(ctx, "owner", "repo", "exists")
		gt.NoError(t, err)
		gt.True(t, ok)
	})

	t.Run("missing branch", func(t *testing.T) {
		ok, err := client.BranchExists(ctx, "owner", "repo", "missing")
		gt.NoError(t, err)
		gt.False(t, ok)
	})

	t.Run("branch with slash", func(t *testing.T) {
		ok, err := client.BranchExists(ctx, "owner", "repo", "previews/shots")
		gt.NoError(t, err)
		gt.True(t, ok)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.BranchExists(ctx, "owner", "repo", "broken")
		gt.Error(t, err)
	})
}

func TestClient_CreateBranch(t *testing.T) {
	var received map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/owner/repo/git/refs", func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"ref":"refs/heads/screenshots"}`)
	})

	client := newTestClient(t, mux)
	gt.NoError(t, client.CreateBranch(context.Background(), "owner", "repo", "screenshots", "abc123"))
	gt.Value(t, received["ref"]).Equal("refs/heads/screenshots")
	gt.Value(t, received["sha"]).Equal("abc123")
}

func TestClient_EditComment(t *testing.T) {
	var received map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /repos/owner/repo/issues/comments/9", func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":9}`)
	})

	client := newTestClient(t, mux)
	gt.NoError(t, client.EditComment(context.Background(), "owner", "repo", 9, "deprecated"))
	gt.Value(t, received["body"]).Equal("deprecated")
}
