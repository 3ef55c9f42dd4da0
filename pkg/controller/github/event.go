package github

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// EventSource is the workflow run context provided by the runner environment
type EventSource struct {
	Name        string // GITHUB_EVENT_NAME
	PayloadPath string // GITHUB_EVENT_PATH
	Ref         string // GITHUB_REF
	Repository  string // GITHUB_REPOSITORY, "owner/repo"
	SHA         string // GITHUB_SHA
}

// LoadEvent resolves the trigger event and its pull request.
// Non pull request events fail with model.ErrUnsupportedEvent before anything else is read.
func LoadEvent(ctx context.Context, src EventSource) (*model.Event, error) {
	logger := ctxlog.From(ctx)

	event := &model.Event{Name: model.EventName(src.Name)}
	if !event.IsSupported() {
		return nil, goerr.Wrap(model.ErrUnsupportedEvent, "workflow must be triggered by a pull request",
			goerr.V("event", src.Name),
		)
	}

	pr := &model.PullRequest{HeadSHA: src.SHA}
	if owner, repo, ok := strings.Cut(src.Repository, "/"); ok {
		pr.Owner, pr.Repo = owner, repo
	}

	if src.PayloadPath != "" {
		if err := applyPayload(src, pr); err != nil {
			logger.Warn("Failed to read event payload, falling back to GITHUB_REF",
				"path", src.PayloadPath,
				"error", err,
			)
		}
	}

	if pr.Number == 0 {
		pr.Number = pullRequestNumber(src.Ref)
	}

	if pr.Number == 0 {
		return nil, goerr.Wrap(model.ErrUnsupportedEvent, "pull request number not found",
			goerr.V("event", src.Name),
			goerr.V("ref", src.Ref),
		)
	}
	if pr.Owner == "" || pr.Repo == "" {
		return nil, goerr.Wrap(model.ErrInvalidConfig, "repository must be in owner/repo form",
			goerr.V("repository", src.Repository),
		)
	}

	logger.Info("Loaded pull request event",
		"event", src.Name,
		"repo", pr.FullName(),
		"number", pr.Number,
		"sha", pr.HeadSHA,
	)

	event.PullRequest = pr
	return event, nil
}

// applyPayload fills the pull request from the webhook payload file
func applyPayload(src EventSource, pr *model.PullRequest) error {
	data, err := os.ReadFile(src.PayloadPath)
	if err != nil {
		return goerr.Wrap(err, "failed to read event payload", goerr.V("path", src.PayloadPath))
	}

	payload, err := github.ParseWebHook(src.Name, data)
	if err != nil {
		return goerr.Wrap(err, "failed to parse event payload", goerr.V("event", src.Name))
	}

	var (
		number int
		pull   *github.PullRequest
		repo   *github.Repository
	)
	switch ev := payload.(type) {
	case *github.PullRequestEvent:
		number, pull, repo = ev.GetNumber(), ev.GetPullRequest(), ev.GetRepo()
	case *github.PullRequestTargetEvent:
		number, pull, repo = ev.GetNumber(), ev.GetPullRequest(), ev.GetRepo()
	default:
		return goerr.New("unexpected event payload type", goerr.V("event", src.Name))
	}

	if number == 0 {
		number = pull.GetNumber()
	}
	pr.Number = number

	if pr.HeadSHA == "" {
		pr.HeadSHA = pull.GetHead().GetSHA()
	}
	if owner, name := repo.GetOwner().GetLogin(), repo.GetName(); owner != "" && name != "" {
		pr.Owner, pr.Repo = owner, name
	}
	return nil
}

// pullRequestNumber extracts <n> from "refs/pull/<n>/merge"
func pullRequestNumber(ref string) int {
	rest, ok := strings.CutPrefix(ref, "refs/pull/")
	if !ok {
		return 0
	}
	num, _, _ := strings.Cut(rest, "/")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n
}
