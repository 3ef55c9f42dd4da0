package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/samber/lo"

	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// RunURL is the web URL of a workflow run
func RunURL(serverURL, repository, runID string) string {
	return fmt.Sprintf("%s/%s/actions/runs/%s", strings.TrimSuffix(serverURL, "/"), repository, runID)
}

// BuildCommentBody renders the pull request comment. Images are listed by filename.
func BuildCommentBody(message, sha, runURL string, images []*model.UploadedImage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s `%s`. _You can inspect the workflow run [here](%s)_.\n\n", message, sha, runURL)

	sorted := slices.Clone(images)
	slices.SortStableFunc(sorted, func(a, b *model.UploadedImage) int {
		return strings.Compare(a.Filename, b.Filename)
	})

	for _, img := range sorted {
		embed := img.URL
		if isEmbeddable(img.Filename) {
			embed = fmt.Sprintf("<kbd>![%s](%s)</kbd>", img.Filename, img.URL)
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n", img.DisplayName, embed)
	}

	return b.String()
}

// DeprecationBody replaces the body of an outdated screenshot comment
func DeprecationBody(latestURL string) string {
	return fmt.Sprintf("__DEPRECATED__: _This screenshot is no longer up-to-date. The latest version can be found [here](%s)_.", latestURL)
}

// CommentPublisher posts screenshot comments and deprecates the previous one
type CommentPublisher struct {
	client   interfaces.GitHubClient
	message  string
	botLogin string
}

// NewCommentPublisher creates a CommentPublisher. message is the attachment
// message that opens each comment; it also identifies earlier comments.
func NewCommentPublisher(client interfaces.GitHubClient, message, botLogin string) *CommentPublisher {
	return &CommentPublisher{
		client:   client,
		message:  message,
		botLogin: botLogin,
	}
}

// Publish creates the comment. It returns nil when the comment could not be created.
func (p *CommentPublisher) Publish(ctx context.Context, pr *model.PullRequest, runURL string, images []*model.UploadedImage) *model.Comment {
	logger := ctxlog.From(ctx)

	body := BuildCommentBody(p.message, pr.HeadSHA, runURL, images)
	comment, err := p.client.CreateComment(ctx, pr.Owner, pr.Repo, pr.Number, body)
	if err != nil {
		logger.Error("Failed to create comment",
			"repo", pr.FullName(),
			"number", pr.Number,
			"error", err,
		)
		return nil
	}

	logger.Info("Comment created",
		"repo", pr.FullName(),
		"number", pr.Number,
		"comment_id", comment.ID,
		"url", comment.HTMLURL,
		"images", len(images),
	)
	return comment
}

// DeprecatePrevious marks the previous screenshot comment as outdated.
// The comment list is fetched fresh so repeated runs converge on a single live comment.
func (p *CommentPublisher) DeprecatePrevious(ctx context.Context, pr *model.PullRequest, latest *model.Comment) {
	logger := ctxlog.From(ctx)

	comments, err := p.client.ListComments(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		logger.Warn("Failed to list comments, previous comment is not deprecated",
			"repo", pr.FullName(),
			"number", pr.Number,
			"error", err,
		)
		return
	}

	candidates := lo.Filter(comments, func(c *model.Comment, _ int) bool {
		return c.Author == p.botLogin &&
			strings.Contains(c.Body, p.message) &&
			c.IssueURL == latest.IssueURL
	})
	slices.SortStableFunc(candidates, func(a, b *model.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if len(candidates) < 2 {
		logger.Debug("No previous comment to deprecate", "matched", len(candidates))
		return
	}

	previous := candidates[1]
	if err := p.client.EditComment(ctx, pr.Owner, pr.Repo, previous.ID, DeprecationBody(latest.HTMLURL)); err != nil {
		logger.Error("Failed to deprecate previous comment",
			"repo", pr.FullName(),
			"comment_id", previous.ID,
			"error", err,
		)
		return
	}

	logger.Info("Deprecated previous comment",
		"repo", pr.FullName(),
		"comment_id", previous.ID,
		"latest_url", latest.HTMLURL,
	)
}
