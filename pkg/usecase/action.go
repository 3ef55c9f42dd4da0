package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// ActionConfig holds the validated settings of a run
type ActionConfig struct {
	Targets             TargetSources
	Images              []string // Patterns of existing images uploaded without capture
	AttachmentMessage   string
	EditPreviousComment bool
	BotLogin            string
	ServerURL           string
	RunID               string
}

type action struct {
	event     *model.Event
	client    interfaces.GitHubClient
	capturer  interfaces.Capturer
	uploader  interfaces.Uploader
	workflow  interfaces.Workflow
	publisher *CommentPublisher
	cfg       ActionConfig
	now       func() time.Time
}

// ActionOption is a functional option for the action use case
type ActionOption func(*action)

// WithClock replaces the time source used for filenames
func WithClock(now func() time.Time) ActionOption {
	return func(a *action) {
		a.now = now
	}
}

// NewAction creates the use case that captures, uploads and comments
func NewAction(event *model.Event, client interfaces.GitHubClient, capturer interfaces.Capturer, uploader interfaces.Uploader, workflow interfaces.Workflow, cfg ActionConfig, opts ...ActionOption) interfaces.ActionUseCase {
	a := &action{
		event:     event,
		client:    client,
		capturer:  capturer,
		uploader:  uploader,
		workflow:  workflow,
		publisher: NewCommentPublisher(client, cfg.AttachmentMessage, cfg.BotLogin),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the flow once. Only an unsupported event is an error; every
// other failure drops the affected item and the run goes on.
func (a *action) Run(ctx context.Context) error {
	if a.event == nil || !a.event.IsSupported() || a.event.PullRequest == nil {
		var name model.EventName
		if a.event != nil {
			name = a.event.Name
		}
		return goerr.Wrap(model.ErrUnsupportedEvent, "action needs a pull request event", goerr.V("event", name))
	}

	pr := a.event.PullRequest
	ctx = ctxlog.With(ctx, ctxlog.From(ctx).With("repo", pr.FullName(), "pr", pr.Number))
	logger := ctxlog.From(ctx)

	end := a.workflow.Group("Capture screenshots")
	targets := EnumerateTargets(ctx, a.client, a.workflow, pr, a.cfg.Targets)
	logger.Info("Capture targets enumerated", "count", len(targets))

	for _, target := range targets {
		a.capture(ctx, pr, target)
	}
	a.queueImages(ctx, pr)
	end()

	end = a.workflow.Group("Upload screenshots")
	uploaded := a.uploader.Upload(ctx)
	end()
	logger.Info("Upload finished", "uploaded", len(uploaded))

	var commentURL string
	if len(uploaded) > 0 {
		end = a.workflow.Group("Comment on pull request")
		runURL := RunURL(a.cfg.ServerURL, pr.FullName(), a.cfg.RunID)
		if comment := a.publisher.Publish(ctx, pr, runURL, uploaded); comment != nil {
			commentURL = comment.HTMLURL
			if a.cfg.EditPreviousComment {
				a.publisher.DeprecatePrevious(ctx, pr, comment)
			}
		}
		end()
	} else {
		logger.Warn("No screenshot was uploaded, skipping comment")
		a.workflow.Warning("No screenshot was uploaded")
	}

	a.setOutput(ctx, "uploaded_count", strconv.Itoa(len(uploaded)))
	a.setOutput(ctx, "comment_url", commentURL)
	return nil
}

func (a *action) capture(ctx context.Context, pr *model.PullRequest, target *model.CaptureTarget) {
	logger := ctxlog.From(ctx)

	data, err := a.capturer.Capture(ctx, target)
	if err != nil {
		logger.Error("Failed to capture screenshot, skipping target",
			"target", target.DisplayName,
			"kind", target.Kind,
			"error", err,
		)
		a.workflow.Error("Failed to capture " + target.DisplayName)
		return
	}

	filename := ImageFilename(pr.Number, target.DisplayName, detectExtension(data), a.now())
	a.uploader.Add(target.DisplayName, filename, data)
	logger.Info("Screenshot captured",
		"target", target.DisplayName,
		"filename", filename,
		"size", len(data),
	)
}

// queueImages adds existing image files to the upload queue as they are
func (a *action) queueImages(ctx context.Context, pr *model.PullRequest) {
	logger := ctxlog.From(ctx)

	for _, path := range expandPatterns(ctx, cleanList(a.cfg.Images), false) {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read image, skipping", "path", path, "error", err)
			continue
		}
		if len(data) == 0 {
			logger.Warn("Image file is empty, skipping", "path", path)
			continue
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			ext = detectExtension(data)
		}
		filename := ImageFilename(pr.Number, path, ext, a.now())
		a.uploader.Add(path, filename, data)
		logger.Info("Image queued", "path", path, "filename", filename)
	}
}

func (a *action) setOutput(ctx context.Context, key, value string) {
	if err := a.workflow.SetOutput(key, value); err != nil {
		ctxlog.From(ctx).Warn("Failed to write step output", "key", key, "error", err)
	}
}
