package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/pagesnap/pkg/controller/github"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
	"github.com/m-mizutani/pagesnap/pkg/infra/capture"
	gitinfra "github.com/m-mizutani/pagesnap/pkg/infra/git"
	githubinfra "github.com/m-mizutani/pagesnap/pkg/infra/github"
	"github.com/m-mizutani/pagesnap/pkg/infra/upload"
	"github.com/m-mizutani/pagesnap/pkg/usecase"
	"github.com/m-mizutani/pagesnap/pkg/utils/ghaction"
)

type runConfig struct {
	github  config.GitHub
	upload  config.Upload
	capture config.Capture
	comment config.Comment
	file    config.File
}

func (x *runConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.github.Flags()...)
	flags = append(flags, x.upload.Flags()...)
	flags = append(flags, x.capture.Flags()...)
	flags = append(flags, x.comment.Flags()...)
	flags = append(flags, x.file.Flags()...)
	return flags
}

// secrets are values the logger must never print
func (x *runConfig) secrets() []string {
	return []string{
		x.github.Token,
		x.github.AppPrivateKey,
		x.upload.ImgurClientID,
		x.upload.S3SecretAccessKey,
	}
}

func cmdRun(cfg *runConfig) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Capture, upload and comment once (default command)",
		Action: cfg.run,
	}
}

func (x *runConfig) validate(cmd *cli.Command) error {
	if err := x.file.Apply(cmd.IsSet, &x.capture, &x.comment); err != nil {
		return err
	}

	for _, v := range []interface{ Validate() error }{
		&x.github,
		&x.upload,
		&x.capture,
		&x.comment,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (x *runConfig) run(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.From(ctx)

	event, err := githubcontroller.LoadEvent(ctx, githubcontroller.EventSource{
		Name:        x.github.EventName,
		PayloadPath: x.github.EventPath,
		Ref:         x.github.Ref,
		Repository:  x.github.Repository,
		SHA:         x.github.SHA,
	})
	if err != nil {
		return err
	}

	if err := x.validate(cmd); err != nil {
		return err
	}

	logger.Info("Starting pagesnap",
		slog.String("repo", event.PullRequest.FullName()),
		slog.Int("pr", event.PullRequest.Number),
		slog.String("upload_to", x.upload.To),
		slog.Int("urls", len(x.capture.URLs)),
		slog.Int("html_file_paths", len(x.capture.HTMLFilePaths)),
		slog.Bool("changed_html_files", x.capture.ChangedHTMLFiles),
	)

	client, err := x.github.NewClient(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to create GitHub client")
	}

	uploader, err := x.newUploader(ctx, client, event.PullRequest)
	if err != nil {
		return err
	}

	capturer := capture.New(
		capture.WithCommand(x.capture.Command),
		capture.WithOutputDir(x.capture.OutputDir),
	)

	uc := usecase.NewAction(event, client, capturer, uploader, ghaction.New(), usecase.ActionConfig{
		Targets: usecase.TargetSources{
			URLs:             x.capture.URLs,
			HTMLFilePaths:    x.capture.HTMLFilePaths,
			ChangedHTMLFiles: x.capture.ChangedHTMLFiles,
		},
		Images:              x.capture.Images,
		AttachmentMessage:   x.comment.AttachmentMessage,
		EditPreviousComment: x.comment.EditPreviousComment,
		BotLogin:            x.github.BotLogin,
		ServerURL:           x.github.ServerURL,
		RunID:               x.github.RunID,
	})

	return uc.Run(ctx)
}

func (x *runConfig) newUploader(ctx context.Context, client interfaces.GitHubClient, pr *model.PullRequest) (interfaces.Uploader, error) {
	switch x.upload.To {
	case config.UploadToImgur:
		return upload.NewImgur(upload.WithImgurClientID(x.upload.ImgurClientID)), nil

	case config.UploadToS3:
		s3Client, err := upload.NewS3Client(ctx, x.upload.S3ClientConfig())
		if err != nil {
			return nil, err
		}

		opts := []upload.S3Option{
			upload.WithS3Prefix(x.upload.S3Prefix),
			upload.WithS3PublicURL(x.upload.S3PublicURL),
		}
		if x.upload.S3Region != "" {
			opts = append(opts, upload.WithS3Region(x.upload.S3Region))
		}
		return upload.NewS3(s3Client, x.upload.S3Bucket, opts...), nil

	default:
		var ensurer interfaces.BranchEnsurer
		if x.upload.BranchSetup == config.BranchSetupGit {
			ensurer = gitinfra.NewLocalBranchEnsurer(".", gitinfra.WithToken(x.github.Token))
		} else {
			ensurer = githubinfra.NewAPIBranchEnsurer(client, pr.Owner, pr.Repo, pr.HeadSHA)
		}
		return upload.NewGitHubBranch(client, ensurer, pr, upload.WithServerURL(x.github.ServerURL)), nil
	}
}
