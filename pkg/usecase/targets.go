package usecase

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/samber/lo"

	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// TargetSources are the inputs merged into the capture working set
type TargetSources struct {
	URLs             []string
	HTMLFilePaths    []string // Literal paths or doublestar patterns
	ChangedHTMLFiles bool     // Add .html files changed by the pull request
}

// EnumerateTargets merges URLs, HTML file paths and changed HTML files of the
// pull request into a deduplicated list sorted by display name. A failure to
// list the pull request files is reported as a warning and yields no files.
func EnumerateTargets(ctx context.Context, client interfaces.GitHubClient, wf interfaces.Workflow, pr *model.PullRequest, src TargetSources) []*model.CaptureTarget {
	var targets []*model.CaptureTarget

	for _, u := range cleanList(src.URLs) {
		targets = append(targets, &model.CaptureTarget{DisplayName: u, Kind: model.TargetURL})
	}

	for _, path := range expandPatterns(ctx, cleanList(src.HTMLFilePaths), true) {
		targets = append(targets, &model.CaptureTarget{DisplayName: path, Kind: model.TargetHTMLFile})
	}

	if src.ChangedHTMLFiles {
		for _, path := range changedHTMLFiles(ctx, client, wf, pr) {
			targets = append(targets, &model.CaptureTarget{DisplayName: path, Kind: model.TargetHTMLFile})
		}
	}

	targets = lo.UniqBy(targets, func(t *model.CaptureTarget) string {
		return t.DisplayName
	})
	slices.SortFunc(targets, func(a, b *model.CaptureTarget) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return targets
}

func changedHTMLFiles(ctx context.Context, client interfaces.GitHubClient, wf interfaces.Workflow, pr *model.PullRequest) []string {
	logger := ctxlog.From(ctx)

	files, err := client.ListPullRequestFiles(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		logger.Warn("Failed to list pull request files, no changed HTML files will be captured",
			"repo", pr.FullName(),
			"number", pr.Number,
			"error", err,
		)
		wf.Warning("Could not list files of the pull request; changed HTML files are skipped")
		return nil
	}

	htmlFiles := lo.FilterMap(files, func(f *model.ChangedFile, _ int) (string, bool) {
		return f.Filename, !f.IsRemoved() && strings.EqualFold(filepath.Ext(f.Filename), ".html")
	})

	logger.Info("Found changed HTML files",
		"repo", pr.FullName(),
		"number", pr.Number,
		"changed_files", len(files),
		"html_files", len(htmlFiles),
	)
	return htmlFiles
}

// expandPatterns resolves doublestar patterns against the working directory.
// With keepUnmatched a pattern without any match is returned verbatim.
func expandPatterns(ctx context.Context, patterns []string, keepUnmatched bool) []string {
	logger := ctxlog.From(ctx)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			logger.Warn("Invalid file pattern", "pattern", pattern, "error", err)
		}

		if len(matches) == 0 {
			if keepUnmatched {
				paths = append(paths, pattern)
			} else {
				logger.Warn("No file matched the pattern", "pattern", pattern)
			}
			continue
		}
		paths = append(paths, matches...)
	}

	return lo.Uniq(paths)
}

// cleanList trims entries and drops empty ones
func cleanList(items []string) []string {
	return lo.FilterMap(items, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
