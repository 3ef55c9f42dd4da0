package interfaces

import (
	"context"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// Uploader queues images and flushes them to a backing store.
// Upload never fails as a whole: items that could not be uploaded are logged
// and left out of the result.
type Uploader interface {
	Add(displayName, filename string, data []byte)
	Upload(ctx context.Context) []*model.UploadedImage
}

// BranchEnsurer makes sure the upload branch exists on the remote
type BranchEnsurer interface {
	EnsureBranch(ctx context.Context, branch string) error
}

// Capturer renders a capture target into image bytes
type Capturer interface {
	Capture(ctx context.Context, target *model.CaptureTarget) ([]byte, error)
}

// ActionUseCase runs the whole screenshot-and-comment flow once
type ActionUseCase interface {
	Run(ctx context.Context) error
}

// Workflow reports progress to the CI runner and records step outputs
type Workflow interface {
	Group(title string) func()
	Warning(msg string)
	Error(msg string)
	SetOutput(key, value string) error
}
