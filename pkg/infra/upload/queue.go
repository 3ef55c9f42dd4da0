package upload

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// queue keeps images in insertion order until the backend flushes them
type queue struct {
	items []*model.CapturedImage
}

// Add enqueues an image for the next Upload call
func (q *queue) Add(displayName, filename string, data []byte) {
	q.items = append(q.items, &model.CapturedImage{
		DisplayName: displayName,
		Filename:    filename,
		Data:        data,
	})
}

// Len returns the number of queued images
func (q *queue) Len() int {
	return len(q.items)
}

// uploadFunc stores one image and returns its public URL
type uploadFunc func(ctx context.Context, item *model.CapturedImage) (string, error)

// flush uploads every queued item with fn. Failed items are logged and left
// out of the result; the queue is empty afterwards.
func (q *queue) flush(ctx context.Context, backend string, fn uploadFunc) []*model.UploadedImage {
	logger := ctxlog.From(ctx)
	items := q.items
	q.items = nil

	uploaded := make([]*model.UploadedImage, 0, len(items))
	for _, item := range items {
		url, err := fn(ctx, item)
		if err != nil {
			logger.Error("Failed to upload image",
				"backend", backend,
				"filename", item.Filename,
				"display_name", item.DisplayName,
				"error", err,
			)
			continue
		}

		logger.Info("Image uploaded",
			"backend", backend,
			"filename", item.Filename,
			"url", url,
		)
		uploaded = append(uploaded, &model.UploadedImage{
			DisplayName: item.DisplayName,
			Filename:    item.Filename,
			URL:         url,
		})
	}

	return uploaded
}
