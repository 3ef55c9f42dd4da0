package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

const (
	// DefaultImgurEndpoint is the anonymous image upload endpoint of Imgur
	DefaultImgurEndpoint = "https://api.imgur.com/3/upload"

	// DefaultImgurDelay is the pause after each successful upload to stay under the rate limit
	DefaultImgurDelay = 2 * time.Second
)

// Imgur uploads images to the Imgur API, one POST per image
type Imgur struct {
	queue
	endpoint   string
	clientID   string
	delay      time.Duration
	httpClient *http.Client
}

// ImgurOption is a functional option for Imgur
type ImgurOption func(*Imgur)

// WithImgurEndpoint overrides the upload endpoint
func WithImgurEndpoint(endpoint string) ImgurOption {
	return func(u *Imgur) {
		u.endpoint = endpoint
	}
}

// WithImgurClientID sets the application client ID sent as "Authorization: Client-ID"
func WithImgurClientID(clientID string) ImgurOption {
	return func(u *Imgur) {
		u.clientID = clientID
	}
}

// WithImgurDelay sets the pause after each successful upload
func WithImgurDelay(delay time.Duration) ImgurOption {
	return func(u *Imgur) {
		u.delay = delay
	}
}

// WithImgurHTTPClient sets the HTTP client
func WithImgurHTTPClient(client *http.Client) ImgurOption {
	return func(u *Imgur) {
		u.httpClient = client
	}
}

// NewImgur creates an Imgur uploader
func NewImgur(opts ...ImgurOption) interfaces.Uploader {
	u := &Imgur{
		endpoint:   DefaultImgurEndpoint,
		delay:      DefaultImgurDelay,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type imgurResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// Upload posts every queued image to Imgur
func (u *Imgur) Upload(ctx context.Context) []*model.UploadedImage {
	if u.Len() == 0 {
		return []*model.UploadedImage{}
	}

	return u.flush(ctx, "imgur", func(ctx context.Context, item *model.CapturedImage) (string, error) {
		link, err := u.post(ctx, item)
		if err != nil {
			return "", err
		}

		if u.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(u.delay):
			}
		}
		return link, nil
	})
}

func (u *Imgur) post(ctx context.Context, item *model.CapturedImage) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("image", item.Filename)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create multipart file part")
	}
	if _, err := part.Write(item.Data); err != nil {
		return "", goerr.Wrap(err, "failed to write image data")
	}
	if err := form.WriteField("name", item.Filename); err != nil {
		return "", goerr.Wrap(err, "failed to write name field")
	}
	if err := form.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create upload request", goerr.V("endpoint", u.endpoint))
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if u.clientID != "" {
		req.Header.Set("Authorization", "Client-ID "+u.clientID)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to send upload request", goerr.V("endpoint", u.endpoint))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read upload response", goerr.V("status", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("imgur returned error response",
			goerr.V("status", resp.StatusCode),
			goerr.V("filename", item.Filename),
		)
	}

	var result imgurResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", goerr.Wrap(err, "failed to decode upload response", goerr.V("status", resp.StatusCode))
	}
	if !result.Success || result.Data.Link == "" {
		return "", goerr.New("imgur reported upload failure",
			goerr.V("status", resp.StatusCode),
			goerr.V("filename", item.Filename),
		)
	}

	return result.Data.Link, nil
}
