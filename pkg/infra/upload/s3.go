package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pagesnap/pkg/domain/interfaces"
	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// S3API is the subset of the S3 client used by the uploader
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ClientConfig holds what is needed to build an S3 client
type S3ClientConfig struct {
	Region          string
	Endpoint        string // S3 compatible endpoint; path-style addressing is used when set
	AccessKeyID     string // optional; the default credential chain is used when empty
	SecretAccessKey string
}

// NewS3Client creates an S3 client from the default AWS configuration
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config", goerr.V("region", cfg.Region))
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	}), nil
}

// S3 uploads images as objects of an S3 bucket
type S3 struct {
	queue
	client    S3API
	bucket    string
	region    string
	prefix    string
	publicURL string
}

// S3Option is a functional option for S3
type S3Option func(*S3)

// WithS3Prefix sets the key prefix of uploaded objects
func WithS3Prefix(prefix string) S3Option {
	return func(u *S3) {
		u.prefix = strings.Trim(prefix, "/")
	}
}

// WithS3PublicURL sets the URL root objects are served from (CDN, website endpoint)
func WithS3PublicURL(publicURL string) S3Option {
	return func(u *S3) {
		u.publicURL = strings.TrimSuffix(publicURL, "/")
	}
}

// WithS3Region sets the region used to build the default object URL
func WithS3Region(region string) S3Option {
	return func(u *S3) {
		u.region = region
	}
}

// NewS3 creates an S3 uploader
func NewS3(client S3API, bucket string, opts ...S3Option) interfaces.Uploader {
	u := &S3{
		client: client,
		bucket: bucket,
		region: "us-east-1",
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload puts every queued image into the bucket
func (u *S3) Upload(ctx context.Context) []*model.UploadedImage {
	if u.Len() == 0 {
		return []*model.UploadedImage{}
	}

	return u.flush(ctx, "s3", func(ctx context.Context, item *model.CapturedImage) (string, error) {
		key := item.Filename
		if u.prefix != "" {
			key = path.Join(u.prefix, item.Filename)
		}

		_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(item.Data),
			ContentType: aws.String(mimetype.Detect(item.Data).String()),
		})
		if err != nil {
			return "", goerr.Wrap(err, "failed to put object",
				goerr.V("bucket", u.bucket),
				goerr.V("key", key),
			)
		}

		return u.objectURL(key), nil
	})
}

func (u *S3) objectURL(key string) string {
	if u.publicURL != "" {
		return u.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
