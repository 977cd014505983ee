package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Uploader.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // Custom endpoint for S3-compatible stores; empty for AWS
	AccessKey string
	SecretKey string
	Prefix    string // Key prefix, e.g. "images"
	PublicURL string // Base URL objects are served from
}

// putObjectAPI is the part of *s3.Client used for uploads.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores images in an S3 bucket.
type S3Uploader struct {
	client    putObjectAPI
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Uploader creates an uploader using static credentials and path-style
// addressing.
func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.Endpoint))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return newS3Uploader(client, opts), nil
}

func newS3Uploader(client putObjectAPI, opts S3Options) *S3Uploader {
	publicURL := opts.PublicURL
	switch {
	case publicURL != "":
	case opts.Endpoint != "":
		publicURL = strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
	case opts.Region != "":
		// Path-style AWS URL, matching the client's addressing.
		publicURL = fmt.Sprintf("https://s3.%s.amazonaws.com/%s", opts.Region, opts.Bucket)
	}
	return &S3Uploader{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    strings.Trim(opts.Prefix, "/"),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload implements Uploader.
func (u *S3Uploader) Upload(ctx context.Context, nodeID, filename string, body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmpty
	}

	name, err := objectName(nodeID, filename)
	if err != nil {
		return "", fmt.Errorf("generating object key: %w", err)
	}
	key := name
	if u.prefix != "" {
		key = u.prefix + "/" + name
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	if u.publicURL == "" {
		return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
	}
	return u.publicURL + "/" + key, nil
}
