// Package storage puts user media into S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/google/uuid"
)

// RemoteObject identifies an uploaded object. ObjectID is what Delete takes.
type RemoteObject struct {
	URL      string
	ObjectID string
}

// MediaHost stores and removes media objects.
type MediaHost interface {
	Upload(ctx context.Context, folder, filename string, body io.ReadSeeker, size int64, contentType string) (*RemoteObject, error)
	Delete(ctx context.Context, objectID string) error
}

// S3Config holds the connection settings of an S3-compatible backend.
type S3Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	BaseEndpoint  string
	Bucket        string
	PublicBaseURL string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

type S3MediaHost struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

func NewS3MediaHost(ctx context.Context, cfg S3Config) (*S3MediaHost, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3MediaHost{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}, nil
}

// ObjectKey builds folder/yyyy/mm/dd/<uuid><ext>, taking the extension from
// filename.
func ObjectKey(folder, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", folder, now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

func (h *S3MediaHost) Upload(ctx context.Context, folder, filename string, body io.ReadSeeker, size int64, contentType string) (*RemoteObject, error) {
	key := ObjectKey(folder, filename, h.now())

	_, err := putObject(h.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put object: %v", common.ErrUpstream, err)
	}

	return &RemoteObject{
		URL:      h.publicBaseURL + "/" + h.bucket + "/" + key,
		ObjectID: key,
	}, nil
}

func (h *S3MediaHost) Delete(ctx context.Context, objectID string) error {
	_, err := deleteObject(h.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return fmt.Errorf("%w: delete object: %v", common.ErrUpstream, err)
	}
	return nil
}
