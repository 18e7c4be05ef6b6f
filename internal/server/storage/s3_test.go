package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAWS(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPut, origDel := loadDefaultAWSConfig, newS3ClientFromConfig, putObject, deleteObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, putObject, deleteObject = origLoad, origNew, origPut, origDel
	})
}

func newTestHost(t *testing.T) *S3MediaHost {
	t.Helper()
	stubAWS(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://minio:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}

	h, err := NewS3MediaHost(context.Background(), S3Config{
		Region: "us-east-1", AccessKey: "ak", SecretKey: "sk",
		BaseEndpoint: "http://minio:9000", Bucket: "images",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	h.now = func() time.Time { return time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC) }
	return h
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("images", "Cat.JPG", time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^images/2026/04/07/[0-9a-f-]{36}\.jpg$`), key)

	assert.NotEqual(t, key, ObjectKey("images", "Cat.JPG", time.Now()))
	assert.Regexp(t, `^user-profiles/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}$`, ObjectKey("user-profiles", "noext", time.Now()))
}

func TestUpload_Success(t *testing.T) {
	h := newTestHost(t)

	var got *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		assert.Equal(t, "pixels", string(b))
		return &s3.PutObjectOutput{}, nil
	}

	obj, err := h.Upload(context.Background(), "images", "a.png", strings.NewReader("pixels"), 6, "image/png")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "images", *got.Bucket)
	assert.Equal(t, int64(6), *got.ContentLength)
	assert.Equal(t, "image/png", *got.ContentType)
	assert.True(t, strings.HasPrefix(*got.Key, "images/2026/04/07/"))

	assert.Equal(t, *got.Key, obj.ObjectID)
	assert.Equal(t, "https://cdn.example.com/images/"+*got.Key, obj.URL)
}

func TestUpload_ErrorIsUpstream(t *testing.T) {
	h := newTestHost(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("503 slow down")
	}

	_, err := h.Upload(context.Background(), "images", "a.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestDelete(t *testing.T) {
	h := newTestHost(t)

	var key string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		key = *in.Key
		assert.Equal(t, "images", *in.Bucket)
		return &s3.DeleteObjectOutput{}, nil
	}
	require.NoError(t, h.Delete(context.Background(), "images/2026/04/07/x.png"))
	assert.Equal(t, "images/2026/04/07/x.png", key)

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return nil, errors.New("boom")
	}
	assert.ErrorIs(t, h.Delete(context.Background(), "k"), common.ErrUpstream)
}

func TestNewS3MediaHost_ConfigError(t *testing.T) {
	stubAWS(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3MediaHost(context.Background(), S3Config{})
	assert.Error(t, err)
}
