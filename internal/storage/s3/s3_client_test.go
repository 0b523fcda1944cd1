package s3

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumetailor/internal/config"
)

func TestEndpointOptions(t *testing.T) {
	assert.Empty(t, endpointOptions(&config.S3Config{}))

	opts := endpointOptions(&config.S3Config{Endpoint: "http://localhost:9000"})
	require.Len(t, opts, 1)

	var o s3.Options
	opts[0](&o)
	require.NotNil(t, o.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *o.BaseEndpoint)
	assert.True(t, o.UsePathStyle)
}

func TestPresignedURL_UsesStaticCredentials(t *testing.T) {
	store, err := NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Bucket:    "tailored",
		Endpoint:  "http://localhost:9000",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	url, err := store.DownloadURL(context.Background(), "results/abc/resume.pdf", 15*time.Minute)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/tailored/results/abc/resume.pdf?"))
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "AKIDEXAMPLE")
}

func TestNewS3Client_RequiresBucket(t *testing.T) {
	store, err := NewS3Client(context.Background(), &config.S3Config{Region: "us-east-1"})
	assert.Nil(t, store)
	assert.Error(t, err)
}
