package port

import (
	"context"
	"io"
	"time"

	"resumetailor/internal/domain"
)

// StoreInput is one rewritten document bound for the result store. The
// content type follows from Format.
type StoreInput struct {
	Key    string
	Body   io.Reader
	Size   int64
	Format domain.Format
}

// StoredResult locates a document after Put.
type StoredResult struct {
	Key      string
	Location string
	ETag     string
}

// ResultStore keeps rewritten documents in a single bucket and hands out
// time-limited download links for them.
type ResultStore interface {
	Put(ctx context.Context, input StoreInput) (*StoredResult, error)
	Delete(ctx context.Context, key string) error
	DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
