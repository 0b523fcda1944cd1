package port

import (
	"context"

	"resumetailor/internal/domain"
)

// DocumentCodec locates sections in one document format and writes
// rewrites back into it.
type DocumentCodec interface {
	Format() domain.Format
	// Extract classifies data. The returned coordinates are valid only
	// against data itself.
	Extract(ctx context.Context, data []byte) (*domain.SectionedDocument, error)
	// Inject re-derives coordinates from data and overwrites the spans
	// selected by rs. On error no output is returned.
	Inject(ctx context.Context, data []byte, rs domain.RewriteSet) ([]byte, error)
}
