package port

import (
	"context"

	"resumetailor/internal/domain"
)

// GenerateInput carries the classified text a generator rewrites.
type GenerateInput struct {
	Summary    []string
	Experience []string
	Target     string
}

// GenerateOutput contains the rewrites produced by a generator.
type GenerateOutput struct {
	Rewrites      domain.RewriteSet
	MissingSkills []string
	ModelUsed     string
	PromptUsed    string
}

// RewriteGenerator abstracts LLM-based rewrite generation.
type RewriteGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
