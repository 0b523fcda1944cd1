package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumetailor/internal/config"
	"resumetailor/internal/domain"
	"resumetailor/internal/port"
)

// DocumentInput is an uploaded document. Format may be left empty to sniff it.
type DocumentInput struct {
	Data     []byte
	FileName string
	Format   domain.Format
}

// RewriteInput applies a caller-supplied RewriteSet.
type RewriteInput struct {
	DocumentInput
	Rewrites domain.RewriteSet
}

// TailorInput asks the generator for rewrites targeting a job description.
type TailorInput struct {
	DocumentInput
	Target string
	Store  bool
}

// RewriteResult is a rewritten document.
type RewriteResult struct {
	Format      domain.Format        `json:"format"`
	FileName    string               `json:"file_name"`
	ContentType string               `json:"content_type"`
	Data        []byte               `json:"-"`
	Counts      domain.SectionCounts `json:"counts"`
	Applied     int                  `json:"applied"`
}

// TailorResult is a rewritten document plus what the generator reported.
type TailorResult struct {
	RewriteResult
	Rewrites      domain.RewriteSet `json:"rewrites"`
	MissingSkills []string          `json:"missing_skills"`
	ModelUsed     string            `json:"model_used,omitempty"`
	StorageKey    string            `json:"storage_key,omitempty"`
	DownloadURL   string            `json:"download_url,omitempty"`
}

// TailorService defines the resume tailoring contract.
type TailorService interface {
	Sections(ctx context.Context, input DocumentInput) (*domain.SectionedDocument, error)
	Rewrite(ctx context.Context, input RewriteInput) (*RewriteResult, error)
	Tailor(ctx context.Context, input TailorInput) (*TailorResult, error)
}

type tailorService struct {
	engine    *Engine
	generator port.RewriteGenerator
	storage   port.ResultStore
	cfg       *config.S3Config
}

// NewTailorService creates a TailorService. generator and storage may be nil,
// in which case Tailor (or its store option) reports them as unavailable.
func NewTailorService(
	engine *Engine,
	generator port.RewriteGenerator,
	storage port.ResultStore,
	cfg *config.S3Config,
) TailorService {
	return &tailorService{
		engine:    engine,
		generator: generator,
		storage:   storage,
		cfg:       cfg,
	}
}

func (s *tailorService) format(input DocumentInput) (domain.Format, error) {
	if input.Format != "" {
		return input.Format, nil
	}
	return DetectFormat(input.Data, input.FileName)
}

func (s *tailorService) Sections(ctx context.Context, input DocumentInput) (*domain.SectionedDocument, error) {
	f, err := s.format(input)
	if err != nil {
		return nil, err
	}
	return s.engine.Extract(ctx, f, input.Data)
}

func (s *tailorService) Rewrite(ctx context.Context, input RewriteInput) (*RewriteResult, error) {
	f, err := s.format(input.DocumentInput)
	if err != nil {
		return nil, err
	}
	doc, err := s.engine.Extract(ctx, f, input.Data)
	if err != nil {
		return nil, err
	}
	return s.inject(ctx, f, input.DocumentInput, doc, input.Rewrites)
}

func (s *tailorService) inject(ctx context.Context, f domain.Format, input DocumentInput, doc *domain.SectionedDocument, rs domain.RewriteSet) (*RewriteResult, error) {
	WarnExcess(doc, rs)
	out, err := s.engine.Inject(ctx, f, input.Data, rs)
	if err != nil {
		return nil, err
	}
	return &RewriteResult{
		Format:      f,
		FileName:    OutputName(input.FileName, f),
		ContentType: f.ContentType(),
		Data:        out,
		Counts:      doc.Counts(),
		Applied:     len(domain.Pair(doc, rs)),
	}, nil
}

func (s *tailorService) Tailor(ctx context.Context, input TailorInput) (*TailorResult, error) {
	target := strings.TrimSpace(input.Target)
	if target == "" {
		return nil, domain.ErrEmptyTarget
	}
	if s.generator == nil {
		return nil, domain.ErrGeneratorUnavailable
	}
	if input.Store && (s.storage == nil || s.cfg == nil || !s.cfg.Enabled()) {
		return nil, domain.ErrStorageUnavailable
	}

	f, err := s.format(input.DocumentInput)
	if err != nil {
		return nil, err
	}
	doc, err := s.engine.Extract(ctx, f, input.Data)
	if err != nil {
		return nil, err
	}

	result := &TailorResult{Rewrites: domain.RewriteSet{}}
	if doc.Empty() {
		log.Printf("tailorService.Tailor: no summary or experience sections in %q, returning input unchanged", input.FileName)
		result.RewriteResult = RewriteResult{
			Format:      f,
			FileName:    OutputName(input.FileName, f),
			ContentType: f.ContentType(),
			Data:        input.Data,
		}
	} else {
		gen, err := s.generator.Generate(ctx, port.GenerateInput{
			Summary:    doc.Texts(domain.SectionSummary),
			Experience: doc.Texts(domain.SectionExperience),
			Target:     target,
		})
		if err != nil {
			log.Printf("tailorService.Tailor: generation failed: %v", err)
			return nil, fmt.Errorf("generating rewrites: %w", err)
		}
		log.Printf("tailorService.Tailor: %s suggested %d summary and %d experience rewrites",
			gen.ModelUsed, len(gen.Rewrites[domain.SectionSummary]), len(gen.Rewrites[domain.SectionExperience]))

		rs := gen.Rewrites.Clamp(doc)
		rewritten, err := s.inject(ctx, f, input.DocumentInput, doc, rs)
		if err != nil {
			return nil, err
		}
		result.RewriteResult = *rewritten
		result.Rewrites = rs
		result.MissingSkills = gen.MissingSkills
		result.ModelUsed = gen.ModelUsed
	}

	if input.Store {
		if err := s.store(ctx, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *tailorService) store(ctx context.Context, result *TailorResult) error {
	key := fmt.Sprintf("results/%s/%s", uuid.New(), result.FileName)

	log.Printf("tailorService.store: uploading %s (%s, %d bytes)", key, result.Format, len(result.Data))
	if _, err := s.storage.Put(ctx, port.StoreInput{
		Key:    key,
		Body:   bytes.NewReader(result.Data),
		Size:   int64(len(result.Data)),
		Format: result.Format,
	}); err != nil {
		log.Printf("tailorService.store: upload failed for %s: %v", key, err)
		return domain.ErrUploadFailed
	}

	url, err := s.storage.DownloadURL(ctx, key, time.Duration(s.cfg.PresignExpiry)*time.Second)
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Printf("tailorService.store: failed to remove %s after presign error: %v", key, delErr)
		}
		return fmt.Errorf("generating download URL: %w", err)
	}
	result.StorageKey = key
	result.DownloadURL = url
	return nil
}

// OutputName derives the download name of a rewritten document.
func OutputName(filename string, f domain.Format) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "resume"
	}
	return base + "_tailored." + string(f)
}
