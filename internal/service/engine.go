package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resumetailor/internal/domain"
	"resumetailor/internal/port"
)

// Engine dispatches extraction and injection to the codec registered for a
// document format.
type Engine struct {
	codecs  map[domain.Format]port.DocumentCodec
	maxSize int64
}

// NewEngine registers codecs by their Format. maxSize <= 0 disables the
// size limit.
func NewEngine(maxSize int64, codecs ...port.DocumentCodec) *Engine {
	e := &Engine{
		codecs:  make(map[domain.Format]port.DocumentCodec, len(codecs)),
		maxSize: maxSize,
	}
	for _, c := range codecs {
		e.codecs[c.Format()] = c
	}
	return e
}

// Formats lists the registered formats in name order.
func (e *Engine) Formats() []domain.Format {
	out := make([]domain.Format, 0, len(e.codecs))
	for f := range e.codecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e *Engine) codec(f domain.Format) (port.DocumentCodec, error) {
	c, ok := e.codecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, f)
	}
	return c, nil
}

func (e *Engine) checkSize(data []byte) error {
	if e.maxSize > 0 && int64(len(data)) > e.maxSize {
		return domain.ErrFileTooLarge
	}
	return nil
}

// Extract classifies data as a document of format f.
func (e *Engine) Extract(ctx context.Context, f domain.Format, data []byte) (*domain.SectionedDocument, error) {
	if err := e.checkSize(data); err != nil {
		return nil, err
	}
	c, err := e.codec(f)
	if err != nil {
		return nil, err
	}
	doc, err := c.Extract(ctx, data)
	if err != nil {
		log.Printf("Engine.Extract: %s extraction failed: %v", f, err)
		return nil, err
	}
	counts := doc.Counts()
	log.Printf("Engine.Extract: %s document, %d spans (summary=%d, experience=%d)",
		f, len(doc.Spans), counts.Summary, counts.Experience)
	return doc, nil
}

// Inject writes rs into data. Coordinates are re-derived by the codec from
// data itself.
func (e *Engine) Inject(ctx context.Context, f domain.Format, data []byte, rs domain.RewriteSet) ([]byte, error) {
	if err := e.checkSize(data); err != nil {
		return nil, err
	}
	c, err := e.codec(f)
	if err != nil {
		return nil, err
	}
	out, err := c.Inject(ctx, data, rs)
	if err != nil {
		log.Printf("Engine.Inject: %s injection failed: %v", f, err)
		return nil, err
	}
	log.Printf("Engine.Inject: %s document rewritten (%d -> %d bytes)", f, len(data), len(out))
	return out, nil
}

// WarnExcess logs replacements that have no span to land on.
func WarnExcess(doc *domain.SectionedDocument, rs domain.RewriteSet) {
	counts := doc.Counts()
	if n := rs.Excess(domain.SectionSummary, counts.Summary); n > 0 {
		log.Printf("Engine.Inject: ignoring %d excess summary replacements", n)
	}
	if n := rs.Excess(domain.SectionExperience, counts.Experience); n > 0 {
		log.Printf("Engine.Inject: ignoring %d excess experience replacements", n)
	}
}

// DetectFormat sniffs the document format from data. Content that sniffs
// as a plain zip is accepted as DOCX when the file name says so.
func DetectFormat(data []byte, filename string) (domain.Format, error) {
	mt := mimetype.Detect(data)
	for ct, f := range domain.ContentTypeFormats {
		if mt.Is(ct) {
			return f, nil
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if f, ok := domain.ExtensionFormats[ext]; ok && f == domain.FormatDOCX && isZip(mt) {
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mt.String())
}

func isZip(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}
