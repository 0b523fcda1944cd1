// Package pdf locates text lines in PDF pages by geometry and rewrites
// them with a redact-then-overlay pass.
package pdf

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"resumetailor/internal/classifier"
	"resumetailor/internal/domain"
	"resumetailor/internal/lengthfit"
)

// DefaultWorkers bounds per-page parallelism when none is configured.
const DefaultWorkers = 4

// Codec implements extraction and injection for PDF documents.
type Codec struct {
	classifier *classifier.Classifier
	fit        lengthfit.Enforcer
	workers    int
}

// NewCodec creates a PDF codec. workers bounds the number of pages traced
// or rewritten concurrently.
func NewCodec(cls *classifier.Classifier, fit lengthfit.Enforcer, workers int) *Codec {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Codec{classifier: cls, fit: fit, workers: workers}
}

// Format returns domain.FormatPDF.
func (c *Codec) Format() domain.Format { return domain.FormatPDF }

// tracedPage is the pure per-page input and output of tracing.
type tracedPage struct {
	index    int
	content  []byte
	fonts    map[string]*font
	ops      []operation
	showings []showing
	lines    []line
}

func (p *tracedPage) trace() error {
	ops, err := parseContent(p.content)
	if err != nil {
		return fmt.Errorf("page %d content: %w", p.index, err)
	}
	p.ops = ops
	p.showings = trace(ops, p.fonts)
	p.lines = groupLines(p.showings)
	return nil
}

// Extract classifies the text lines of data. Each span is one line; its
// coordinate carries the page index, bounding box, baseline origin and the
// font size, name and fill colour of the line's first showing.
func (c *Codec) Extract(ctx context.Context, data []byte) (*domain.SectionedDocument, error) {
	_, pages, err := c.load(ctx, data)
	if err != nil {
		return nil, err
	}
	return c.classify(data, pages), nil
}

// Inject rewrites the spans of data selected by rs. Phase one blanks every
// target line and paints it white; phase two reopens the result and draws
// the replacements with standard fonts at the original baselines.
func (c *Codec) Inject(ctx context.Context, data []byte, rs domain.RewriteSet) ([]byte, error) {
	doc, pages, err := c.load(ctx, data)
	if err != nil {
		return nil, err
	}
	targets := domain.Pair(c.classify(data, pages), rs)
	if len(targets) == 0 {
		return append([]byte(nil), data...), nil
	}

	marks := make(map[int][]domain.Rect)
	for _, t := range targets {
		g := t.Span.Coord.Geometry
		if g == nil || g.Page < 0 || g.Page >= len(pages) {
			return nil, &domain.StructuralMismatchError{
				Format:  domain.FormatPDF,
				Section: t.Span.Label,
				Index:   t.Index,
				Detail:  "span has no page coordinate",
			}
		}
		marks[g.Page] = append(marks[g.Page], g.BBox)
	}

	redacted, err := c.redactPages(ctx, doc, pages, marks)
	if err != nil {
		return nil, err
	}

	_, fresh, err := c.load(ctx, data)
	if err != nil {
		return nil, err
	}
	out, err := c.overlay(redacted, c.classify(data, fresh), rs)
	if err != nil {
		return nil, err
	}
	log.Printf("pdf.Codec.Inject: rewrote %d lines on %d pages", len(targets), len(marks))
	return out, nil
}

// load opens data and traces every page. Page inputs are gathered from the
// object model sequentially; tracing runs in parallel.
func (c *Codec) load(ctx context.Context, data []byte) (*document, []tracedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	doc, err := openDocument(data)
	if err != nil {
		return nil, nil, err
	}

	pages := make([]tracedPage, doc.pageCount())
	for i := range pages {
		pd, err := doc.page(i)
		if err != nil {
			return nil, nil, domain.NewParseError(domain.FormatPDF, err)
		}
		pages[i] = tracedPage{index: i, content: doc.content(pd), fonts: doc.fonts(pd)}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return pages[i].trace()
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, domain.NewParseError(domain.FormatPDF, err)
	}
	return doc, pages, nil
}

func (c *Codec) classify(data []byte, pages []tracedPage) *domain.SectionedDocument {
	var units []classifier.Unit
	for _, p := range pages {
		for _, l := range p.lines {
			units = append(units, classifier.Unit{
				Text: l.text,
				Bold: l.bold(),
				Coord: domain.Coordinate{Geometry: &domain.GeometryCoord{
					Page:     p.index,
					BBox:     l.bbox,
					FontSize: l.size,
					FontName: l.font.baseFont,
					Color:    l.color,
					Baseline: l.baseline,
				}},
			})
		}
	}
	return c.classifier.Classify(domain.FormatPDF, data, units)
}
