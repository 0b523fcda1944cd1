// Package docx locates and rewrites text in WordprocessingML documents at
// run granularity, leaving every other byte of the package intact.
package docx

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"sort"
	"strings"

	"resumetailor/internal/classifier"
	"resumetailor/internal/domain"
	"resumetailor/internal/lengthfit"
)

// Codec implements extraction and injection for DOCX documents.
type Codec struct {
	classifier *classifier.Classifier
	fit        lengthfit.Enforcer
}

// NewCodec creates a DOCX codec.
func NewCodec(cls *classifier.Classifier, fit lengthfit.Enforcer) *Codec {
	return &Codec{classifier: cls, fit: fit}
}

// Format returns domain.FormatDOCX.
func (c *Codec) Format() domain.Format { return domain.FormatDOCX }

// Extract classifies the body paragraphs of data. Each span is one
// paragraph; its coordinate names the first text-bearing run, with the
// paragraph's later text-bearing runs as continuations.
func (c *Codec) Extract(ctx context.Context, data []byte) (*domain.SectionedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, paras, err := load(data)
	if err != nil {
		return nil, err
	}
	return c.classify(data, pkg, paras), nil
}

// Inject rewrites the spans of data selected by rs and returns the new
// package bytes. Coordinates are always recomputed from data itself.
func (c *Codec) Inject(ctx context.Context, data []byte, rs domain.RewriteSet) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, paras, err := load(data)
	if err != nil {
		return nil, err
	}
	doc := c.classify(data, pkg, paras)

	targets := domain.Pair(doc, rs)
	var edits []edit
	for _, target := range targets {
		replacement := c.fit.Enforce(target.Span.Text, target.Replacement)
		runEdits, err := rewriteSpan(paras, target, replacement)
		if err != nil {
			return nil, err
		}
		edits = append(edits, runEdits...)
	}

	main, err := applyEdits(pkg.main, edits)
	if err != nil {
		return nil, err
	}
	out, err := pkg.rebuild(main)
	if err != nil {
		return nil, fmt.Errorf("docx.Codec.Inject: %w", err)
	}
	log.Printf("docx.Codec.Inject: rewrote %d spans with %d edits", len(targets), len(edits))
	return out, nil
}

func load(data []byte) (*wordPackage, []paragraph, error) {
	pkg, err := openPackage(data)
	if err != nil {
		return nil, nil, err
	}
	paras, err := scanBody(pkg.main)
	if err != nil {
		return nil, nil, domain.NewParseError(domain.FormatDOCX, err)
	}
	return pkg, paras, nil
}

func (c *Codec) classify(data []byte, pkg *wordPackage, paras []paragraph) *domain.SectionedDocument {
	units := make([]classifier.Unit, 0, len(paras))
	for pi, p := range paras {
		coord := domain.RunCoord{Paragraph: pi, Run: -1}
		unit := classifier.Unit{Style: pkg.styles.resolve(p.styleID)}

		var sb strings.Builder
		for ri, r := range p.runs {
			text := r.text()
			if text == "" {
				continue
			}
			sb.WriteString(text)
			if coord.Run < 0 {
				coord.Run = ri
			} else {
				coord.Continuation = append(coord.Continuation, ri)
			}
			if strings.TrimSpace(text) != "" {
				unit.Bold = append(unit.Bold, r.bold)
			}
		}
		unit.Text = sb.String()
		unit.Coord = domain.Coordinate{Run: &coord}
		units = append(units, unit)
	}
	return c.classifier.Classify(domain.FormatDOCX, data, units)
}

// edit replaces src[start:end] with repl. start == end is an insertion.
type edit struct {
	start, end int
	repl       []byte
}

// rewriteSpan puts replacement into the first writable w:t of the span's
// primary run and empties every other w:t of the span, so run properties
// and the paragraph structure stay untouched.
func rewriteSpan(paras []paragraph, target domain.Target, replacement string) ([]edit, error) {
	rc := target.Span.Coord.Run
	mismatch := func(detail string) error {
		return &domain.StructuralMismatchError{
			Format:  domain.FormatDOCX,
			Section: target.Span.Label,
			Index:   target.Index,
			Detail:  detail,
		}
	}
	if rc == nil {
		return nil, mismatch("span has no run coordinate")
	}
	if rc.Paragraph < 0 || rc.Paragraph >= len(paras) {
		return nil, mismatch(fmt.Sprintf("paragraph %d out of range", rc.Paragraph))
	}
	p := paras[rc.Paragraph]
	if rc.Run < 0 || rc.Run >= len(p.runs) {
		return nil, mismatch(fmt.Sprintf("run %d out of range in paragraph %d", rc.Run, rc.Paragraph))
	}

	var edits []edit
	written := false
	for _, t := range p.runs[rc.Run].texts {
		if !t.writable() {
			continue
		}
		if written {
			edits = append(edits, edit{start: t.contentStart, end: t.contentEnd})
			continue
		}
		switch {
		case t.preserve:
		case t.spaceStart >= 0:
			edits = append(edits, edit{start: t.spaceStart, end: t.spaceEnd, repl: []byte("preserve")})
		default:
			edits = append(edits, edit{start: t.tagEnd - 1, end: t.tagEnd - 1, repl: []byte(` xml:space="preserve"`)})
		}
		edits = append(edits, edit{start: t.contentStart, end: t.contentEnd, repl: escape(replacement)})
		written = true
	}
	if !written {
		return nil, mismatch(fmt.Sprintf("run %d in paragraph %d has no text", rc.Run, rc.Paragraph))
	}

	for _, ri := range rc.Continuation {
		if ri < 0 || ri >= len(p.runs) {
			return nil, mismatch(fmt.Sprintf("continuation run %d out of range in paragraph %d", ri, rc.Paragraph))
		}
		for _, t := range p.runs[ri].texts {
			if t.writable() {
				edits = append(edits, edit{start: t.contentStart, end: t.contentEnd})
			}
		}
	}
	return edits, nil
}

func escape(s string) []byte {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.Bytes()
}

func applyEdits(src []byte, edits []edit) ([]byte, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out bytes.Buffer
	out.Grow(len(src))
	pos := 0
	for _, e := range edits {
		if e.start < pos || e.end < e.start || e.end > len(src) {
			return nil, fmt.Errorf("overlapping edit at offset %d", e.start)
		}
		out.Write(src[pos:e.start])
		out.Write(e.repl)
		pos = e.end
	}
	out.Write(src[pos:])
	return out.Bytes(), nil
}
