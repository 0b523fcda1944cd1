package pdf

import (
	"bytes"
	"fmt"
	"sort"

	"golang.org/x/text/encoding/charmap"

	"resumetailor/internal/domain"
)

// overlayText is one replacement drawn in the second injection phase.
type overlayText struct {
	text  string
	coord domain.GeometryCoord
}

// overlay runs the second injection phase against the redacted bytes.
// Span coordinates come from a fresh classification of the original
// snapshot; every page index is checked against the reopened document.
func (c *Codec) overlay(redacted []byte, fresh *domain.SectionedDocument, rs domain.RewriteSet) ([]byte, error) {
	doc, err := openDocument(redacted)
	if err != nil {
		return nil, fmt.Errorf("reopening redacted document: %w", err)
	}

	byPage := make(map[int][]overlayText)
	for _, t := range domain.Pair(fresh, rs) {
		g := t.Span.Coord.Geometry
		if g == nil || g.Page < 0 || g.Page >= doc.pageCount() {
			return nil, &domain.StructuralMismatchError{
				Format:  domain.FormatPDF,
				Section: t.Span.Label,
				Index:   t.Index,
				Detail:  fmt.Sprintf("page index out of range for %d-page document", doc.pageCount()),
			}
		}
		text := c.fit.Enforce(t.Span.Text, t.Replacement)
		if text == "" {
			continue
		}
		byPage[g.Page] = append(byPage[g.Page], overlayText{text: text, coord: *g})
	}

	order := make([]int, 0, len(byPage))
	for p := range byPage {
		order = append(order, p)
	}
	sort.Ints(order)

	for _, p := range order {
		pd, err := doc.page(p)
		if err != nil {
			return nil, fmt.Errorf("overlay: %w", err)
		}
		faces := make(map[string]string)
		var content bytes.Buffer
		for _, o := range byPage[p] {
			face := MapFont(o.coord.FontName)
			key, ok := faces[face]
			if !ok {
				if key, err = doc.addFont(pd, face); err != nil {
					return nil, fmt.Errorf("overlay page %d: %w", p, err)
				}
				faces[face] = key
			}
			writeText(&content, key, o)
		}
		if err := doc.appendContent(pd, content.Bytes()); err != nil {
			return nil, fmt.Errorf("overlay page %d: %w", p, err)
		}
	}

	out, err := doc.bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}
	return out, nil
}

func writeText(w *bytes.Buffer, fontKey string, o overlayText) {
	g := o.coord
	r := float64(g.Color>>16&0xFF) / 255
	gr := float64(g.Color>>8&0xFF) / 255
	b := float64(g.Color&0xFF) / 255
	fmt.Fprintf(w, "q\nBT\n/%s %s Tf\n%s %s %s rg\n1 0 0 1 %s %s Tm\n(%s) Tj\nET\nQ\n",
		fontKey, formatNumber(g.FontSize),
		formatNumber(r), formatNumber(gr), formatNumber(b),
		formatNumber(g.Baseline.X), formatNumber(g.Baseline.Y),
		encodeWinAnsi(o.text))
}

// encodeWinAnsi encodes s for a WinAnsi simple font as the body of a
// literal string. Runes outside the code page become '?'.
func encodeWinAnsi(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		switch {
		case b == '(' || b == ')' || b == '\\':
			out.WriteByte('\\')
			out.WriteByte(b)
		case b < 0x20 || b >= 0x7F:
			fmt.Fprintf(&out, "\\%03o", b)
		default:
			out.WriteByte(b)
		}
	}
	return out.String()
}
