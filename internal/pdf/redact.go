package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"resumetailor/internal/domain"
)

// centreSlack widens redaction rects when testing showing centres.
const centreSlack = 0.5

// redactPages runs the first injection phase: every showing whose box
// centre falls inside a marked rect is blanked, and the rects are painted
// white. Content is computed per page in parallel and committed in page
// order, one content-stream rewrite per page.
func (c *Codec) redactPages(ctx context.Context, doc *document, pages []tracedPage, marks map[int][]domain.Rect) ([]byte, error) {
	order := make([]int, 0, len(marks))
	for p := range marks {
		order = append(order, p)
	}
	sort.Ints(order)

	rewritten := make([][]byte, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, p := range order {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rewritten[i] = redactContent(pages[p], marks[p])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, p := range order {
		pd, err := doc.page(p)
		if err != nil {
			return nil, fmt.Errorf("redacting: %w", err)
		}
		if err := doc.replaceContent(pd, rewritten[i]); err != nil {
			return nil, fmt.Errorf("redacting page %d: %w", p, err)
		}
	}
	out, err := doc.bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing redacted document: %w", err)
	}
	return out, nil
}

// redactContent returns the page content with the marked showings blanked,
// wrapped in q/Q, followed by white fills over the marked rects.
func redactContent(page tracedPage, rects []domain.Rect) []byte {
	var out bytes.Buffer
	out.WriteString("q\n")
	pos := 0
	for _, s := range page.showings {
		cx := (s.bbox.X0 + s.bbox.X1) / 2
		cy := (s.bbox.Y0 + s.bbox.Y1) / 2
		if !insideAny(rects, cx, cy) {
			continue
		}
		op := page.ops[s.op]
		if op.start < pos {
			continue
		}
		out.Write(page.content[pos:op.start])
		out.WriteString(blankShow(op, s))
		pos = op.end
	}
	out.Write(page.content[pos:])
	out.WriteString("\nQ\n")

	for _, r := range rects {
		fmt.Fprintf(&out, "q 1 1 1 rg %s %s %s %s re f Q\n",
			formatNumber(r.X0), formatNumber(r.Y0), formatNumber(r.X1-r.X0), formatNumber(r.Y1-r.Y0))
	}
	return out.Bytes()
}

func insideAny(rects []domain.Rect, x, y float64) bool {
	for _, r := range rects {
		if r.Contains(x, y, centreSlack) {
			return true
		}
	}
	return false
}

// blankShow replaces a text-showing operator with a glyph-free TJ that
// moves the text position by the same amount, so later text stays put.
func blankShow(op operation, s showing) string {
	n := 0.0
	if s.fontSize != 0 && s.hscale != 0 {
		n = -s.advance * 1000 / (s.fontSize * s.hscale)
	}
	tj := "[" + formatNumber(n) + "] TJ"
	switch op.op {
	case "'":
		return "T* " + tj
	case "\"":
		return fmt.Sprintf("%s Tw %s Tc T* %s", formatNumber(op.number(0)), formatNumber(op.number(1)), tj)
	}
	return tj
}

func formatNumber(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
