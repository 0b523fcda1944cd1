package pdf

import (
	"math"
	"sort"
	"strings"

	"resumetailor/internal/domain"
)

// line is a run of showings that share a baseline on one page.
type line struct {
	showings []showing
	text     string
	bbox     domain.Rect
	baseline domain.Point
	size     float64
	font     *font
	color    int
}

// bold holds one flag per showing with non-blank text.
func (l line) bold() []bool {
	flags := make([]bool, 0, len(l.showings))
	for _, s := range l.showings {
		if strings.TrimSpace(s.text) != "" {
			flags = append(flags, s.font.bold)
		}
	}
	return flags
}

// groupLines clusters showings by baseline, then splits each cluster
// wherever the horizontal gap is far wider than a word break, so a sidebar
// sharing a baseline with the main column stays a separate line. Lines are
// ordered top to bottom, then left to right; when splits reveal a second
// column, its lines follow the whole first column. Showings with no visible
// text are dropped.
func groupLines(shows []showing) []line {
	visible := make([]showing, 0, len(shows))
	for _, s := range shows {
		if strings.TrimSpace(s.text) != "" {
			visible = append(visible, s)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].origin.Y > visible[j].origin.Y })

	var clusters [][]showing
	for _, s := range visible {
		if n := len(clusters); n > 0 {
			head := clusters[n-1][0]
			if math.Abs(head.origin.Y-s.origin.Y) <= baselineTolerance(head, s) {
				clusters[n-1] = append(clusters[n-1], s)
				continue
			}
		}
		clusters = append(clusters, []showing{s})
	}

	lines := make([]line, 0, len(clusters))
	gutter := math.Inf(1)
	for _, c := range clusters {
		sort.SliceStable(c, func(i, j int) bool { return c[i].origin.X < c[j].origin.X })
		for i, seg := range splitColumns(c) {
			l := buildLine(seg)
			if i > 0 {
				gutter = math.Min(gutter, l.bbox.X0)
			}
			lines = append(lines, l)
		}
	}
	if math.IsInf(gutter, 1) {
		return lines
	}

	ordered := make([]line, 0, len(lines))
	var right []line
	for _, l := range lines {
		if l.bbox.X0 >= gutter-1 {
			right = append(right, l)
			continue
		}
		ordered = append(ordered, l)
	}
	return append(ordered, right...)
}

// splitColumns cuts a left-to-right sorted cluster at every gap wider than
// columnGap.
func splitColumns(c []showing) [][]showing {
	var segs [][]showing
	start := 0
	for i := 1; i < len(c); i++ {
		if c[i].origin.X-c[i-1].end.X > columnGap(c[i-1], c[i]) {
			segs = append(segs, c[start:i])
			start = i
		}
	}
	return append(segs, c[start:])
}

func columnGap(a, b showing) float64 {
	return 3 * math.Max(a.size, b.size)
}

func baselineTolerance(a, b showing) float64 {
	return math.Max(1, 0.25*math.Min(a.size, b.size))
}

func buildLine(shows []showing) line {
	first := shows[0]
	l := line{
		showings: shows,
		baseline: first.origin,
		size:     first.size,
		font:     first.font,
		color:    first.color,
	}
	var sb strings.Builder
	for i, s := range shows {
		l.bbox = l.bbox.Union(s.bbox)
		if i > 0 && needsSpace(shows[i-1], s, sb.String()) {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.text)
	}
	l.text = strings.TrimSpace(sb.String())
	return l
}

// needsSpace reports whether the visual gap between two showings reads as
// a word break that neither side already carries.
func needsSpace(prev, next showing, sofar string) bool {
	if strings.HasSuffix(sofar, " ") || strings.HasPrefix(next.text, " ") {
		return false
	}
	return next.origin.X-prev.end.X > 0.15*math.Max(prev.size, next.size)
}
