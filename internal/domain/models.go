package domain

import "strings"

// RunCoord locates a span in a run-oriented (DOCX) document.
// Run is the first text-bearing run of the paragraph; Continuation holds
// the paragraph's later text-bearing runs, whose text belongs to the same
// span.
type RunCoord struct {
	Paragraph    int   `json:"paragraph_index"`
	Run          int   `json:"run_index"`
	Continuation []int `json:"continuation_runs,omitempty"`
}

// Rect is an axis-aligned box in PDF user space (origin bottom-left).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Union returns the smallest rect containing r and o. An empty r is
// treated as the identity.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Contains reports whether (x, y) lies inside r, with eps slack.
func (r Rect) Contains(x, y, eps float64) bool {
	return x >= r.X0-eps && x <= r.X1+eps && y >= r.Y0-eps && y <= r.Y1+eps
}

// Point is a position in PDF user space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GeometryCoord locates a span in a geometry-oriented (PDF) document.
type GeometryCoord struct {
	Page     int     `json:"page_index"`
	BBox     Rect    `json:"bbox"`
	FontSize float64 `json:"font_size"`
	FontName string  `json:"font_name"`
	Color    int     `json:"color"`
	Baseline Point   `json:"baseline_origin"`
}

// Coordinate is the tagged union of structural coordinates. Exactly one
// of Run or Geometry is set, matching the document's Format.
type Coordinate struct {
	Run      *RunCoord      `json:"run,omitempty"`
	Geometry *GeometryCoord `json:"geometry,omitempty"`
}

// Span is one text-bearing unit of a document tied to its coordinate.
// Heading units carry SectionNone and Heading=true.
type Span struct {
	Label   SectionLabel `json:"section"`
	Text    string       `json:"text"`
	Heading bool         `json:"heading,omitempty"`
	Coord   Coordinate   `json:"coordinate"`
}

// SectionedDocument is the extraction result for one byte snapshot. Spans
// holds every unit in reading order, classified or not; FullText is the
// unit texts joined by newlines. Coordinates are only valid against
// Snapshot.
type SectionedDocument struct {
	Format   Format `json:"format"`
	Spans    []Span `json:"spans"`
	FullText string `json:"full_text"`
	Snapshot []byte `json:"-"`
}

// Section returns the spans carrying label, in reading order.
func (d *SectionedDocument) Section(label SectionLabel) []Span {
	var out []Span
	for i := range d.Spans {
		if d.Spans[i].Label == label && label != SectionNone {
			out = append(out, d.Spans[i])
		}
	}
	return out
}

// Texts returns the original text of every span carrying label.
func (d *SectionedDocument) Texts(label SectionLabel) []string {
	spans := d.Section(label)
	out := make([]string, len(spans))
	for i := range spans {
		out[i] = spans[i].Text
	}
	return out
}

// Counts reports the number of spans per target section.
func (d *SectionedDocument) Counts() SectionCounts {
	var c SectionCounts
	for i := range d.Spans {
		switch d.Spans[i].Label {
		case SectionSummary:
			c.Summary++
		case SectionExperience:
			c.Experience++
		}
	}
	return c
}

// Empty reports the "nothing to rewrite" terminal state.
func (d *SectionedDocument) Empty() bool {
	c := d.Counts()
	return c.Summary == 0 && c.Experience == 0
}

// JoinedText rebuilds the linear text from the span list. It equals
// FullText for every document produced by a locator.
func (d *SectionedDocument) JoinedText() string {
	parts := make([]string, len(d.Spans))
	for i := range d.Spans {
		parts[i] = d.Spans[i].Text
	}
	return strings.Join(parts, "\n")
}

// SectionCounts mirrors the per-section block counts reported to callers.
type SectionCounts struct {
	Summary    int `json:"summary_blocks"`
	Experience int `json:"experience_blocks"`
}

// RewriteSet maps a section to replacement strings positionally aligned
// with that section's spans. Missing entries keep the original text;
// entries beyond the span count are ignored.
type RewriteSet map[SectionLabel][]string

// Replacement returns the replacement for the i-th span of label.
func (rs RewriteSet) Replacement(label SectionLabel, i int) (string, bool) {
	list := rs[label]
	if i < 0 || i >= len(list) {
		return "", false
	}
	return list[i], true
}

// Excess reports how many entries of label have no span to pair with.
func (rs RewriteSet) Excess(label SectionLabel, spans int) int {
	if n := len(rs[label]) - spans; n > 0 {
		return n
	}
	return 0
}

// Clamp returns a copy of rs whose lists are no longer than the span
// counts of doc.
func (rs RewriteSet) Clamp(doc *SectionedDocument) RewriteSet {
	counts := doc.Counts()
	limits := map[SectionLabel]int{
		SectionSummary:    counts.Summary,
		SectionExperience: counts.Experience,
	}
	out := make(RewriteSet, len(rs))
	for label, list := range rs {
		n := min(len(list), limits[label])
		out[label] = append([]string(nil), list[:n]...)
	}
	return out
}

// Target is a span selected for rewriting together with its replacement.
type Target struct {
	Index       int
	Span        Span
	Replacement string
}

// Pair aligns the spans of doc with rs positionally, section by section
// in TargetSections order. Deficit spans are not returned.
func Pair(doc *SectionedDocument, rs RewriteSet) []Target {
	var out []Target
	for _, label := range TargetSections {
		for i, span := range doc.Section(label) {
			repl, ok := rs.Replacement(label, i)
			if !ok {
				break
			}
			out = append(out, Target{Index: i, Span: span, Replacement: repl})
		}
	}
	return out
}
