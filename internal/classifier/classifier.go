// Package classifier assigns the text-bearing units of a document to
// semantic sections in a single reading-order pass.
package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"resumetailor/internal/domain"
)

// Default thresholds for treating a line as short enough to be a heading.
const (
	DefaultMaxHeadingChars = 50
	DefaultMaxHeadingWords = 6
)

// Unit is one text-bearing unit in reading order: a paragraph for DOCX, a
// line for PDF. Bold holds one flag per sub-run with non-blank text.
type Unit struct {
	Text  string
	Style string
	Bold  []bool
	Coord domain.Coordinate
}

// Config holds the heading thresholds.
type Config struct {
	MaxHeadingChars int
	MaxHeadingWords int
}

// Classifier is stateless between calls and safe for concurrent use.
type Classifier struct {
	maxChars int
	maxWords int
}

// New creates a Classifier, filling unset thresholds with defaults.
func New(cfg Config) *Classifier {
	c := &Classifier{maxChars: cfg.MaxHeadingChars, maxWords: cfg.MaxHeadingWords}
	if c.maxChars <= 0 {
		c.maxChars = DefaultMaxHeadingChars
	}
	if c.maxWords <= 0 {
		c.maxWords = DefaultMaxHeadingWords
	}
	return c
}

// Classify walks units left to right and returns the sectioned document.
// Heading units are kept in Spans (for full-text coverage) with
// SectionNone and Heading set; they only move the current section.
func (c *Classifier) Classify(format domain.Format, snapshot []byte, units []Unit) *domain.SectionedDocument {
	doc := &domain.SectionedDocument{
		Format:   format,
		Spans:    make([]domain.Span, 0, len(units)),
		Snapshot: snapshot,
	}
	texts := make([]string, 0, len(units))
	current := domain.SectionNone

	for _, u := range units {
		texts = append(texts, u.Text)
		span := domain.Span{Text: u.Text, Coord: u.Coord}

		if strings.TrimSpace(u.Text) == "" {
			doc.Spans = append(doc.Spans, span)
			continue
		}

		if heading, kind := c.heading(u); heading {
			switch kind {
			case kindSummary:
				current = domain.SectionSummary
			case kindExperience:
				current = domain.SectionExperience
			case kindStop:
				current = domain.SectionNone
			}
			span.Heading = true
			doc.Spans = append(doc.Spans, span)
			continue
		}

		span.Label = current
		doc.Spans = append(doc.Spans, span)
	}

	doc.FullText = strings.Join(texts, "\n")
	return doc
}

// heading reports whether u is a heading and which category its text
// triggers. Style and all-bold headings that trigger nothing leave the
// current section unchanged.
func (c *Classifier) heading(u Unit) (bool, headingKind) {
	n := normalize(u.Text)
	kind := match(n)

	if strings.Contains(strings.ToLower(u.Style), "heading") {
		return true, kind
	}

	trimmed := strings.TrimSpace(u.Text)
	if utf8.RuneCountInString(trimmed) < c.maxChars && allBold(u.Bold) {
		return true, kind
	}

	if kind != kindNone && c.short(n) {
		return true, kind
	}
	return false, kindNone
}

func (c *Classifier) short(n normalized) bool {
	l := utf8.RuneCountInString(n.text)
	if l < 1 || l > c.maxChars {
		return false
	}
	return len(n.words) <= c.maxWords || letterSpaced(n.words)
}

// letterSpaced reports whether every word is a single letter, as in
// "E X P E R I E N C E".
func letterSpaced(words []string) bool {
	for _, w := range words {
		if utf8.RuneCountInString(w) != 1 {
			return false
		}
	}
	return len(words) > 0
}

func allBold(flags []bool) bool {
	if len(flags) == 0 {
		return false
	}
	for _, b := range flags {
		if !b {
			return false
		}
	}
	return true
}

// normalized is a lowercase letters-only view of a line.
type normalized struct {
	text      string
	words     []string
	condensed string
}

func normalize(s string) normalized {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	words := strings.Fields(mapped)
	return normalized{
		text:      strings.Join(words, " "),
		words:     words,
		condensed: strings.Join(words, ""),
	}
}
