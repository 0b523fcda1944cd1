package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"resumetailor/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the span report header row.
var columns = []string{
	"Position",
	"Section",
	"Index",
	"Heading",
	"Text",
	"Chars",
	"Location",
	"Replacement",
}

const (
	colSection     = 1
	colIndex       = 2
	colText        = 4
	colReplacement = 7
)

// Columns returns a copy of the report header.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Rows converts doc into report rows, one per span in reading order.
// Replacement is filled from rs where a replacement pairs with the span.
func Rows(doc *domain.SectionedDocument, rs domain.RewriteSet) [][]string {
	rows := make([][]string, 0, len(doc.Spans))
	seen := map[domain.SectionLabel]int{}
	for i := range doc.Spans {
		span := &doc.Spans[i]
		row := make([]string, len(columns))
		row[0] = strconv.Itoa(i)
		row[colSection] = span.Label.String()
		row[3] = formatBool(span.Heading)
		row[colText] = span.Text
		row[5] = strconv.Itoa(utf8.RuneCountInString(span.Text))
		row[6] = Location(span.Coord)
		if span.Label != domain.SectionNone {
			idx := seen[span.Label]
			seen[span.Label]++
			row[colIndex] = strconv.Itoa(idx)
			if repl, ok := rs.Replacement(span.Label, idx); ok {
				row[colReplacement] = repl
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Location renders a coordinate for humans.
func Location(c domain.Coordinate) string {
	switch {
	case c.Run != nil:
		return fmt.Sprintf("paragraph %d, run %d", c.Run.Paragraph, c.Run.Run)
	case c.Geometry != nil:
		g := c.Geometry
		return fmt.Sprintf("page %d at (%.1f, %.1f), %s %.1fpt",
			g.Page+1, g.Baseline.X, g.Baseline.Y, g.FontName, g.FontSize)
	}
	return ""
}

// ParseRewrites reads a filled-in span report back into a RewriteSet.
// The first row must be the header. Rows outside the target sections are
// skipped. A blank replacement keeps the span's original text when a later
// span of the same section is rewritten; trailing blanks are dropped.
func ParseRewrites(rows [][]string) (domain.RewriteSet, error) {
	if len(rows) == 0 {
		return domain.RewriteSet{}, nil
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(BOM))
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"Section", "Index", "Text", "Replacement"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("span report is missing the %q column", name)
		}
	}

	type entry struct {
		text, replacement string
		set               bool
	}
	lists := map[domain.SectionLabel][]entry{}
	for n, row := range rows[1:] {
		label, err := domain.ParseSectionLabel(cellVal(row, idx["Section"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		if label == domain.SectionNone {
			continue
		}
		pos, err := strconv.Atoi(strings.TrimSpace(cellVal(row, idx["Index"])))
		if err != nil || pos < 0 {
			return nil, fmt.Errorf("row %d: invalid index %q", n+2, cellVal(row, idx["Index"]))
		}
		list := lists[label]
		for len(list) <= pos {
			list = append(list, entry{})
		}
		repl := cellVal(row, idx["Replacement"])
		list[pos] = entry{
			text:        cellVal(row, idx["Text"]),
			replacement: repl,
			set:         strings.TrimSpace(repl) != "",
		}
		lists[label] = list
	}

	rs := domain.RewriteSet{}
	for label, list := range lists {
		last := -1
		for i, e := range list {
			if e.set {
				last = i
			}
		}
		if last < 0 {
			continue
		}
		out := make([]string, last+1)
		for i := 0; i <= last; i++ {
			if list[i].set {
				out[i] = list[i].replacement
			} else {
				out[i] = list[i].text
			}
		}
		rs[label] = out
	}
	return rs, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "resume"
	}
	return s
}

// AttachmentName sanitizes a download name, keeping its extension.
func AttachmentName(name string) string {
	ext := filepath.Ext(name)
	stem := SanitizeFilename(strings.TrimSuffix(name, ext))
	ext = nonAlphanumeric.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// BuildFilename returns {sanitized_name}_sections_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_sections_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
