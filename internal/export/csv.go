package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"resumetailor/internal/domain"
)

// Writer wraps csv.Writer for exporting span reports.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteSpans writes one row per span of doc.
func (w *Writer) WriteSpans(doc *domain.SectionedDocument, rs domain.RewriteSet) error {
	for _, row := range Rows(doc, rs) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete report, BOM first.
func WriteCSV(out io.Writer, doc *domain.SectionedDocument, rs domain.RewriteSet) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteSpans(doc, rs); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ReadCSV parses a filled-in CSV span report.
func ReadCSV(r io.Reader) (domain.RewriteSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV report: %w", err)
	}
	return ParseRewrites(rows)
}
