// Command sections extracts the Summary and Experience sections of a DOCX or
// PDF resume and optionally writes a rewrite set back into it.
//
// Usage:
//
//	go run ./cmd/sections -in resume.pdf
//	go run ./cmd/sections -in resume.docx -report spans.xlsx
//	go run ./cmd/sections -in resume.pdf -rewrites rewrites.json -out tailored.pdf
//
// -rewrites accepts a JSON object ({"summary": [...], "experience": [...]})
// or a filled-in span report (.csv or .xlsx).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"resumetailor/internal/classifier"
	"resumetailor/internal/config"
	"resumetailor/internal/docx"
	"resumetailor/internal/domain"
	"resumetailor/internal/export"
	"resumetailor/internal/lengthfit"
	"resumetailor/internal/pdf"
	"resumetailor/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	in, format, rewrites, out, report string
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("sections", flag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.in, "in", "", "input resume (.docx or .pdf)")
	fs.StringVar(&opts.format, "format", "", "docx or pdf; sniffed from content when empty")
	fs.StringVar(&opts.rewrites, "rewrites", "", "rewrite set (.json) or filled-in span report (.csv, .xlsx)")
	fs.StringVar(&opts.out, "out", "", "output path for the rewritten document")
	fs.StringVar(&opts.report, "report", "", "write the span report to this path (.csv or .xlsx)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.in == "" {
		return nil, errors.New("-in is required")
	}
	if opts.rewrites != "" && opts.out == "" {
		return nil, errors.New("-out is required with -rewrites")
	}
	return opts, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	data, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	input := service.DocumentInput{Data: data, FileName: opts.in}
	if opts.format != "" {
		f, ok := domain.ExtensionFormats[strings.ToLower(opts.format)]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, opts.format)
		}
		input.Format = f
	}

	cls := classifier.New(classifier.Config{
		MaxHeadingChars: cfg.Engine.HeadingMaxChars,
		MaxHeadingWords: cfg.Engine.HeadingMaxWords,
	})
	fit := lengthfit.New(cfg.Engine.Tolerance)
	engine := service.NewEngine(cfg.Engine.MaxFileSize(),
		docx.NewCodec(cls, fit),
		pdf.NewCodec(cls, fit, cfg.Engine.PDFWorkers),
	)
	svc := service.NewTailorService(engine, nil, nil, nil)
	ctx := context.Background()

	doc, err := svc.Sections(ctx, input)
	if err != nil {
		return fmt.Errorf("extracting sections: %w", err)
	}

	if opts.report != "" {
		if err := writeReport(opts.report, doc); err != nil {
			return err
		}
		log.Printf("Wrote span report to %s", opts.report)
	}

	if opts.rewrites == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*domain.SectionedDocument
			Counts domain.SectionCounts `json:"counts"`
		}{doc, doc.Counts()})
	}

	rs, err := readRewrites(opts.rewrites)
	if err != nil {
		return err
	}
	res, err := svc.Rewrite(ctx, service.RewriteInput{DocumentInput: input, Rewrites: rs})
	if err != nil {
		return fmt.Errorf("rewriting: %w", err)
	}
	if err := os.WriteFile(opts.out, res.Data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Rewrote %d spans (summary=%d, experience=%d) into %s\n",
		res.Applied, res.Counts.Summary, res.Counts.Experience, opts.out)
	return err
}

func writeReport(path string, doc *domain.SectionedDocument) error {
	var write func(io.Writer, *domain.SectionedDocument, domain.RewriteSet) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		write = export.WriteXLSX
	case ".csv":
		write = export.WriteCSV
	default:
		return fmt.Errorf("report must be .csv or .xlsx, got %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := write(f, doc, nil); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}

func readRewrites(path string) (domain.RewriteSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rewrites: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rs domain.RewriteSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rs, err = export.ReadXLSX(f)
	case ".csv":
		rs, err = export.ReadCSV(f)
	default:
		err = json.NewDecoder(f).Decode(&rs)
	}
	if err != nil {
		return nil, fmt.Errorf("reading rewrites from %s: %w", path, err)
	}
	return rs, nil
}
