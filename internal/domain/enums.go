package domain

import (
	"fmt"
	"strings"
)

// Format identifies the document family of a byte snapshot.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// FormatContentTypes maps Format to its MIME content type.
var FormatContentTypes = map[Format]string{
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatPDF:  "application/pdf",
}

// ContentTypeFormats maps MIME content types back to Format.
var ContentTypeFormats = map[string]Format{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"application/pdf": FormatPDF,
}

// ExtensionFormats maps file extensions (without dot) to Format.
var ExtensionFormats = map[string]Format{
	"docx": FormatDOCX,
	"pdf":  FormatPDF,
}

// ContentType returns the MIME type for f, or application/octet-stream.
func (f Format) ContentType() string {
	if ct, ok := FormatContentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SectionLabel is the closed set of semantic regions a span can belong to.
// The zero value is SectionNone.
type SectionLabel uint8

const (
	SectionNone SectionLabel = iota
	SectionSummary
	SectionExperience
)

// TargetSections lists the labels that can receive rewrites, in the order
// they are processed during injection.
var TargetSections = []SectionLabel{SectionSummary, SectionExperience}

func (l SectionLabel) String() string {
	switch l {
	case SectionSummary:
		return "summary"
	case SectionExperience:
		return "experience"
	default:
		return "none"
	}
}

// ParseSectionLabel is the inverse of String. Unknown names are rejected
// rather than mapped to a fresh category.
func ParseSectionLabel(s string) (SectionLabel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "summary":
		return SectionSummary, nil
	case "experience":
		return SectionExperience, nil
	case "none", "":
		return SectionNone, nil
	}
	return SectionNone, fmt.Errorf("unknown section label %q", s)
}

func (l SectionLabel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *SectionLabel) UnmarshalText(b []byte) error {
	parsed, err := ParseSectionLabel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
