package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

var errNoBody = errors.New("document has no body")

// textNode is one w:t element with the byte ranges needed to rewrite it in
// place.
type textNode struct {
	tagStart     int
	tagEnd       int
	contentStart int
	contentEnd   int
	text         string
	selfClosing  bool
	preserve     bool
	// spaceStart and spaceEnd bound the value of an existing xml:space
	// attribute; both are -1 when the tag has none.
	spaceStart int
	spaceEnd   int
}

func (t textNode) writable() bool { return !t.selfClosing && t.text != "" }

type run struct {
	bold  bool
	texts []textNode
}

func (r run) text() string {
	var sb strings.Builder
	for _, t := range r.texts {
		sb.WriteString(t.text)
	}
	return sb.String()
}

// paragraph is a body-level w:p. Runs are every w:r in document order,
// including those wrapped in hyperlinks or field containers. Text boxes are
// skipped.
type paragraph struct {
	styleID string
	runs    []run
}

// bodyScanner walks the main part with RawToken so byte offsets map
// directly onto the source.
type bodyScanner struct {
	src    []byte
	prefix string
	stack  []xml.Name

	paras     []paragraph
	para      *paragraph
	run       *run
	text      *textNode
	runProps  bool
	txbxDepth int
	sawBody   bool
}

func scanBody(src []byte) ([]paragraph, error) {
	s := &bodyScanner{src: src, prefix: "w"}
	d := xml.NewDecoder(bytes.NewReader(src))
	for {
		start := int(d.InputOffset())
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scanning document body: %w", err)
		}
		end := int(d.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			s.start(t, start, end)
		case xml.EndElement:
			if len(s.stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %s at offset %d", t.Name.Local, start)
			}
			s.end(t, start)
			s.stack = s.stack[:len(s.stack)-1]
		case xml.CharData:
			if s.text != nil && s.txbxDepth == 0 {
				s.text.text += string(t)
			}
		}
	}
	if len(s.stack) != 0 {
		return nil, fmt.Errorf("unexpected end of document inside %s", s.stack[len(s.stack)-1].Local)
	}
	if !s.sawBody {
		return nil, errNoBody
	}
	return s.paras, nil
}

func (s *bodyScanner) is(n xml.Name, local string) bool {
	return n.Space == s.prefix && n.Local == local
}

func (s *bodyScanner) start(t xml.StartElement, start, end int) {
	if len(s.stack) == 0 {
		s.prefix = namespacePrefix(t, s.prefix)
	}
	s.stack = append(s.stack, t.Name)
	depth := len(s.stack)

	if s.is(t.Name, "txbxContent") {
		s.txbxDepth++
		return
	}
	if s.txbxDepth > 0 {
		return
	}

	switch {
	case s.is(t.Name, "body") && depth == 2:
		s.sawBody = true
	case s.is(t.Name, "p") && depth == 3 && s.sawBody && s.is(s.stack[1], "body"):
		s.para = &paragraph{}
	case s.para == nil:
	case s.is(t.Name, "pStyle") && depth == 5 && s.is(s.stack[3], "pPr"):
		s.para.styleID = attrValue(t, "val")
	case s.is(t.Name, "r"):
		s.run = &run{}
	case s.run == nil:
	case s.is(t.Name, "rPr"):
		s.runProps = true
	case s.is(t.Name, "b") && s.runProps:
		s.run.bold = onOff(attrValue(t, "val"))
	case s.is(t.Name, "t"):
		s.text = &textNode{
			tagStart:    start,
			tagEnd:      end,
			selfClosing: end-start >= 2 && s.src[end-2] == '/',
			preserve:    preservesSpace(t),
		}
		s.text.spaceStart, s.text.spaceEnd = spaceValue(s.src, start, end)
	}
}

func (s *bodyScanner) end(t xml.EndElement, start int) {
	if s.is(t.Name, "txbxContent") {
		s.txbxDepth--
		return
	}
	if s.txbxDepth > 0 || s.para == nil {
		return
	}

	switch {
	case s.is(t.Name, "t") && s.text != nil:
		s.text.contentStart = s.text.tagEnd
		s.text.contentEnd = start
		if s.text.selfClosing {
			s.text.contentEnd = s.text.tagEnd
		}
		s.run.texts = append(s.run.texts, *s.text)
		s.text = nil
	case s.is(t.Name, "rPr") && s.run != nil:
		s.runProps = false
	case s.is(t.Name, "r") && s.run != nil:
		s.para.runs = append(s.para.runs, *s.run)
		s.run = nil
		s.runProps = false
	case s.is(t.Name, "p") && len(s.stack) == 3:
		s.paras = append(s.paras, *s.para)
		s.para = nil
	}
}

// namespacePrefix returns the prefix the root element binds to the
// WordprocessingML namespace.
func namespacePrefix(root xml.StartElement, fallback string) string {
	for _, a := range root.Attr {
		if a.Value != wordNamespace {
			continue
		}
		if a.Name.Space == "xmlns" {
			return a.Name.Local
		}
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			return ""
		}
	}
	return fallback
}

func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func preservesSpace(t xml.StartElement) bool {
	for _, a := range t.Attr {
		if a.Name.Space == "xml" && a.Name.Local == "space" {
			return a.Value == "preserve"
		}
	}
	return false
}

var spaceAttrRe = regexp.MustCompile(`\bxml:space\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// spaceValue returns the absolute byte range of the xml:space value inside
// the start tag src[start:end], or -1, -1.
func spaceValue(src []byte, start, end int) (int, int) {
	m := spaceAttrRe.FindSubmatchIndex(src[start:end])
	switch {
	case m == nil:
		return -1, -1
	case m[2] >= 0:
		return start + m[2], start + m[3]
	default:
		return start + m[4], start + m[5]
	}
}

// onOff reads an ST_OnOff value; an absent value means on.
func onOff(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "off":
		return false
	}
	return true
}
