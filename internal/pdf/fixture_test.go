package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// testPDF assembles a small uncompressed PDF with correct xref offsets.
// Every page inherits two fonts from the page tree: F1 (Helvetica) and F2
// (Helvetica-Bold), both with a flat 500-unit width table.
type testPDF struct {
	objs []string
}

func (b *testPDF) add(body string) int {
	b.objs = append(b.objs, body)
	return len(b.objs)
}

func (b *testPDF) set(num int, body string) {
	b.objs[num-1] = body
}

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	b := &testPDF{}
	catalog := b.add("")
	tree := b.add("")
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))

	regularDesc := b.add("<< /Type /FontDescriptor /FontName /ABCDEF+Helvetica /Flags 32 /Ascent 718 /Descent -207 /CapHeight 718 /ItalicAngle 0 /StemV 88 /FontBBox [-166 -225 1000 931] >>")
	boldDesc := b.add("<< /Type /FontDescriptor /FontName /GHIJKL+Helvetica-Bold /Flags 262176 /Ascent 718 /Descent -207 /CapHeight 718 /ItalicAngle 0 /StemV 140 /FontBBox [-170 -228 1003 962] >>")
	regular := b.add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /ABCDEF+Helvetica /FirstChar 32 /LastChar 126 /Widths [%s] /Encoding /WinAnsiEncoding /FontDescriptor %d 0 R >>", widths, regularDesc))
	bold := b.add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /GHIJKL+Helvetica-Bold /FirstChar 32 /LastChar 126 /Widths [%s] /Encoding /WinAnsiEncoding /FontDescriptor %d 0 R >>", widths, boldDesc))

	kids := make([]string, 0, len(pages))
	for _, content := range pages {
		stream := b.add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		page := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Contents %d 0 R >>", tree, stream))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	b.set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> >> >>",
		strings.Join(kids, " "), len(pages), regular, bold))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, catalog, xref)
	return buf.Bytes()
}

// textLine draws s at (x, y) in font key at size.
func textLine(key string, size, x, y float64, s string) string {
	return fmt.Sprintf("BT /%s %s Tf %s %s Td (%s) Tj ET\n", key, formatNumber(size), formatNumber(x), formatNumber(y), s)
}

func scenarioPage() string {
	return "0.2 0.4 0.6 rg\n" +
		textLine("F2", 14, 72, 720, "Summary") +
		textLine("F1", 11, 72, 700, "Built apps.") +
		textLine("F2", 14, 72, 670, "Experience") +
		textLine("F1", 11, 72, 650, "Led team of 5.")
}

// twoColumnPage has a main column at x=72 and a sidebar at x=400 that
// shares baselines with it.
func twoColumnPage() string {
	return textLine("F2", 14, 72, 720, "Experience") +
		textLine("F2", 14, 400, 720, "Skills") +
		textLine("F1", 11, 72, 700, "Led team of 5.") +
		textLine("F1", 11, 400, 700, "Go, SQL, Kubernetes")
}
