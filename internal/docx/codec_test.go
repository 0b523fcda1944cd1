package docx_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumetailor/internal/classifier"
	"resumetailor/internal/docx"
	"resumetailor/internal/domain"
	"resumetailor/internal/lengthfit"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`
	stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style><w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style></w:styles>`
	coreXML = `<?xml version="1.0" encoding="UTF-8"?><cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"/>`
)

func wrapDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `<w:sectPr/></w:body></w:document>`
}

func boldPara(text string) string {
	return `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>` + text + `</w:t></w:r></w:p>`
}

func plainPara(text string) string {
	return `<w:p><w:r><w:rPr><w:i/><w:color w:val="1F3864"/></w:rPr><w:t>` + text + `</w:t></w:r></w:p>`
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	return buildArchive(t, map[string]string{
		"[Content_Types].xml":          contentTypesXML,
		"_rels/.rels":                  rootRelsXML,
		"word/document.xml":            wrapDocument(body),
		"word/_rels/document.xml.rels": documentRelsXML,
		"word/styles.xml":              stylesXML,
		"docProps/core.xml":            coreXML,
	})
}

func buildArchive(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	order := []string{
		"[Content_Types].xml", "_rels/.rels", "word/document.xml",
		"word/_rels/document.xml.rels", "word/styles.xml", "docProps/core.xml",
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		content, ok := parts[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(raw)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func newCodec() *docx.Codec {
	return docx.NewCodec(classifier.New(classifier.Config{}), lengthfit.New(lengthfit.DefaultTolerance))
}

func scenarioA() string {
	return boldPara("Summary") + plainPara("Built apps.") + boldPara("Experience") + plainPara("Led team of 5.")
}

func TestExtract_BoldHeadings(t *testing.T) {
	data := buildDocx(t, scenarioA())

	doc, err := newCodec().Extract(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, domain.FormatDOCX, doc.Format)
	assert.Equal(t, []string{"Built apps."}, doc.Texts(domain.SectionSummary))
	assert.Equal(t, []string{"Led team of 5."}, doc.Texts(domain.SectionExperience))
	assert.Equal(t, "Summary\nBuilt apps.\nExperience\nLed team of 5.", doc.FullText)

	exp := doc.Section(domain.SectionExperience)[0]
	require.NotNil(t, exp.Coord.Run)
	assert.Nil(t, exp.Coord.Geometry)
	assert.Equal(t, 3, exp.Coord.Run.Paragraph)
	assert.Equal(t, 0, exp.Coord.Run.Run)
}

func TestExtract_StyleHeadingResolvedThroughStylesPart(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Key Highlights</w:t></w:r></w:p>` +
		plainPara("Should stay unlabelled.") +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Work History</w:t></w:r></w:p>` +
		plainPara("Platform lead.")

	doc, err := newCodec().Extract(context.Background(), buildDocx(t, body))

	require.NoError(t, err)
	assert.True(t, doc.Spans[0].Heading)
	assert.Empty(t, doc.Section(domain.SectionSummary))
	assert.Equal(t, []string{"Platform lead."}, doc.Texts(domain.SectionExperience))
}

func TestExtract_MultiRunParagraph(t *testing.T) {
	body := boldPara("Summary") +
		`<w:p><w:r><w:t xml:space="preserve">Built </w:t></w:r>` +
		`<w:hyperlink><w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>apps</w:t></w:r></w:hyperlink>` +
		`<w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>.</w:t></w:r></w:p>`

	doc, err := newCodec().Extract(context.Background(), buildDocx(t, body))

	require.NoError(t, err)
	spans := doc.Section(domain.SectionSummary)
	require.Len(t, spans, 1)
	assert.Equal(t, "Built apps.", spans[0].Text)
	assert.Equal(t, 0, spans[0].Coord.Run.Run)
	assert.Equal(t, []int{1, 2}, spans[0].Coord.Run.Continuation)
}

func TestExtract_TablesAndTextBoxesPassThrough(t *testing.T) {
	body := boldPara("Experience") +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Summary</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>Staff engineer.</w:t></w:r>` +
		`<w:r><w:drawing><wps:txbx xmlns:wps="urn:wps"><w:txbxContent><w:p><w:r><w:t>Sidebar</w:t></w:r></w:p></w:txbxContent></wps:txbx></w:drawing></w:r></w:p>`

	doc, err := newCodec().Extract(context.Background(), buildDocx(t, body))

	require.NoError(t, err)
	assert.Equal(t, []string{"Staff engineer."}, doc.Texts(domain.SectionExperience))
	assert.NotContains(t, doc.FullText, "Sidebar")
	assert.Len(t, doc.Spans, 2)
}

func TestExtract_NoHeadings(t *testing.T) {
	data := buildDocx(t, plainPara("Jane Doe")+plainPara("Engineer"))

	doc, err := newCodec().Extract(context.Background(), data)

	require.NoError(t, err)
	assert.True(t, doc.Empty())
	assert.Equal(t, "Jane Doe\nEngineer", doc.FullText)
}

func TestExtract_EmptyBody(t *testing.T) {
	doc, err := newCodec().Extract(context.Background(), buildDocx(t, ""))

	require.NoError(t, err)
	assert.Empty(t, doc.Spans)
	assert.Equal(t, "", doc.FullText)
}

func TestExtract_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"not a zip", func(*testing.T) []byte { return []byte("plain text, not a package") }},
		{"missing main part", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{"[Content_Types].xml": contentTypesXML, "_rels/.rels": rootRelsXML})
		}},
		{"malformed xml", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{
				"_rels/.rels":       rootRelsXML,
				"word/document.xml": `<w:document xmlns:w="x"><w:body><w:p><w:r`,
			})
		}},
		{"no body", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{
				"_rels/.rels":       rootRelsXML,
				"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`,
			})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCodec().Extract(context.Background(), tt.data(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestInject_RewritesOnlyTargetRun(t *testing.T) {
	data := buildDocx(t, scenarioA())
	rs := domain.RewriteSet{domain.SectionExperience: {"Led team of six"}}

	out, err := newCodec().Inject(context.Background(), data, rs)

	require.NoError(t, err)
	doc, err := newCodec().Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Led team of six"}, doc.Texts(domain.SectionExperience))
	assert.Equal(t, []string{"Built apps."}, doc.Texts(domain.SectionSummary))

	xmlOut := readPart(t, out, "word/document.xml")
	assert.Contains(t, xmlOut, `<w:rPr><w:i/><w:color w:val="1F3864"/></w:rPr><w:t xml:space="preserve">Led team of six</w:t>`)
	assert.Equal(t, strings.Count(wrapDocument(scenarioA()), "<w:rPr>"), strings.Count(xmlOut, "<w:rPr>"))
}

func TestInject_OtherPartsUntouched(t *testing.T) {
	data := buildDocx(t, scenarioA())
	rs := domain.RewriteSet{domain.SectionSummary: {"Made tools."}}

	out, err := newCodec().Inject(context.Background(), data, rs)

	require.NoError(t, err)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml", "docProps/core.xml"} {
		assert.Equal(t, readPart(t, data, name), readPart(t, out, name), name)
	}
}

func TestInject_MultiRunEmptiesContinuations(t *testing.T) {
	body := boldPara("Summary") +
		`<w:p><w:r><w:rPr><w:sz w:val="22"/></w:rPr><w:t xml:space="preserve">Built </w:t></w:r>` +
		`<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>apps</w:t></w:r>` +
		`<w:r><w:t>.</w:t></w:r></w:p>`
	data := buildDocx(t, body)

	out, err := newCodec().Inject(context.Background(), data, domain.RewriteSet{
		domain.SectionSummary: {"Made the app"},
	})

	require.NoError(t, err)
	xmlOut := readPart(t, out, "word/document.xml")
	assert.Contains(t, xmlOut, `<w:rPr><w:sz w:val="22"/></w:rPr><w:t xml:space="preserve">Made the app</w:t>`)
	assert.Contains(t, xmlOut, `<w:rPr><w:u w:val="single"/></w:rPr><w:t></w:t>`)
	assert.Equal(t, 4, strings.Count(xmlOut, "<w:r>"))

	doc, err := newCodec().Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Made the app"}, doc.Texts(domain.SectionSummary))
}

func TestInject_RewritesExistingSpaceAttribute(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{name: "double quoted", tag: `<w:t xml:space="default">`, want: `<w:t xml:space="preserve">Built tools.</w:t>`},
		{name: "single quoted", tag: `<w:t xml:space='default'>`, want: `<w:t xml:space='preserve'>Built tools.</w:t>`},
		{name: "absent", tag: `<w:t>`, want: `<w:t xml:space="preserve">Built tools.</w:t>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := boldPara("Summary") + `<w:p><w:r>` + tt.tag + `Built apps.</w:t></w:r></w:p>`

			out, err := newCodec().Inject(context.Background(), buildDocx(t, body), domain.RewriteSet{
				domain.SectionSummary: {"Built tools."},
			})

			require.NoError(t, err)
			xmlOut := readPart(t, out, "word/document.xml")
			assert.Contains(t, xmlOut, tt.want)
			assert.Equal(t, 1, strings.Count(xmlOut, "xml:space"))
		})
	}
}

func TestInject_EnforcesLength(t *testing.T) {
	data := buildDocx(t, scenarioA())
	rs := domain.RewriteSet{domain.SectionExperience: {"Led a team of five engineers across three time zones."}}

	out, err := newCodec().Inject(context.Background(), data, rs)

	require.NoError(t, err)
	doc, err := newCodec().Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Led a team of"}, doc.Texts(domain.SectionExperience))
}

func TestInject_DeficitAndExcess(t *testing.T) {
	body := boldPara("Summary") + plainPara("First line.") + plainPara("Second line.") +
		boldPara("Experience") + plainPara("Only role.")
	data := buildDocx(t, body)
	rs := domain.RewriteSet{
		domain.SectionSummary:    {"Fresh line."},
		domain.SectionExperience: {"Main role.", "extra one", "extra two"},
	}

	out, err := newCodec().Inject(context.Background(), data, rs)

	require.NoError(t, err)
	doc, err := newCodec().Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh line.", "Second line."}, doc.Texts(domain.SectionSummary))
	assert.Equal(t, []string{"Main role."}, doc.Texts(domain.SectionExperience))
}

func TestInject_EscapesMarkup(t *testing.T) {
	data := buildDocx(t, boldPara("Summary")+plainPara("Research and dev lead"))
	rs := domain.RewriteSet{domain.SectionSummary: {"R&D <lead> for APIs"}}

	out, err := newCodec().Inject(context.Background(), data, rs)

	require.NoError(t, err)
	assert.Contains(t, readPart(t, out, "word/document.xml"), "R&amp;D &lt;lead&gt; for APIs")
	doc, err := newCodec().Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"R&D <lead> for APIs"}, doc.Texts(domain.SectionSummary))
}

func TestInject_EmptyRewriteSetKeepsText(t *testing.T) {
	data := buildDocx(t, scenarioA())

	out, err := newCodec().Inject(context.Background(), data, domain.RewriteSet{})

	require.NoError(t, err)
	assert.Equal(t, readPart(t, data, "word/document.xml"), readPart(t, out, "word/document.xml"))
}

func TestInject_ParseError(t *testing.T) {
	_, err := newCodec().Inject(context.Background(), []byte("nope"), domain.RewriteSet{})
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestInject_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCodec().Inject(ctx, buildDocx(t, scenarioA()), domain.RewriteSet{})

	assert.ErrorIs(t, err, context.Canceled)
}
