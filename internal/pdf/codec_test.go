package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumetailor/internal/classifier"
	"resumetailor/internal/domain"
	"resumetailor/internal/lengthfit"
)

func newTestCodec() *Codec {
	return NewCodec(classifier.New(classifier.Config{}), lengthfit.New(lengthfit.DefaultTolerance), 2)
}

func TestCodec_Format(t *testing.T) {
	assert.Equal(t, domain.FormatPDF, newTestCodec().Format())
}

func TestExtract_BoldHeadings(t *testing.T) {
	data := buildPDF(t, scenarioPage())

	doc, err := newTestCodec().Extract(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatPDF, doc.Format)
	assert.Equal(t, []string{"Built apps."}, doc.Texts(domain.SectionSummary))
	assert.Equal(t, []string{"Led team of 5."}, doc.Texts(domain.SectionExperience))
	assert.Equal(t, "Summary\nBuilt apps.\nExperience\nLed team of 5.", doc.FullText)
	assert.Equal(t, doc.FullText, doc.JoinedText())
	assert.Equal(t, data, doc.Snapshot)

	require.Len(t, doc.Spans, 4)
	assert.True(t, doc.Spans[0].Heading)
	assert.True(t, doc.Spans[2].Heading)
}

func TestExtract_Geometry(t *testing.T) {
	data := buildPDF(t, scenarioPage())

	doc, err := newTestCodec().Extract(context.Background(), data)
	require.NoError(t, err)

	spans := doc.Section(domain.SectionSummary)
	require.Len(t, spans, 1)
	g := spans[0].Coord.Geometry
	require.NotNil(t, g)
	assert.Nil(t, spans[0].Coord.Run)

	assert.Equal(t, 0, g.Page)
	assert.Equal(t, "Helvetica", g.FontName)
	assert.InDelta(t, 11, g.FontSize, 1e-9)
	assert.Equal(t, 0x336699, g.Color)
	assert.InDelta(t, 72, g.Baseline.X, 1e-9)
	assert.InDelta(t, 700, g.Baseline.Y, 1e-9)

	// 11 glyphs at 500 units and 11pt.
	assert.InDelta(t, 72, g.BBox.X0, 1e-6)
	assert.InDelta(t, 132.5, g.BBox.X1, 1e-6)
	assert.InDelta(t, 700-0.207*11, g.BBox.Y0, 1e-6)
	assert.InDelta(t, 700+0.718*11, g.BBox.Y1, 1e-6)
}

func TestExtract_KernedShowingsJoinIntoOneLine(t *testing.T) {
	content := "BT /F2 12 Tf 72 700 Td (Work Experience) Tj ET\n" +
		"BT /F1 10 Tf 72 680 Td [(Led) -250 (team)] TJ ( of 5.) Tj ET\n" +
		"BT /F1 10 Tf 72 660 Td (Shipped) Tj 60 0 Td (v2) Tj ET\n"

	doc, err := newTestCodec().Extract(context.Background(), buildPDF(t, content))
	require.NoError(t, err)

	assert.Equal(t, []string{"Led team of 5.", "Shipped v2"}, doc.Texts(domain.SectionExperience))
}

func TestExtract_ReadingOrderAcrossPages(t *testing.T) {
	page1 := textLine("F2", 14, 72, 720, "Summary") +
		textLine("F1", 11, 72, 650, "Second line.") +
		textLine("F1", 11, 72, 700, "First line.")
	page2 := textLine("F2", 14, 72, 720, "Experience") +
		textLine("F1", 11, 72, 700, "Did things.")

	doc, err := newTestCodec().Extract(context.Background(), buildPDF(t, page1, page2))
	require.NoError(t, err)

	assert.Equal(t, []string{"First line.", "Second line."}, doc.Texts(domain.SectionSummary))
	exp := doc.Section(domain.SectionExperience)
	require.Len(t, exp, 1)
	assert.Equal(t, 1, exp[0].Coord.Geometry.Page)
}

func TestExtract_TwoColumnsStaySeparate(t *testing.T) {
	doc, err := newTestCodec().Extract(context.Background(), buildPDF(t, twoColumnPage()))
	require.NoError(t, err)

	assert.Equal(t, []string{"Led team of 5."}, doc.Texts(domain.SectionExperience))
	assert.Equal(t, "Experience\nLed team of 5.\nSkills\nGo, SQL, Kubernetes", doc.FullText)

	g := doc.Section(domain.SectionExperience)[0].Coord.Geometry
	assert.Less(t, g.BBox.X1, 400.0)
}

func TestExtract_HeadingBesideSidebarText(t *testing.T) {
	content := textLine("F2", 14, 72, 720, "Summary") +
		textLine("F1", 11, 400, 720, "jane@example.com") +
		textLine("F1", 11, 72, 700, "Built apps.")

	doc, err := newTestCodec().Extract(context.Background(), buildPDF(t, content))
	require.NoError(t, err)

	require.NotEmpty(t, doc.Spans)
	assert.True(t, doc.Spans[0].Heading)
	assert.Equal(t, "Summary", doc.Spans[0].Text)
	assert.Equal(t, "Built apps.", doc.Texts(domain.SectionSummary)[0])
}

func TestExtract_NoHeadings(t *testing.T) {
	content := textLine("F1", 11, 72, 700, "Just a paragraph of prose that never names a section.")

	doc, err := newTestCodec().Extract(context.Background(), buildPDF(t, content))
	require.NoError(t, err)

	assert.True(t, doc.Empty())
	assert.Len(t, doc.Spans, 1)
}

func TestExtract_EmptyPage(t *testing.T) {
	doc, err := newTestCodec().Extract(context.Background(), buildPDF(t, ""))
	require.NoError(t, err)

	assert.Empty(t, doc.Spans)
	assert.True(t, doc.Empty())
}

func TestExtract_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("hello, world")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := newTestCodec().Extract(context.Background(), tt.data)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, domain.ErrParse))
		})
	}
}

func TestInject_RewritesTargetLine(t *testing.T) {
	data := buildPDF(t, scenarioPage())
	codec := newTestCodec()

	out, err := codec.Inject(context.Background(), data, domain.RewriteSet{
		domain.SectionExperience: {"Led team of six"},
	})
	require.NoError(t, err)

	doc, err := codec.Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Built apps."}, doc.Texts(domain.SectionSummary))
	assert.Equal(t, []string{"Led team of six"}, doc.Texts(domain.SectionExperience))
	assert.NotContains(t, doc.FullText, "Led team of 5.")

	g := doc.Section(domain.SectionExperience)[0].Coord.Geometry
	assert.Equal(t, "Helvetica", g.FontName)
	assert.InDelta(t, 11, g.FontSize, 1e-9)
	assert.InDelta(t, 72, g.Baseline.X, 1e-6)
	assert.InDelta(t, 650, g.Baseline.Y, 1e-6)
	assert.Equal(t, 0x336699, g.Color)
}

func TestInject_TwoColumnsLeavesSidebar(t *testing.T) {
	codec := newTestCodec()

	out, err := codec.Inject(context.Background(), buildPDF(t, twoColumnPage()), domain.RewriteSet{
		domain.SectionExperience: {"Led team of 6."},
	})
	require.NoError(t, err)

	doc, err := codec.Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Led team of 6."}, doc.Texts(domain.SectionExperience))
	assert.Equal(t, "Experience\nLed team of 6.\nSkills\nGo, SQL, Kubernetes", doc.FullText)
}

func TestInject_EnforcesLength(t *testing.T) {
	data := buildPDF(t, scenarioPage())
	codec := newTestCodec()

	out, err := codec.Inject(context.Background(), data, domain.RewriteSet{
		domain.SectionSummary: {"Built many apps today"},
	})
	require.NoError(t, err)

	doc, err := codec.Extract(context.Background(), out)
	require.NoError(t, err)
	// "Built apps." has 11 characters; the band tops out at 12.
	assert.Equal(t, []string{"Built many"}, doc.Texts(domain.SectionSummary))
	assert.Equal(t, []string{"Led team of 5."}, doc.Texts(domain.SectionExperience))
}

func TestInject_DeficitKeepsOriginal(t *testing.T) {
	content := textLine("F2", 14, 72, 720, "Summary") +
		textLine("F1", 11, 72, 700, "First line.") +
		textLine("F1", 11, 72, 686, "Second line.")
	data := buildPDF(t, content)
	codec := newTestCodec()

	out, err := codec.Inject(context.Background(), data, domain.RewriteSet{
		domain.SectionSummary:    {"Opening one"},
		domain.SectionExperience: {"ignored, no experience section"},
	})
	require.NoError(t, err)

	doc, err := codec.Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Opening one", "Second line."}, doc.Texts(domain.SectionSummary))
}

func TestInject_OnlyTouchesTargetPage(t *testing.T) {
	page1 := textLine("F2", 14, 72, 720, "Summary") +
		textLine("F1", 11, 72, 700, "Built apps.")
	page2 := textLine("F2", 14, 72, 720, "Experience") +
		textLine("F1", 11, 72, 700, "Led team of 5.")
	codec := newTestCodec()

	out, err := codec.Inject(context.Background(), buildPDF(t, page1, page2), domain.RewriteSet{
		domain.SectionExperience: {"Ran a team of 5"},
	})
	require.NoError(t, err)

	doc, err := codec.Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Built apps."}, doc.Texts(domain.SectionSummary))
	exp := doc.Section(domain.SectionExperience)
	require.Len(t, exp, 1)
	assert.Equal(t, "Ran a team of 5", exp[0].Text)
	assert.Equal(t, 1, exp[0].Coord.Geometry.Page)
}

func TestInject_EmptyRewriteSetReturnsInput(t *testing.T) {
	data := buildPDF(t, scenarioPage())

	out, err := newTestCodec().Inject(context.Background(), data, domain.RewriteSet{})
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestInject_ParseError(t *testing.T) {
	_, err := newTestCodec().Inject(context.Background(), []byte("%PDF-garbage"), domain.RewriteSet{
		domain.SectionSummary: {"x"},
	})
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestInject_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestCodec().Inject(ctx, buildPDF(t, scenarioPage()), domain.RewriteSet{
		domain.SectionSummary: {"x"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOverlay_PageOutOfRange(t *testing.T) {
	data := buildPDF(t, scenarioPage())
	fresh := &domain.SectionedDocument{
		Format: domain.FormatPDF,
		Spans: []domain.Span{{
			Label: domain.SectionSummary,
			Text:  "Built apps.",
			Coord: domain.Coordinate{Geometry: &domain.GeometryCoord{Page: 3, FontSize: 11}},
		}},
	}

	_, err := newTestCodec().overlay(data, fresh, domain.RewriteSet{domain.SectionSummary: {"New text."}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStructuralMismatch))

	var sme *domain.StructuralMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, domain.SectionSummary, sme.Section)
	assert.Equal(t, 0, sme.Index)
}
