package docx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumetailor/internal/domain"
)

func runTarget(coord *domain.RunCoord) domain.Target {
	return domain.Target{
		Index:       1,
		Span:        domain.Span{Label: domain.SectionExperience, Coord: domain.Coordinate{Run: coord}},
		Replacement: "Led team of six",
	}
}

func testParagraphs() []paragraph {
	return []paragraph{{
		runs: []run{
			{texts: []textNode{{tagStart: 0, tagEnd: 5, contentStart: 5, contentEnd: 9, text: "Led ", spaceStart: -1, spaceEnd: -1}}},
			{texts: []textNode{{tagStart: 15, tagEnd: 18, contentStart: 18, contentEnd: 18, selfClosing: true, spaceStart: -1, spaceEnd: -1}}},
			{texts: []textNode{{tagStart: 20, tagEnd: 25, contentStart: 25, contentEnd: 34, text: "team of 5", preserve: true, spaceStart: -1, spaceEnd: -1}}},
		},
	}}
}

func TestRewriteSpan_StructuralMismatch(t *testing.T) {
	tests := []struct {
		name  string
		coord *domain.RunCoord
	}{
		{name: "no run coordinate", coord: nil},
		{name: "paragraph past end", coord: &domain.RunCoord{Paragraph: 1}},
		{name: "negative paragraph", coord: &domain.RunCoord{Paragraph: -1}},
		{name: "run past end", coord: &domain.RunCoord{Paragraph: 0, Run: 3}},
		{name: "run without text", coord: &domain.RunCoord{Paragraph: 0, Run: 1}},
		{name: "continuation past end", coord: &domain.RunCoord{Paragraph: 0, Run: 0, Continuation: []int{2, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits, err := rewriteSpan(testParagraphs(), runTarget(tt.coord), "Led team of six")

			require.Error(t, err)
			assert.Nil(t, edits)
			assert.True(t, errors.Is(err, domain.ErrStructuralMismatch))
			var sme *domain.StructuralMismatchError
			require.True(t, errors.As(err, &sme))
			assert.Equal(t, domain.SectionExperience, sme.Section)
			assert.Equal(t, 1, sme.Index)
		})
	}
}

func TestRewriteSpan_Edits(t *testing.T) {
	edits, err := rewriteSpan(testParagraphs(), runTarget(&domain.RunCoord{Paragraph: 0, Run: 0, Continuation: []int{2}}), "Led team of six")

	require.NoError(t, err)
	require.Len(t, edits, 3)
	assert.Equal(t, edit{start: 4, end: 4, repl: []byte(` xml:space="preserve"`)}, edits[0])
	assert.Equal(t, edit{start: 5, end: 9, repl: []byte("Led team of six")}, edits[1])
	assert.Equal(t, 25, edits[2].start)
	assert.Equal(t, 34, edits[2].end)
	assert.Empty(t, edits[2].repl)
}

func TestSpaceValue(t *testing.T) {
	src := []byte(`<w:r><w:t xml:space="default">x</w:t>`)
	start, end := spaceValue(src, 5, 30)
	assert.Equal(t, "default", string(src[start:end]))

	start, end = spaceValue([]byte(`<w:t>`), 0, 5)
	assert.Equal(t, -1, start)
	assert.Equal(t, -1, end)
}
