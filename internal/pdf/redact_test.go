package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumetailor/internal/domain"
)

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		72:        "72",
		1.23456:   "1.235",
		-0.0001:   "0",
		-7000:     "-7000",
		0.5:       "0.5",
		612.00004: "612",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatNumber(in), "formatNumber(%v)", in)
	}
}

func TestBlankShow(t *testing.T) {
	s := showing{advance: 10, fontSize: 10, hscale: 1}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "Tj", src: "(Hi) Tj", want: "[-1000] TJ"},
		{name: "TJ", src: "[(H) -20 (i)] TJ", want: "[-1000] TJ"},
		{name: "quote", src: "(Hi) '", want: "T* [-1000] TJ"},
		{name: "double quote", src: "1.5 2 (Hi) \"", want: "1.5 Tw 2 Tc T* [-1000] TJ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := parseContent([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, ops, 1)
			assert.Equal(t, tt.want, blankShow(ops[0], s))
		})
	}
}

func TestBlankShow_HorizontalScale(t *testing.T) {
	ops, err := parseContent([]byte("(Hi) Tj"))
	require.NoError(t, err)

	got := blankShow(ops[0], showing{advance: 5, fontSize: 10, hscale: 0.5})
	assert.Equal(t, "[-1000] TJ", got)
}

func tracedFrom(t *testing.T, src string) tracedPage {
	t.Helper()
	p := tracedPage{content: []byte(src), fonts: map[string]*font{"F1": flatFont(false)}}
	require.NoError(t, p.trace())
	return p
}

func TestRedactContent(t *testing.T) {
	page := tracedFrom(t, "BT /F1 10 Tf 72 700 Td (Keep) Tj ET\nBT /F1 10 Tf 72 680 Td (Drop) Tj (Also) Tj ET\n")
	require.Len(t, page.lines, 2)
	target := page.lines[1].bbox

	out := string(redactContent(page, []domain.Rect{target}))

	assert.True(t, strings.HasPrefix(out, "q\n"))
	assert.Contains(t, out, "(Keep) Tj")
	assert.NotContains(t, out, "(Drop)")
	assert.NotContains(t, out, "(Also)")
	assert.Equal(t, 2, strings.Count(out, "[-2000] TJ"))
	assert.Contains(t, out, "\nQ\nq 1 1 1 rg 72 678 40 10 re f Q\n")

	again := tracedFrom(t, out)
	require.Len(t, again.lines, 1)
	assert.Equal(t, "Keep", again.lines[0].text)

	// Blanked showings keep their advance.
	var blank []showing
	for _, s := range again.showings {
		if s.text == "" {
			blank = append(blank, s)
		}
	}
	require.Len(t, blank, 2)
	assert.InDelta(t, 92, blank[1].origin.X, 1e-9)
}

func TestRedactContent_NoRectsWrapsOnly(t *testing.T) {
	src := "BT /F1 10 Tf 72 700 Td (Keep) Tj ET"
	out := redactContent(tracedFrom(t, src), nil)
	assert.Equal(t, "q\n"+src+"\nQ\n", string(out))
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain text", want: "plain text"},
		{in: `a(b)\c`, want: `a\(b\)\\c`},
		{in: "café", want: `caf\351`},
		{in: "€5", want: `\2005`},
		{in: "漢", want: "?"},
		{in: "tab\there", want: `tab\011here`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeWinAnsi(tt.in))
		})
	}
}

func TestMapFont(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "ABCDEF+Calibri", want: Helvetica},
		{name: "Arial-BoldMT", want: HelveticaBold},
		{name: "Arial-ItalicMT", want: HelveticaOblique},
		{name: "OpenSans-SemiBoldItalic", want: HelveticaBoldOblique},
		{name: "TimesNewRomanPSMT", want: TimesRoman},
		{name: "Georgia-Bold", want: TimesBold},
		{name: "GaramondPremrPro-It Italic", want: TimesItalic},
		{name: "Cambria-BoldItalic", want: TimesBoldItalic},
		{name: "SourceSansPro-Regular", want: Helvetica},
		{name: "DejaVuSerif-Black", want: TimesBold},
		{name: "", want: Helvetica},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFont(tt.name))
		})
	}
}
