package pdf

import "strings"

// Standard Type1 faces used for overlay text.
const (
	Helvetica            = "Helvetica"
	HelveticaBold        = "Helvetica-Bold"
	HelveticaOblique     = "Helvetica-Oblique"
	HelveticaBoldOblique = "Helvetica-BoldOblique"
	TimesRoman           = "Times-Roman"
	TimesBold            = "Times-Bold"
	TimesItalic          = "Times-Italic"
	TimesBoldItalic      = "Times-BoldItalic"
)

var serifMarkers = []string{
	"times", "serif", "georgia", "garamond", "cambria", "roman",
	"minion", "palatino", "baskerville", "bookman", "charter", "caslon",
}

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demi"}

// MapFont picks the standard face closest to an embedded font name. The
// result is always one of the eight Helvetica/Times faces; unknown names
// map to Helvetica.
func MapFont(name string) string {
	lower := strings.ToLower(stripSubset(name))

	serif := false
	for _, m := range serifMarkers {
		if strings.Contains(lower, m) {
			serif = true
			break
		}
	}
	if strings.Contains(lower, "sans") {
		serif = false
	}

	bold := false
	for _, m := range boldMarkers {
		if strings.Contains(lower, m) {
			bold = true
			break
		}
	}
	italic := strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")

	switch {
	case serif && bold && italic:
		return TimesBoldItalic
	case serif && bold:
		return TimesBold
	case serif && italic:
		return TimesItalic
	case serif:
		return TimesRoman
	case bold && italic:
		return HelveticaBoldOblique
	case bold:
		return HelveticaBold
	case italic:
		return HelveticaOblique
	}
	return Helvetica
}
