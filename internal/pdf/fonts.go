package pdf

import (
	"strconv"
	"strings"

	pdffont "github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

const (
	defaultGlyphWidth = 500.0
	defaultAscent     = 750.0
	defaultDescent    = -250.0

	flagItalic    = 1 << 6
	flagForceBold = 1 << 18
)

// font holds what the tracer needs from a font dictionary: code
// splitting, glyph widths and a best-effort Unicode mapping.
type font struct {
	baseFont  string
	composite bool
	core      bool
	bold      bool
	italic    bool

	firstChar    int
	widths       []float64
	cidWidths    map[int]float64
	defaultWidth float64
	scale        float64

	toUnicode   *toUnicodeMap
	differences map[int]rune
	encoding    *charmap.Charmap

	ascent  float64
	descent float64
}

// loadFont builds a font from a font dictionary. A nil or broken
// dictionary yields a Helvetica-like fallback.
func loadFont(r resolver, d types.Dict) *font {
	f := &font{
		baseFont:     "Helvetica",
		defaultWidth: defaultGlyphWidth,
		scale:        0.001,
		ascent:       defaultAscent,
		descent:      defaultDescent,
	}
	if d == nil {
		f.core = true
		return f
	}

	if base := nameEntry(r, d, "BaseFont"); base != "" {
		f.baseFont = stripSubset(base)
	}
	subtype := nameEntry(r, d, "Subtype")
	f.core = pdffont.IsCoreFont(f.baseFont)

	desc := dictEntry(r, d, "FontDescriptor")
	switch subtype {
	case "Type0":
		f.composite = true
		f.defaultWidth = 1000
		f.cidWidths = make(map[int]float64)
		if kids := arrayEntry(r, d, "DescendantFonts"); len(kids) > 0 {
			cid := dictOf(r, kids[0])
			if dw, ok := numberEntry(r, cid, "DW"); ok {
				f.defaultWidth = dw
			}
			f.readCIDWidths(r, arrayEntry(r, cid, "W"))
			desc = dictEntry(r, cid, "FontDescriptor")
		}
	default:
		if fc, ok := numberEntry(r, d, "FirstChar"); ok {
			f.firstChar = int(fc)
		}
		for _, w := range arrayEntry(r, d, "Widths") {
			v, _ := toNumber(deref(r, w))
			f.widths = append(f.widths, v)
		}
		f.readEncoding(r, entry(r, d, "Encoding"))
		if subtype == "Type3" {
			if fm := arrayEntry(r, d, "FontMatrix"); len(fm) > 0 {
				if a, ok := toNumber(deref(r, fm[0])); ok && a != 0 {
					f.scale = a
				}
			}
		}
	}

	if raw, ok := streamBytes(r, entry(r, d, "ToUnicode")); ok {
		if m, err := parseToUnicode(raw); err == nil {
			f.toUnicode = m
		}
	}

	f.readDescriptor(r, desc)
	lower := strings.ToLower(f.baseFont)
	for _, marker := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(lower, marker) {
			f.bold = true
		}
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		f.italic = true
	}
	return f
}

func (f *font) readDescriptor(r resolver, desc types.Dict) {
	if desc == nil {
		return
	}
	if v, ok := numberEntry(r, desc, "Ascent"); ok && v > 0 {
		f.ascent = v
	}
	if v, ok := numberEntry(r, desc, "Descent"); ok && v < 0 {
		f.descent = v
	}
	if v, ok := numberEntry(r, desc, "MissingWidth"); ok && v > 0 && !f.composite {
		f.defaultWidth = v
	}
	if v, ok := numberEntry(r, desc, "FontWeight"); ok && v >= 600 {
		f.bold = true
	}
	if flags, ok := numberEntry(r, desc, "Flags"); ok {
		if int(flags)&flagForceBold != 0 {
			f.bold = true
		}
		if int(flags)&flagItalic != 0 {
			f.italic = true
		}
	}
}

// readCIDWidths parses a W array: "c [w1 w2 ...]" and "cFirst cLast w".
func (f *font) readCIDWidths(r resolver, w types.Array) {
	for i := 0; i < len(w); {
		first, ok := toNumber(deref(r, w[i]))
		if !ok || i+1 >= len(w) {
			return
		}
		if list, ok := deref(r, w[i+1]).(types.Array); ok {
			for j, v := range list {
				n, _ := toNumber(deref(r, v))
				f.cidWidths[int(first)+j] = n
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			return
		}
		last, _ := toNumber(deref(r, w[i+1]))
		width, _ := toNumber(deref(r, w[i+2]))
		for c := int(first); c <= int(last) && c-int(first) <= 0xFFFF; c++ {
			f.cidWidths[c] = width
		}
		i += 3
	}
}

func (f *font) readEncoding(r resolver, enc types.Object) {
	switch v := enc.(type) {
	case types.Name:
		f.encoding = namedEncoding(string(v))
	case types.Dict:
		f.encoding = namedEncoding(nameEntry(r, v, "BaseEncoding"))
		f.readDifferences(r, arrayEntry(r, v, "Differences"))
	}
}

func (f *font) readDifferences(r resolver, diffs types.Array) {
	if len(diffs) == 0 {
		return
	}
	f.differences = make(map[int]rune)
	code := 0
	for _, o := range diffs {
		switch v := deref(r, o).(type) {
		case types.Integer:
			code = int(v)
		case types.Float:
			code = int(v)
		case types.Name:
			if rn, ok := glyphRune(string(v)); ok {
				f.differences[code] = rn
			}
			code++
		}
	}
}

func namedEncoding(name string) *charmap.Charmap {
	switch name {
	case "WinAnsiEncoding":
		return charmap.Windows1252
	case "MacRomanEncoding":
		return charmap.Macintosh
	}
	return nil
}

// codes splits a shown string into character codes.
func (f *font) codes(s []byte) []int {
	n := 1
	if f.composite {
		n = 2
	}
	if f.toUnicode != nil && f.toUnicode.codeBytes > 1 {
		n = f.toUnicode.codeBytes
	}
	out := make([]int, 0, len(s)/n+1)
	for i := 0; i < len(s); i += n {
		end := min(i+n, len(s))
		out = append(out, codeOf(s[i:end]))
	}
	return out
}

// decode maps a character code to text.
func (f *font) decode(code int) string {
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.chars[code]; ok {
			return s
		}
	}
	if r, ok := f.differences[code]; ok {
		return string(r)
	}
	if f.composite {
		if code < 0x20 {
			return ""
		}
		return string(rune(code))
	}
	if code > 0xFF {
		return ""
	}
	enc := f.encoding
	if enc == nil {
		enc = charmap.Windows1252
	}
	r := enc.DecodeByte(byte(code))
	if r < 0x20 {
		return ""
	}
	return string(r)
}

// width returns the advance of code in glyph units.
func (f *font) width(code int) float64 {
	if f.composite {
		if w, ok := f.cidWidths[code]; ok {
			return w
		}
		return f.defaultWidth
	}
	if i := code - f.firstChar; len(f.widths) > 0 && i >= 0 && i < len(f.widths) {
		return f.widths[i]
	}
	if f.core && len(f.widths) == 0 {
		if s := f.decode(code); len(s) == 1 && s[0] < 0x80 {
			if w := pdffont.TextWidth(s, f.baseFont, 1000); w > 0 {
				return w
			}
		}
	}
	return f.defaultWidth
}

// stripSubset removes a "ABCDEF+" subset tag.
func stripSubset(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#', "dollar": '$',
	"percent": '%', "ampersand": '&', "quotesingle": '\'', "quoteright": '’',
	"quoteleft": '‘', "parenleft": '(', "parenright": ')', "asterisk": '*',
	"plus": '+', "comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4', "five": '5',
	"six": '6', "seven": '7', "eight": '8', "nine": '9', "colon": ':',
	"semicolon": ';', "less": '<', "equal": '=', "greater": '>', "question": '?',
	"at": '@', "bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"underscore": '_', "bar": '|', "endash": '–', "emdash": '—',
	"bullet": '•', "quotedblleft": '“', "quotedblright": '”',
	"ellipsis": '…', "fi": 'ﬁ', "fl": 'ﬂ', "periodcentered": '·',
}

// glyphRune maps a glyph name to a rune: single letters, uniXXXX and
// uXXXX names, and common punctuation.
func glyphRune(name string) (rune, bool) {
	if len(name) == 1 {
		return rune(name[0]), true
	}
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if hex, ok := strings.CutPrefix(name, "uni"); ok && len(hex) >= 4 {
		if v, err := strconv.ParseUint(hex[:4], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if hex, ok := strings.CutPrefix(name, "u"); ok && len(hex) >= 4 && len(hex) <= 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return rune(v), true
		}
	}
	return 0, false
}
