package pdf

import (
	"golang.org/x/text/encoding/unicode"
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// toUnicodeMap is a parsed ToUnicode CMap.
type toUnicodeMap struct {
	codeBytes int
	chars     map[int]string
}

// parseToUnicode reads the bfchar and bfrange sections of a ToUnicode
// CMap. The CMap syntax is close enough to a content stream for the
// content lexer to tokenize it.
func parseToUnicode(data []byte) (*toUnicodeMap, error) {
	ops, err := parseContent(data)
	if err != nil {
		return nil, err
	}
	m := &toUnicodeMap{codeBytes: 1, chars: make(map[int]string)}
	for _, op := range ops {
		switch op.op {
		case "endcodespacerange":
			if len(op.args) > 0 && op.args[0].kind == operandString && len(op.args[0].str) > 0 {
				m.codeBytes = len(op.args[0].str)
			}
		case "endbfchar":
			for i := 0; i+1 < len(op.args); i += 2 {
				src, dst := op.args[i], op.args[i+1]
				if src.kind != operandString || dst.kind != operandString {
					continue
				}
				m.chars[codeOf(src.str)] = decodeUTF16(dst.str)
			}
		case "endbfrange":
			for i := 0; i+2 < len(op.args); i += 3 {
				m.addRange(op.args[i], op.args[i+1], op.args[i+2])
			}
		}
	}
	return m, nil
}

func (m *toUnicodeMap) addRange(lo, hi, dst operand) {
	if lo.kind != operandString || hi.kind != operandString {
		return
	}
	first, last := codeOf(lo.str), codeOf(hi.str)
	if last < first || last-first > 0xFFFF {
		return
	}
	switch dst.kind {
	case operandArray:
		for i, d := range dst.arr {
			if first+i > last {
				break
			}
			if d.kind == operandString {
				m.chars[first+i] = decodeUTF16(d.str)
			}
		}
	case operandString:
		base := append([]byte(nil), dst.str...)
		for code := first; code <= last; code++ {
			m.chars[code] = decodeUTF16(base)
			incrementLast(base)
		}
	}
}

func codeOf(b []byte) int {
	code := 0
	for _, c := range b {
		code = code<<8 | int(c)
	}
	return code
}

func incrementLast(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}

func decodeUTF16(b []byte) string {
	if len(b)%2 == 1 {
		return string(rune(b[0]))
	}
	out, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}
