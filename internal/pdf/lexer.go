package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errUnterminatedString = errors.New("unterminated string")
	errUnterminatedArray  = errors.New("unterminated array")
	errUnterminatedDict   = errors.New("unterminated dictionary")
	errUnterminatedImage  = errors.New("unterminated inline image")
)

type operandKind uint8

const (
	operandNumber operandKind = iota
	operandName
	operandString
	operandArray
	operandDict
	operandKeyword
)

type operand struct {
	kind operandKind
	num  float64
	name string
	str  []byte
	arr  []operand
}

// operation is one content-stream operator with its operands. start and
// end delimit the operands and operator in the source stream.
type operation struct {
	op    string
	args  []operand
	start int
	end   int
}

func (o operation) number(i int) float64 {
	if i < len(o.args) && o.args[i].kind == operandNumber {
		return o.args[i].num
	}
	return 0
}

func (o operation) numbers() []float64 {
	out := make([]float64, 0, len(o.args))
	for _, a := range o.args {
		if a.kind == operandNumber {
			out = append(out, a.num)
		}
	}
	return out
}

func (o operation) matrixArg() matrix {
	var m matrix
	for i := range m {
		m[i] = o.number(i)
	}
	return m
}

type lexer struct {
	src []byte
	pos int
}

// parseContent splits a content stream into operations. Operands left
// dangling at the end of the stream are dropped.
func parseContent(src []byte) ([]operation, error) {
	lx := &lexer{src: src}
	var (
		ops      []operation
		args     []operand
		argStart = -1
	)
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.src) {
			return ops, nil
		}
		start := lx.pos
		c := lx.src[lx.pos]

		if isOperandStart(c) {
			o, err := lx.operand()
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", start, err)
			}
			if argStart < 0 {
				argStart = start
			}
			args = append(args, o)
			continue
		}
		if isDelimiter(c) {
			lx.pos++
			continue
		}

		word := lx.regular()
		switch word {
		case "true", "false", "null":
			if argStart < 0 {
				argStart = start
			}
			args = append(args, operand{kind: operandKeyword, name: word})
			continue
		case "BI":
			if err := lx.skipInlineImage(); err != nil {
				return nil, fmt.Errorf("offset %d: %w", start, err)
			}
		}

		opStart := start
		if argStart >= 0 {
			opStart = argStart
		}
		ops = append(ops, operation{op: word, args: args, start: opStart, end: lx.pos})
		args = nil
		argStart = -1
	}
}

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isOperandStart(c byte) bool {
	switch {
	case c == '/', c == '(', c == '<', c == '[':
		return true
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		return true
	}
	return false
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '%' {
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' && lx.src[lx.pos] != '\r' {
				lx.pos++
			}
			continue
		}
		if !isWhite(c) {
			return
		}
		lx.pos++
	}
}

func (lx *lexer) regular() string {
	start := lx.pos
	for lx.pos < len(lx.src) && !isWhite(lx.src[lx.pos]) && !isDelimiter(lx.src[lx.pos]) {
		lx.pos++
	}
	return string(lx.src[start:lx.pos])
}

func (lx *lexer) operand() (operand, error) {
	c := lx.src[lx.pos]
	switch {
	case c == '/':
		lx.pos++
		return operand{kind: operandName, name: decodeName(lx.regular())}, nil
	case c == '(':
		s, err := lx.literal()
		return operand{kind: operandString, str: s}, err
	case c == '<' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '<':
		return lx.dict()
	case c == '<':
		s, err := lx.hex()
		return operand{kind: operandString, str: s}, err
	case c == '[':
		return lx.array()
	}
	word := lx.regular()
	n, err := strconv.ParseFloat(word, 64)
	if err != nil {
		n = 0
	}
	return operand{kind: operandNumber, num: n}, nil
}

func (lx *lexer) literal() ([]byte, error) {
	lx.pos++
	depth := 1
	var out []byte
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
		case '\\':
			if lx.pos >= len(lx.src) {
				return nil, errUnterminatedString
			}
			out = lx.escape(out)
			continue
		}
		out = append(out, c)
	}
	return nil, errUnterminatedString
}

func (lx *lexer) escape(out []byte) []byte {
	e := lx.src[lx.pos]
	lx.pos++
	switch e {
	case 'n':
		return append(out, '\n')
	case 'r':
		return append(out, '\r')
	case 't':
		return append(out, '\t')
	case 'b':
		return append(out, '\b')
	case 'f':
		return append(out, '\f')
	case '\r':
		if lx.pos < len(lx.src) && lx.src[lx.pos] == '\n' {
			lx.pos++
		}
		return out
	case '\n':
		return out
	}
	if e >= '0' && e <= '7' {
		v := int(e - '0')
		for i := 0; i < 2 && lx.pos < len(lx.src); i++ {
			d := lx.src[lx.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			lx.pos++
		}
		return append(out, byte(v))
	}
	return append(out, e)
}

func (lx *lexer) hex() ([]byte, error) {
	lx.pos++
	var digits []byte
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = unhex(digits[2*i])<<4 | unhex(digits[2*i+1])
			}
			return out, nil
		}
		if !isWhite(c) {
			digits = append(digits, c)
		}
	}
	return nil, errUnterminatedString
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func (lx *lexer) array() (operand, error) {
	lx.pos++
	arr := operand{kind: operandArray}
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.src) {
			return arr, errUnterminatedArray
		}
		c := lx.src[lx.pos]
		if c == ']' {
			lx.pos++
			return arr, nil
		}
		if isOperandStart(c) {
			o, err := lx.operand()
			if err != nil {
				return arr, err
			}
			arr.arr = append(arr.arr, o)
			continue
		}
		if isDelimiter(c) {
			lx.pos++
			continue
		}
		arr.arr = append(arr.arr, operand{kind: operandKeyword, name: lx.regular()})
	}
}

// dict skips an inline dictionary; its contents are never needed.
func (lx *lexer) dict() (operand, error) {
	lx.pos += 2
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.src) {
			return operand{}, errUnterminatedDict
		}
		if bytes.HasPrefix(lx.src[lx.pos:], []byte(">>")) {
			lx.pos += 2
			return operand{kind: operandDict}, nil
		}
		c := lx.src[lx.pos]
		if isOperandStart(c) {
			if _, err := lx.operand(); err != nil {
				return operand{}, err
			}
			continue
		}
		if isDelimiter(c) {
			lx.pos++
			continue
		}
		lx.regular()
	}
}

// skipInlineImage advances past BI ... ID <data> EI.
func (lx *lexer) skipInlineImage() error {
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.src) {
			return errUnterminatedImage
		}
		c := lx.src[lx.pos]
		if isOperandStart(c) {
			if _, err := lx.operand(); err != nil {
				return err
			}
			continue
		}
		if isDelimiter(c) {
			lx.pos++
			continue
		}
		if lx.regular() == "ID" {
			break
		}
	}
	lx.pos++
	for i := lx.pos; i+1 < len(lx.src); i++ {
		if lx.src[i] != 'E' || lx.src[i+1] != 'I' {
			continue
		}
		if !isWhite(lx.src[i-1]) {
			continue
		}
		if i+2 < len(lx.src) && !isWhite(lx.src[i+2]) {
			continue
		}
		lx.pos = i + 2
		return nil
	}
	return errUnterminatedImage
}

// decodeName resolves #xx escapes in a name token.
func decodeName(s string) string {
	if strings.IndexByte(s, '#') < 0 {
		return s
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && i+2 < len(s) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
