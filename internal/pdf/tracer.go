package pdf

import (
	"math"
	"strings"

	"resumetailor/internal/domain"
)

// kerningSpace is the TJ adjustment, in thousandths of an em, above which
// a gap is read as a word break.
const kerningSpace = 200

// showing is one traced text-showing operation.
type showing struct {
	op       int
	text     string
	origin   domain.Point
	end      domain.Point
	bbox     domain.Rect
	advance  float64
	fontSize float64
	hscale   float64
	size     float64
	font     *font
	color    int
}

type graphicsState struct {
	ctm       matrix
	fill      int
	font      *font
	fontSize  float64
	charSpace float64
	wordSpace float64
	hscale    float64
	leading   float64
	rise      float64
}

// tracer runs a content stream virtually, tracking the graphics and text
// state needed to place every glyph in user space.
type tracer struct {
	fonts    map[string]*font
	fallback *font
	gs       graphicsState
	stack    []graphicsState
	tm       matrix
	tlm      matrix
	out      []showing
}

func trace(ops []operation, fonts map[string]*font) []showing {
	t := &tracer{
		fonts:    fonts,
		fallback: loadFont(nil, nil),
		gs:       graphicsState{ctm: identity(), hscale: 1},
		tm:       identity(),
		tlm:      identity(),
	}
	for i, op := range ops {
		t.step(i, op)
	}
	return t.out
}

func (t *tracer) step(i int, op operation) {
	gs := &t.gs
	switch op.op {
	case "q":
		t.stack = append(t.stack, *gs)
	case "Q":
		if n := len(t.stack); n > 0 {
			*gs = t.stack[n-1]
			t.stack = t.stack[:n-1]
		}
	case "cm":
		gs.ctm = op.matrixArg().mul(gs.ctm)

	case "BT":
		t.tm, t.tlm = identity(), identity()
	case "Tf":
		if len(op.args) > 0 && op.args[0].kind == operandName {
			gs.font = t.fonts[op.args[0].name]
		}
		gs.fontSize = op.number(1)
	case "Tc":
		gs.charSpace = op.number(0)
	case "Tw":
		gs.wordSpace = op.number(0)
	case "Tz":
		gs.hscale = op.number(0) / 100
	case "TL":
		gs.leading = op.number(0)
	case "Ts":
		gs.rise = op.number(0)
	case "Td":
		t.moveLine(op.number(0), op.number(1))
	case "TD":
		gs.leading = -op.number(1)
		t.moveLine(op.number(0), op.number(1))
	case "Tm":
		t.tlm = op.matrixArg()
		t.tm = t.tlm
	case "T*":
		t.moveLine(0, -gs.leading)

	case "Tj":
		if len(op.args) > 0 {
			t.show(i, op.args[:1])
		}
	case "'":
		t.moveLine(0, -gs.leading)
		if len(op.args) > 0 {
			t.show(i, op.args[:1])
		}
	case "\"":
		if len(op.args) >= 3 {
			gs.wordSpace = op.number(0)
			gs.charSpace = op.number(1)
			t.moveLine(0, -gs.leading)
			t.show(i, op.args[2:3])
		}
	case "TJ":
		if len(op.args) > 0 && op.args[0].kind == operandArray {
			t.show(i, op.args[0].arr)
		}

	case "g":
		gs.fill = grayColor(op.number(0))
	case "rg":
		gs.fill = rgbColor(op.number(0), op.number(1), op.number(2))
	case "k":
		gs.fill = cmykColor(op.number(0), op.number(1), op.number(2), op.number(3))
	case "cs":
		gs.fill = 0
	case "sc", "scn":
		switch n := op.numbers(); len(n) {
		case 1:
			gs.fill = grayColor(n[0])
		case 3:
			gs.fill = rgbColor(n[0], n[1], n[2])
		case 4:
			gs.fill = cmykColor(n[0], n[1], n[2], n[3])
		}
	}
}

func (t *tracer) moveLine(tx, ty float64) {
	t.tlm = translate(tx, ty).mul(t.tlm)
	t.tm = t.tlm
}

func (t *tracer) show(i int, parts []operand) {
	gs := &t.gs
	f := gs.font
	if f == nil {
		f = t.fallback
	}

	var sb strings.Builder
	tx := 0.0
	for _, p := range parts {
		switch p.kind {
		case operandNumber:
			tx -= p.num / 1000 * gs.fontSize * gs.hscale
			if -p.num > kerningSpace && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		case operandString:
			for _, code := range f.codes(p.str) {
				sb.WriteString(f.decode(code))
				adv := f.width(code)*f.scale*gs.fontSize + gs.charSpace
				if !f.composite && code == ' ' {
					adv += gs.wordSpace
				}
				tx += adv * gs.hscale
			}
		}
	}

	trm := t.tm.mul(gs.ctm)
	lo := f.descent*0.001*gs.fontSize + gs.rise
	hi := f.ascent*0.001*gs.fontSize + gs.rise
	t.out = append(t.out, showing{
		op:       i,
		text:     sb.String(),
		origin:   trm.apply(0, gs.rise),
		end:      trm.apply(tx, gs.rise),
		bbox:     pointsToRect(trm.apply(0, lo), trm.apply(tx, lo), trm.apply(0, hi), trm.apply(tx, hi)),
		advance:  tx,
		fontSize: gs.fontSize,
		hscale:   gs.hscale,
		size:     math.Abs(gs.fontSize) * trm.verticalScale(),
		font:     f,
		color:    gs.fill,
	})
	t.tm = translate(tx, 0).mul(t.tm)
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func rgbColor(r, g, b float64) int {
	return channel(r)<<16 | channel(g)<<8 | channel(b)
}

func grayColor(v float64) int { return rgbColor(v, v, v) }

func cmykColor(c, m, y, k float64) int {
	return rgbColor((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}
