package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"resumetailor/internal/domain"
)

const maxInheritDepth = 32

var errNoPageDict = errors.New("page dictionary missing")

// document wraps a pdfcpu context with the page-level operations the
// codec needs.
type document struct {
	ctx *model.Context
}

func openDocument(data []byte) (*document, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, domain.NewParseError(domain.FormatPDF, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, domain.NewParseError(domain.FormatPDF, err)
	}
	return &document{ctx: ctx}, nil
}

func (d *document) pageCount() int { return d.ctx.PageCount }

// page returns the dictionary of the zero-based page i.
func (d *document) page(i int) (types.Dict, error) {
	pd, _, _, err := d.ctx.PageDict(i+1, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", i, err)
	}
	if pd == nil {
		return nil, fmt.Errorf("page %d: %w", i, errNoPageDict)
	}
	return pd, nil
}

// resources returns the page's own or inherited resource dictionary.
func (d *document) resources(pd types.Dict) types.Dict {
	node := pd
	for depth := 0; node != nil && depth < maxInheritDepth; depth++ {
		if res := dictEntry(d.ctx, node, "Resources"); res != nil {
			return res
		}
		node = dictEntry(d.ctx, node, "Parent")
	}
	return nil
}

// content returns the page's content streams decoded and concatenated.
func (d *document) content(pd types.Dict) []byte {
	switch v := entry(d.ctx, pd, "Contents").(type) {
	case nil:
		return nil
	case types.Array:
		var buf bytes.Buffer
		for _, o := range v {
			if raw, ok := streamBytes(d.ctx, o); ok {
				buf.Write(raw)
				buf.WriteByte('\n')
			}
		}
		return buf.Bytes()
	default:
		raw, _ := streamBytes(d.ctx, v)
		return raw
	}
}

// fonts loads every font in the page's resource dictionary, keyed by
// resource name.
func (d *document) fonts(pd types.Dict) map[string]*font {
	out := make(map[string]*font)
	for name, o := range dictEntry(d.ctx, d.resources(pd), "Font") {
		out[name] = loadFont(d.ctx, dictOf(d.ctx, o))
	}
	return out
}

func (d *document) newStream(content []byte) (types.IndirectRef, error) {
	sd, err := d.ctx.NewStreamDictForBuf(content)
	if err != nil {
		return types.IndirectRef{}, err
	}
	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, err
	}
	ref, err := d.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

// replaceContent points the page at a single new content stream.
func (d *document) replaceContent(pd types.Dict, content []byte) error {
	ref, err := d.newStream(content)
	if err != nil {
		return err
	}
	pd["Contents"] = ref
	return nil
}

// appendContent adds a content stream drawn after the existing ones.
func (d *document) appendContent(pd types.Dict, content []byte) error {
	ref, err := d.newStream(content)
	if err != nil {
		return err
	}
	raw := pd["Contents"]
	var streams types.Array
	switch v := deref(d.ctx, raw).(type) {
	case nil:
	case types.Array:
		streams = append(streams, v...)
	default:
		streams = types.Array{raw}
	}
	pd["Contents"] = append(streams, ref)
	return nil
}

// addFont registers a standard Type1 font with WinAnsi encoding in the
// page's resources and returns its resource name.
func (d *document) addFont(pd types.Dict, baseFont string) (string, error) {
	res := d.resources(pd)
	if res == nil {
		res = types.Dict{}
		pd["Resources"] = res
	}
	fonts := dictEntry(d.ctx, res, "Font")
	if fonts == nil {
		fonts = types.Dict{}
		res["Font"] = fonts
	}
	name := ""
	for i := 1; ; i++ {
		name = fmt.Sprintf("RT%d", i)
		if _, taken := fonts[name]; !taken {
			break
		}
	}
	ref, err := d.ctx.IndRefForNewObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(baseFont),
		"Encoding": types.Name("WinAnsiEncoding"),
	})
	if err != nil {
		return "", err
	}
	fonts[name] = *ref
	return name, nil
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
