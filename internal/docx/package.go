package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"resumetailor/internal/domain"
)

const (
	rootRelsPart        = "_rels/.rels"
	defaultMainPart     = "word/document.xml"
	defaultStylesPart   = "word/styles.xml"
	relOfficeDocument   = "/officeDocument"
	relStyles           = "/styles"
	maxPartUncompressed = 64 << 20
)

var errMissingMainPart = errors.New("main document part not found")

// wordPackage is an opened OOXML archive with its main part loaded.
type wordPackage struct {
	zr       *zip.Reader
	mainName string
	main     []byte
	styles   styleNames
}

type relationships struct {
	Items []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func openPackage(data []byte) (*wordPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewParseError(domain.FormatDOCX, err)
	}

	p := &wordPackage{zr: zr}
	p.mainName = p.resolveRel(rootRelsPart, "", relOfficeDocument, defaultMainPart)

	main, err := p.read(p.mainName)
	if err != nil {
		return nil, domain.NewParseError(domain.FormatDOCX, err)
	}
	p.main = main

	stylesName := p.resolveRel(relsPathFor(p.mainName), path.Dir(p.mainName), relStyles, defaultStylesPart)
	if raw, err := p.read(stylesName); err == nil {
		p.styles = parseStyles(raw)
	}
	return p, nil
}

// resolveRel finds the target of the first relationship in relsName whose
// type ends with typeSuffix. Targets are relative to baseDir.
func (p *wordPackage) resolveRel(relsName, baseDir, typeSuffix, fallback string) string {
	raw, err := p.read(relsName)
	if err != nil {
		return fallback
	}
	var rels relationships
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return fallback
	}
	for _, r := range rels.Items {
		if !strings.HasSuffix(r.Type, typeSuffix) {
			continue
		}
		if strings.HasPrefix(r.Target, "/") {
			return strings.TrimPrefix(r.Target, "/")
		}
		return path.Join(baseDir, r.Target)
	}
	return fallback
}

func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func (p *wordPackage) read(name string) ([]byte, error) {
	for _, f := range p.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()
		buf, err := io.ReadAll(io.LimitReader(rc, maxPartUncompressed+1))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if len(buf) > maxPartUncompressed {
			return nil, fmt.Errorf("part %s exceeds %d bytes", name, maxPartUncompressed)
		}
		return buf, nil
	}
	if name == p.mainName {
		return nil, fmt.Errorf("%w: %s", errMissingMainPart, name)
	}
	return nil, fmt.Errorf("part %s not found", name)
}

// rebuild writes a new archive in which the main part is replaced by main
// and every other entry is copied without recompression.
func (p *wordPackage) rebuild(main []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range p.zr.File {
		if f.Name != p.mainName {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := w.Write(main); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
