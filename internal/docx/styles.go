package docx

import "encoding/xml"

// styleNames maps a paragraph style ID to its display name
// ("Heading1" -> "heading 1").
type styleNames map[string]string

type stylesPart struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func parseStyles(raw []byte) styleNames {
	var part stylesPart
	if err := xml.Unmarshal(raw, &part); err != nil {
		return nil
	}
	names := make(styleNames, len(part.Styles))
	for _, s := range part.Styles {
		if s.ID != "" && s.Name.Val != "" {
			names[s.ID] = s.Name.Val
		}
	}
	return names
}

// resolve returns the display name for id, or id itself when unknown.
func (s styleNames) resolve(id string) string {
	if name, ok := s[id]; ok {
		return name
	}
	return id
}
