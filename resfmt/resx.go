package resfmt

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
)

// byteArrayMimeType marks a resx data element holding a base64-encoded byte
// array.
const byteArrayMimeType = "application/x-microsoft.net.object.bytearray.base64"

// resx document skeleton, matching what designer tools expect.
type resxRoot struct {
	XMLName xml.Name     `xml:"root"`
	Headers []resxHeader `xml:"resheader"`
	Data    []resxData   `xml:"data"`
}

type resxHeader struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type resxData struct {
	Name     string `xml:"name,attr"`
	MimeType string `xml:"mimetype,attr,omitempty"`
	Value    string `xml:"value"`
}

// EncodeResx renders entries as a resx document. Entries whose names cannot
// be represented in XML are returned in skipped and omitted from the
// document. The error return is reserved for failures of the XML encoder
// itself.
func EncodeResx(entries []Entry) (doc []byte, skipped []Entry, err error) {
	root := resxRoot{
		Headers: []resxHeader{
			{Name: "resmimetype", Value: "text/microsoft-resx"},
			{Name: "version", Value: "2.0"},
			{Name: "reader", Value: "System.Resources.ResXResourceReader"},
			{Name: "writer", Value: "System.Resources.ResXResourceWriter"},
		},
	}
	for _, e := range entries {
		if !xmlRepresentable(e.Name) {
			skipped = append(skipped, e)
			continue
		}
		root.Data = append(root.Data, resxData{
			Name:     e.Name,
			MimeType: byteArrayMimeType,
			Value:    base64.StdEncoding.EncodeToString(e.Data),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return nil, skipped, fmt.Errorf("resfmt: encode resx: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), skipped, nil
}

// xmlRepresentable reports whether s survives a round trip through an XML
// attribute: XML 1.0 forbids most control characters outright.
func xmlRepresentable(s string) bool {
	for _, r := range s {
		switch {
		case r == 0x09 || r == 0x0A || r == 0x0D:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
