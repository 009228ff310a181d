package parser

import (
	"encoding/xml"
	"strings"
)

type specificationsDoc struct {
	XMLName xml.Name `xml:"specifications"`
	Text    string   `xml:"text"`
}

// ParseSpecificationsXML extracts the free-text specification block from a
// specifications file.
func ParseSpecificationsXML(data []byte) (string, error) {
	var doc specificationsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", &ParseError{Reason: err.Error()}
	}

	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return "", &ParseError{Reason: "no specifications text found in file"}
	}

	return text, nil
}
