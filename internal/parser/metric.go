package parser

import (
	"encoding/xml"
	"strings"
)

// IssueNode is one <issue> element of a metric file. Nesting is arbitrary;
// each level contributes one flat entry whose parent is its container.
type IssueNode struct {
	ID          string      `xml:"id,attr"`
	Display     string      `xml:"display,attr"`
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	Notes       string      `xml:"notes"`
	Examples    string      `xml:"examples"`
	Children    []IssueNode `xml:"issue"`
}

type metricDoc struct {
	XMLName xml.Name    `xml:"issues"`
	Issues  []IssueNode `xml:"issue"`
}

// FlatIssue is a pre-order flattened metric entry. Parent is nil for root
// issues and the immediate container's id otherwise. The metadata fields
// are only consulted when a metric file seeds the typology catalogue.
type FlatIssue struct {
	Issue       string
	Parent      *string
	Display     bool
	Name        string
	Description string
	Notes       string
	Examples    string
}

// ParseMetricXML decodes a metric definition file into its flat issue
// list. An empty or issue-less document is a ParseError ("no issues
// found").
func ParseMetricXML(data []byte) ([]FlatIssue, error) {
	var doc metricDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	if len(doc.Issues) == 0 {
		return nil, &ParseError{Reason: "no issues found"}
	}

	var flat []FlatIssue
	for _, root := range doc.Issues {
		flat = flattenIssue(flat, root, nil)
	}

	return flat, nil
}

func flattenIssue(flat []FlatIssue, node IssueNode, parent *string) []FlatIssue {
	flat = append(flat, FlatIssue{
		Issue:       node.ID,
		Parent:      parent,
		Display:     parseDisplay(node.Display),
		Name:        strings.TrimSpace(node.Name),
		Description: strings.TrimSpace(node.Description),
		Notes:       strings.TrimSpace(node.Notes),
		Examples:    strings.TrimSpace(node.Examples),
	})

	id := node.ID
	for _, child := range node.Children {
		flat = flattenIssue(flat, child, &id)
	}

	return flat
}

// parseDisplay maps the display attribute to a bool. Absent defaults to
// true so hand-written metric files stay usable.
func parseDisplay(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "no", "false", "0":
		return false
	default:
		return true
	}
}
