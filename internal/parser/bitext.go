// Package parser turns uploaded file contents into normalized records.
// Everything here is pure transformation: the bytes are already in memory
// and nothing touches the database.
package parser

import (
	"fmt"
	"strings"

	"github.com/scorecard/api/internal/model"
)

// ParseError is a recoverable upload problem. Handlers map it to a 400
// with the reason as the field-specific message.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

type BitextResult struct {
	Segments        []model.SegmentPair
	SourceWordCount int
	TargetWordCount int
}

// ParseBiColumnBitext parses a tab-separated two-column table of
// source/target sentence pairs. A leading header row (cells labeled
// "source"/"target") is skipped; blank lines are ignored. Word counts are
// whitespace-token counts summed over every row.
func ParseBiColumnBitext(text string) (*BitextResult, error) {
	result := &BitextResult{}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	sawRow := false
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		columns := strings.Split(line, "\t")
		if !sawRow && isHeaderRow(columns) {
			sawRow = true
			continue
		}
		sawRow = true

		if len(columns) < 2 {
			return nil, &ParseError{
				Reason: fmt.Sprintf("line %d does not contain both a source and a target column", i+1),
			}
		}

		source := strings.TrimSpace(columns[0])
		target := strings.TrimSpace(columns[1])
		result.Segments = append(result.Segments, model.SegmentPair{
			Source: source,
			Target: target,
		})
		result.SourceWordCount += len(strings.Fields(source))
		result.TargetWordCount += len(strings.Fields(target))
	}

	if len(result.Segments) == 0 {
		return nil, &ParseError{Reason: "no segments found in bi-text file"}
	}

	return result, nil
}

func isHeaderRow(columns []string) bool {
	if len(columns) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(columns[0]))
	second := strings.ToLower(strings.TrimSpace(columns[1]))
	return strings.HasPrefix(first, "source") && strings.HasPrefix(second, "target")
}
