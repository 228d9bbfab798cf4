// Package parse turns the ung CLI's tabular and key/value text output
// into typed domain records. Everything here is pure: identical input
// yields identical records, so the package is tested without the tool.
package parse

import (
	"regexp"
	"strings"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
)

// Columns are separated by runs of two or more whitespace characters;
// single spaces are data (client names, descriptions).
var columnSep = regexp.MustCompile(`\s{2,}`)

// SplitColumns splits one data line into its column values.
func SplitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return columnSep.Split(line, -1)
}

// summary rows ("Total: ...") appear after the data and must be
// filtered by content, not position.
var summaryPrefixes = []string{"total", "sum", "subtotal", "---", "==="}

func isSummaryLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range summaryPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// dataLines validates the header line and returns the remaining
// non-blank, non-summary lines. The header is recognized by requiring
// every keyword to appear in it (case-insensitive); an unrecognizable
// header fails the whole batch rather than risking a misleading
// partial parse.
func dataLines(op, raw string, keywords ...string) ([]string, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		// Empty output is a valid zero-record batch.
		return nil, nil
	}

	header := strings.ToLower(lines[headerIdx])
	for _, keyword := range keywords {
		if !strings.Contains(header, strings.ToLower(keyword)) {
			return nil, toolerr.New(toolerr.KindParse, op, "unrecognized header: "+strings.TrimSpace(lines[headerIdx]))
		}
	}

	var out []string
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" || isSummaryLine(line) {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}
