package tables

import (
	"regexp"
	"strings"

	"github.com/jmylchreest/mdclip/internal/logger"
)

// residualMarkerRegex matches any marker text, escaped or not.
var residualMarkerRegex = regexp.MustCompile(`UNIQUE\\?_TABLE\\?_MARKER\\?_[0-9a-z]*\\?_END`)

// containerLead matches the text between a line start and a marker that
// opens a block inside blockquotes or list items: quote markers, indent and
// an optional list marker.
var containerLead = regexp.MustCompile(`^((?:[ \t]*>[ \t]?)*)([ \t]*)((?:[-*+]|[0-9]{1,9}[.)])[ \t]+)?$`)

// MarkerPattern returns a pattern matching the marker for id as the engine
// may have emitted it: every underscore either verbatim or escaped as \_.
func MarkerPattern(id string) *regexp.Regexp {
	parts := strings.Split(Marker(id), "_")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(strings.Join(parts, `\\?_`))
}

// Reinsert replaces each table's marker in md with the table markdown,
// surrounded by blank lines. A marker nested in a blockquote or list item
// has the container prefix repeated on every table line. It returns the result and the number of markers
// that could not be found. Marker text left over afterwards is removed.
func Reinsert(md string, tables []Extracted) (string, int) {
	missing := 0
	for _, t := range tables {
		loc := MarkerPattern(t.ID).FindStringIndex(md)
		if loc == nil {
			missing++
			logger.Error("table marker not found in converted markdown",
				"id", t.ID, "table_bytes", len(t.Markdown))
			continue
		}
		md = placeTable(md, loc[0], loc[1], t.Markdown)
	}

	if residualMarkerRegex.MatchString(md) {
		logger.Error("removing leftover table markers", "count", len(residualMarkerRegex.FindAllStringIndex(md, -1)))
		md = residualMarkerRegex.ReplaceAllString(md, "")
	}
	return md, missing
}

// placeTable replaces md[start:end] with table.
func placeTable(md string, start, end int, table string) string {
	lineStart := strings.LastIndexByte(md[:start], '\n') + 1
	lead := md[lineStart:start]
	m := containerLead.FindStringSubmatch(lead)
	if lead == "" || m == nil {
		return md[:start] + "\n\n" + table + "\n\n" + md[end:]
	}
	cont := m[1] + m[2] + strings.Repeat(" ", len(m[3]))

	var sb strings.Builder
	sb.WriteString(md[:start])
	for i, line := range strings.Split(table, "\n") {
		if i > 0 {
			sb.WriteString("\n" + cont)
		}
		sb.WriteString(line)
	}

	rest := md[end:]
	lineEnd := strings.IndexByte(rest, '\n')
	if lineEnd < 0 {
		lineEnd = len(rest)
	}
	if strings.TrimSpace(rest[:lineEnd]) != "" {
		// Text after the marker becomes a paragraph in the same container.
		sb.WriteString("\n" + strings.TrimRight(cont, " \t") + "\n" + cont)
		rest = strings.TrimLeft(rest, " \t")
	}
	sb.WriteString(rest)
	return sb.String()
}

// Strip removes every marker from md without reinserting anything.
func Strip(md string) string {
	return residualMarkerRegex.ReplaceAllString(md, "")
}
