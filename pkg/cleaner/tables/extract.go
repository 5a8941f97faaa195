// Package tables lifts tables out of a markup tree as markdown and puts them
// back into converted markdown afterwards.
//
// Generic markup-to-markdown engines flatten cells that hold lists or
// paragraphs and escape pipe characters inconsistently. Extracting the tables
// first and replacing each with an opaque marker keeps the engine away from
// table content entirely.
package tables

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/jmylchreest/mdclip/pkg/markup"
)

const (
	markerPrefix = "UNIQUE_TABLE_MARKER_"
	markerSuffix = "_END"

	// DefaultListSeparator joins list items flattened into a single cell.
	DefaultListSeparator = " • "
)

// Extracted is a table rendered to markdown, waiting for reinsertion.
type Extracted struct {
	// ID is unique within one conversion and made of [0-9a-z] only.
	ID string `json:"id"`

	// Markdown is the rendered table, header and separator rows included.
	Markdown string `json:"markdown"`
}

// Marker returns the placeholder text standing in for the table.
func (e Extracted) Marker() string {
	return Marker(e.ID)
}

// Marker returns the placeholder text for a table ID.
func Marker(id string) string {
	return markerPrefix + id + markerSuffix
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the time source used for marker IDs.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithListSeparator sets the separator used when a list is flattened into a cell.
func WithListSeparator(sep string) Option {
	return func(e *Extractor) {
		e.separator = sep
	}
}

// Extractor converts tables to markdown and replaces them with markers.
type Extractor struct {
	now       func() time.Time
	separator string
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		now:       time.Now,
		separator: DefaultListSeparator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract renders every outermost table under root, in document order, and
// replaces it with a marker text node. Tables without rows are removed and
// get no marker. Nested tables end up as text of the cell holding them.
func (e *Extractor) Extract(root *markup.Node) []Extracted {
	var out []Extracted
	stamp := strconv.FormatInt(e.now().UnixNano(), 36)

	for _, table := range markup.FindAll(root, "table") {
		if markup.HasAncestor(table, root, "table") {
			continue
		}
		rows := tableRows(table)
		if len(rows) == 0 {
			markup.Remove(table)
			continue
		}

		id := strconv.FormatInt(int64(len(out)), 36) + "x" + stamp
		out = append(out, Extracted{
			ID:       id,
			Markdown: e.render(rows),
		})
		markup.ReplaceWithText(table, Marker(id))
	}
	return out
}

// tableRows returns the rows of table itself, looking through thead, tbody
// and tfoot but not into nested tables. Rows without cells are skipped.
func tableRows(table *html.Node) [][]*html.Node {
	var rows [][]*html.Node
	addRow := func(tr *html.Node) {
		var cells []*html.Node
		for _, c := range markup.Elements(tr) {
			if markup.IsElement(c, "td", "th") {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	for _, child := range markup.Elements(table) {
		switch {
		case markup.IsElement(child, "tr"):
			addRow(child)
		case markup.IsElement(child, "thead", "tbody", "tfoot"):
			for _, tr := range markup.Elements(child) {
				if markup.IsElement(tr, "tr") {
					addRow(tr)
				}
			}
		}
	}
	return rows
}

// headerIndex picks the header row: the first row made only of th cells,
// else the first row whose every cell is bold, else the first row.
func headerIndex(rows [][]*html.Node) int {
	for i, cells := range rows {
		if allCells(cells, func(c *html.Node) bool { return markup.IsElement(c, "th") }) {
			return i
		}
	}
	for i, cells := range rows {
		if allCells(cells, isBoldCell) {
			return i
		}
	}
	return 0
}

func allCells(cells []*html.Node, pred func(*html.Node) bool) bool {
	for _, c := range cells {
		if !pred(c) {
			return false
		}
	}
	return len(cells) > 0
}

func isBoldCell(cell *html.Node) bool {
	for _, b := range markup.FindAll(cell, "strong", "b") {
		if strings.TrimSpace(markup.TextContent(b)) != "" {
			return true
		}
	}
	return false
}

func (e *Extractor) render(rows [][]*html.Node) string {
	h := headerIndex(rows)

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(c)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	header := e.rowText(rows[h])
	writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)

	for i, cells := range rows {
		if i == h {
			continue
		}
		writeRow(e.rowText(cells))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (e *Extractor) rowText(cells []*html.Node) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = e.CellText(c)
	}
	return out
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// blockBoundary elements separate words when a cell is flattened.
var blockBoundary = []string{
	"p", "div", "li", "tr", "td", "th", "table", "blockquote", "pre",
	"h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd",
}

// CellText flattens a table cell to a single line of markdown-safe text.
// The cell itself is not modified.
func (e *Extractor) CellText(cell *html.Node) string {
	c := markup.Clone(cell)

	// A lone paragraph is the cell content.
	if els := markup.Elements(c); len(els) == 1 && markup.IsElement(els[0], "p") && onlyElementContent(c) {
		markup.Unwrap(els[0])
	}

	for _, br := range markup.FindAll(c, "br") {
		markup.ReplaceWithText(br, " ")
	}

	for _, list := range markup.FindAll(c, "ul", "ol") {
		if markup.HasAncestor(list, c, "ul", "ol") {
			continue
		}
		markup.ReplaceWithText(list, " "+e.listText(list)+" ")
	}

	for _, el := range markup.PostOrder(c, func(n *html.Node) bool {
		return markup.IsElement(n, "div", "span") && len(n.Attr) == 0
	}) {
		if el.Data == "div" {
			el.InsertBefore(markup.NewText(" "), el.FirstChild)
			el.AppendChild(markup.NewText(" "))
		}
		markup.Unwrap(el)
	}

	for _, el := range markup.FindAll(c, blockBoundary...) {
		el.InsertBefore(markup.NewText(" "), el.FirstChild)
		el.AppendChild(markup.NewText(" "))
	}

	text := whitespaceRegex.ReplaceAllString(markup.TextContent(c), " ")
	text = strings.TrimSpace(text)
	return strings.ReplaceAll(text, "|", `\|`)
}

// listText joins the items of a list, preferring each item's paragraph text.
func (e *Extractor) listText(list *html.Node) string {
	var items []string
	for _, li := range markup.Elements(list) {
		if !markup.IsElement(li, "li") {
			continue
		}
		var text string
		if ps := markup.FindAll(li, "p"); len(ps) > 0 {
			parts := make([]string, 0, len(ps))
			for _, p := range ps {
				parts = append(parts, markup.TextContent(p))
			}
			text = strings.Join(parts, " ")
		} else {
			text = markup.TextContent(li)
		}
		text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
		if text != "" {
			items = append(items, text)
		}
	}
	return strings.Join(items, e.separator)
}

// onlyElementContent reports whether every text child of n is whitespace.
func onlyElementContent(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}
