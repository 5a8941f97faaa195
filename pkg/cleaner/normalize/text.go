package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/mdclip/pkg/markup"
)

var (
	spaceRunRegex   = regexp.MustCompile(`[ \t\f\r]+`)
	newlineRunRegex = regexp.MustCompile(`\n{3,}`)
)

// blockTags end a line of plain text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "section": true, "article": true,
	"header": true, "footer": true, "table": true, "ul": true, "ol": true,
	"hr": true, "dt": true, "dd": true,
}

// Text extracts readable plain text from markup. Block elements end lines;
// runs of spaces collapse. If the markup cannot be parsed, tags are stripped
// with a regular expression instead.
func Text(src string) string {
	doc, err := markup.Parse(src)
	if err != nil {
		return strings.TrimSpace(spaceRunRegex.ReplaceAllString(markup.StripTags(src), " "))
	}
	root := doc.Root()
	for _, el := range markup.FindAll(root, "script", "style", "head", "template", "noscript") {
		markup.Remove(el)
	}

	var sb strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if !(markup.IsElement(n.Parent, "table", "thead", "tbody", "tfoot", "tr", "ul", "ol") && strings.TrimSpace(n.Data) == "") {
				data := n.Data
				if !markup.HasAncestor(n, nil, "pre") {
					data = strings.ReplaceAll(data, "\n", " ")
				}
				sb.WriteString(data)
			}
			return
		case html.ElementNode:
			if n.Data == "td" || n.Data == "th" {
				if hasPrevCell(n) {
					sb.WriteString("\t")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			sb.WriteString("\n")
		}
	}
	visit(root)

	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		if strings.Contains(line, "\t") {
			cells := strings.Split(line, "\t")
			for j, c := range cells {
				cells[j] = strings.TrimSpace(spaceRunRegex.ReplaceAllString(c, " "))
			}
			lines[i] = strings.Join(cells, "\t")
			continue
		}
		lines[i] = strings.TrimSpace(spaceRunRegex.ReplaceAllString(line, " "))
	}
	text := newlineRunRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

func hasPrevCell(n *html.Node) bool {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if markup.IsElement(p, "td", "th") {
			return true
		}
	}
	return false
}
