package richtext

import (
	"maps"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/markup"
)

// PreCode is the stylesheet key for code blocks, applied to code inside pre
// instead of the inline code style.
const PreCode = "pre code"

// Stylesheet maps an element name to the inline style it receives.
type Stylesheet map[string]string

// DefaultStylesheet returns styling that survives pasting into mail clients
// and word processors.
func DefaultStylesheet() Stylesheet {
	return Stylesheet{
		"h1":         "font-size: 2em; font-weight: bold; margin: 0.67em 0;",
		"h2":         "font-size: 1.5em; font-weight: bold; margin: 0.83em 0;",
		"h3":         "font-size: 1.17em; font-weight: bold; margin: 1em 0;",
		"h4":         "font-size: 1em; font-weight: bold; margin: 1.33em 0;",
		"h5":         "font-size: 0.83em; font-weight: bold; margin: 1.67em 0;",
		"h6":         "font-size: 0.67em; font-weight: bold; margin: 2.33em 0;",
		"code":       "font-family: Consolas, Menlo, monospace; background-color: #f4f4f4; padding: 2px 4px; border-radius: 3px;",
		"pre":        "font-family: Consolas, Menlo, monospace; background-color: #f4f4f4; padding: 12px; border-radius: 4px; overflow-x: auto; white-space: pre;",
		PreCode:      "font-family: Consolas, Menlo, monospace;",
		"table":      "border-collapse: collapse; margin: 1em 0;",
		"th":         "border: 1px solid #d0d7de; padding: 6px 13px; font-weight: bold; background-color: #f6f8fa;",
		"td":         "border: 1px solid #d0d7de; padding: 6px 13px;",
		"blockquote": "border-left: 4px solid #d0d7de; margin: 0; padding: 0 1em; color: #57606a;",
		"a":          "color: #0969da; text-decoration: underline;",
		"img":        "max-width: 100%;",
	}
}

// Merge returns a copy of s with other's entries added or replacing s's.
func (s Stylesheet) Merge(other Stylesheet) Stylesheet {
	out := maps.Clone(s)
	if out == nil {
		out = Stylesheet{}
	}
	maps.Copy(out, other)
	return out
}

// Annotate inlines sheet into every matching element of the HTML fragment.
// Declarations already present on an element win over the sheet's.
func Annotate(fragment string, sheet Stylesheet) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		style, ok := sheet[tag]
		if tag == "code" && s.ParentsFiltered("pre").Length() > 0 {
			style, ok = sheet[PreCode]
		}
		if !ok || style == "" {
			return
		}
		existing, _ := s.Attr("style")
		s.SetAttr("style", mergeStyle(style, existing))
	})

	return doc.Find("body").Html()
}

// mergeStyle combines two style attributes, later declarations replacing
// earlier ones with the same property. Order of first appearance is kept.
func mergeStyle(base, override string) string {
	var order []string
	values := make(map[string]string)
	for _, style := range []string{base, override} {
		if strings.TrimSpace(style) == "" {
			continue
		}
		decls, err := markup.StyleDeclarations(style)
		if err != nil {
			logger.Debug("ignoring unparsable style", "style", style, "error", err)
			continue
		}
		for _, d := range decls {
			prop := d.Property
			if _, seen := values[prop]; !seen {
				order = append(order, prop)
			}
			value := d.Value
			if d.Important {
				value += " !important"
			}
			values[prop] = value
		}
	}

	parts := make([]string, 0, len(order))
	for _, prop := range order {
		parts = append(parts, prop+": "+values[prop]+";")
	}
	return strings.Join(parts, " ")
}

// Tags returns the element names in the sheet, sorted.
func (s Stylesheet) Tags() []string {
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
