package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/mdclip/pkg/markup"
)

// Normalizer rewrites pasted markup into semantic HTML.
// It implements the cleaner.Cleaner interface.
type Normalizer struct {
	config    *Config
	selectors []compiledSelector
	invalid   []Warning
	stats     *Stats
}

type compiledSelector struct {
	source string
	sel    cascadia.Selector
}

// New creates a new Normalizer with the given configuration.
// If config is nil, DefaultConfig() is used. Selectors that fail to compile
// are skipped and reported as warnings on every result.
func New(config *Config) *Normalizer {
	if config == nil {
		config = DefaultConfig()
	}
	n := &Normalizer{config: config}
	for _, s := range config.RemoveSelectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			n.invalid = append(n.invalid, Warning{Phase: "config", Message: "invalid selector skipped", Context: s})
			continue
		}
		n.selectors = append(n.selectors, compiledSelector{source: s, sel: sel})
	}
	return n
}

// Name returns the cleaner name for logging.
func (n *Normalizer) Name() string {
	return "normalize"
}

// Config returns the configuration in use.
func (n *Normalizer) Config() *Config {
	return n.config
}

// Clean normalizes HTML and returns the rewritten markup.
// On failure the original content is returned (graceful degradation).
func (n *Normalizer) Clean(content string) (string, error) {
	return n.CleanWithStats(content).Content, nil
}

// CleanWithStats parses, normalizes and renders content, returning detailed stats.
func (n *Normalizer) CleanWithStats(content string) *Result {
	startTime := time.Now()

	parseStart := time.Now()
	doc, err := markup.Parse(content)
	parseDuration := time.Since(parseStart)

	if err != nil {
		result := &Result{Content: content, Stats: NewStats()}
		result.Stats.InputBytes = len(content)
		result.AddWarning("parse", "HTML parse failed, returning original", err.Error())
		result.Stats.OutputBytes = len(content)
		result.Stats.TotalDuration = time.Since(startTime)
		return result
	}

	result := n.Normalize(doc)
	result.Stats.InputBytes = len(content)
	result.Stats.ParseDuration = parseDuration

	outputStart := time.Now()
	output, err := markup.RenderChildren(result.Root)
	result.Stats.OutputDuration = time.Since(outputStart)

	if err != nil {
		result.Content = content
		result.AddWarning("output", "Output generation failed, returning original", err.Error())
	} else {
		result.Content = strings.TrimSpace(output)
	}
	result.Stats.OutputBytes = len(result.Content)
	result.Stats.TotalDuration = time.Since(startTime)
	n.stats = result.Stats

	return result
}

// Normalize rewrites an already parsed document in place. The returned
// result's Root names the node whose children hold the content.
func (n *Normalizer) Normalize(doc *markup.Document) *Result {
	result := &Result{Stats: NewStats()}
	result.Warnings = append(result.Warnings, n.invalid...)

	transformStart := time.Now()
	n.transform(doc.Root(), result)

	result.Root = doc.Container()
	if !hasContent(result.Root) {
		if root := doc.HTMLElement(); root != result.Root && strings.TrimSpace(markup.TextContent(root)) != "" {
			result.Root = root
			result.AddWarning("transform", "body has no content, converting document root", "")
		}
	}

	markup.Walk(result.Root, func(x *html.Node) bool {
		if x.Type == html.ElementNode && x != result.Root {
			result.Stats.ElementsKept++
		}
		return true
	})
	result.Stats.TransformDuration = time.Since(transformStart)
	n.stats = result.Stats

	return result
}

// Stats returns the stats from the last operation.
func (n *Normalizer) Stats() *Stats {
	return n.stats
}

// transform applies all configured transformations to the tree.
func (n *Normalizer) transform(root *html.Node, result *Result) {
	// Order matters: drop whole subtrees first, read style semantics before
	// vendor stripping discards the style attribute, then clean attributes.

	// 1. Non-content elements
	n.removeBySelectors(root, result)
	n.removeElements(root, result)
	if n.config.StripComments {
		n.removeComments(root, result)
	}

	// 2. Vendor wrappers
	if n.config.UnwrapDocsWrapper {
		n.unwrapDocsWrapper(root, result)
	}
	if n.config.UnwrapNamespaced {
		n.unwrapNamespaced(root, result)
	}

	// 3. Presentation to semantics
	if n.config.ConvertStyles {
		n.convertStyles(root, result)
	}

	// 4. Vendor classes and styles
	n.stripVendorMarkers(root, result)

	// 5. Empty emphasis and code
	if n.config.UnwrapEmptyFormatting {
		n.unwrapEmptyFormatting(root, result)
	}

	// 6. Attributes
	if n.config.Mode == ModeClean {
		n.applyAllowList(root, result)
	} else {
		n.cleanAttributes(root, result)
	}
}

// removeBySelectors removes elements matching user-defined selectors.
func (n *Normalizer) removeBySelectors(root *html.Node, result *Result) {
	for _, cs := range n.selectors {
		matches := cs.sel.MatchAll(root)
		if len(matches) == 0 {
			continue
		}
		result.Stats.RecordSelectorMatch(cs.source, len(matches))
		for _, m := range matches {
			if m.Parent == nil || !attached(m, root) {
				continue
			}
			result.Stats.RecordRemoval(m.Data)
			markup.Remove(m)
		}
	}
}

// removeElements removes all configured tags together with their content.
func (n *Normalizer) removeElements(root *html.Node, result *Result) {
	if len(n.config.RemoveTags) == 0 {
		return
	}
	for _, el := range markup.FindAll(root, n.config.RemoveTags...) {
		if !attached(el, root) {
			continue
		}
		result.Stats.RecordRemoval(el.Data)
		markup.Remove(el)
	}
}

// removeComments removes HTML comment nodes.
func (n *Normalizer) removeComments(root *html.Node, result *Result) {
	var comments []*html.Node
	markup.Walk(root, func(x *html.Node) bool {
		if x.Type == html.CommentNode {
			comments = append(comments, x)
		}
		return true
	})
	for _, c := range comments {
		markup.Remove(c)
		result.Stats.CommentsRemoved++
	}
}

// unwrapDocsWrapper unwraps the bold element Google Docs wraps every copied
// fragment in. It carries font-weight:normal, so its content is not bold.
func (n *Normalizer) unwrapDocsWrapper(root *html.Node, result *Result) {
	for _, b := range markup.FindAll(root, "b") {
		id, _ := markup.Attr(b, "id")
		if !strings.HasPrefix(id, "docs-internal-guid-") {
			continue
		}
		markup.Unwrap(b)
		result.Stats.VendorStrips++
	}
}

// unwrapNamespaced replaces Office namespace elements (o:p, w:sdt, v:shape)
// with their children.
func (n *Normalizer) unwrapNamespaced(root *html.Node, result *Result) {
	nodes := markup.PostOrder(root, func(x *html.Node) bool {
		return x.Type == html.ElementNode && strings.Contains(x.Data, ":")
	})
	for _, x := range nodes {
		markup.Unwrap(x)
		result.Stats.NamespacedUnwraps++
	}
}

// convertStyles turns span and font elements whose inline style fakes
// emphasis into strong, em and del elements.
func (n *Normalizer) convertStyles(root *html.Node, result *Result) {
	nodes := markup.PostOrder(root, func(x *html.Node) bool {
		return markup.IsElement(x, "span", "font") && markup.HasAttr(x, "style")
	})
	for _, el := range nodes {
		style, _ := markup.Attr(el, "style")
		hints := parseStyleHints(style)
		if !hints.any() {
			continue
		}
		if hints.bold && markup.HasAncestor(el, root, "strong", "b") {
			hints.bold = false
		}
		if hints.italic && markup.HasAncestor(el, root, "em", "i") {
			hints.italic = false
		}
		if hints.strike && markup.HasAncestor(el, root, "del", "s", "strike") {
			hints.strike = false
		}
		if !hints.any() {
			// Emphasis already applied by an ancestor.
			markup.Unwrap(el)
			continue
		}

		// Outermost first: strong > em > del > original content.
		var outer, inner *html.Node
		for _, tag := range hints.tags() {
			w := markup.NewElement(tag)
			if outer == nil {
				outer = w
			} else {
				inner.AppendChild(w)
			}
			inner = w
		}
		markup.MoveChildren(el, inner)
		for _, dup := range redundantEmphasis(inner, hints) {
			markup.Unwrap(dup)
		}
		el.AppendChild(outer)
		markup.Unwrap(el)
		result.Stats.StyleConversions++
	}
}

// redundantEmphasis returns the elements under n that repeat emphasis the
// new wrapper already applies.
func redundantEmphasis(n *html.Node, h styleHints) []*html.Node {
	var tags []string
	if h.bold {
		tags = append(tags, "strong", "b")
	}
	if h.italic {
		tags = append(tags, "em", "i")
	}
	if h.strike {
		tags = append(tags, "del", "s", "strike")
	}
	return markup.FindAll(n, tags...)
}

type styleHints struct {
	bold, italic, strike bool
}

func (h styleHints) any() bool {
	return h.bold || h.italic || h.strike
}

func (h styleHints) tags() []string {
	var tags []string
	if h.bold {
		tags = append(tags, "strong")
	}
	if h.italic {
		tags = append(tags, "em")
	}
	if h.strike {
		tags = append(tags, "del")
	}
	return tags
}

// parseStyleHints reads emphasis from an inline style attribute.
func parseStyleHints(style string) styleHints {
	var h styleHints
	decls, err := markup.StyleDeclarations(style)
	if err != nil {
		return h
	}
	for _, d := range decls {
		value := strings.ToLower(d.Value)
		switch d.Property {
		case "font-weight":
			h.bold = isBoldWeight(value)
		case "font-style":
			h.italic = value == "italic" || value == "oblique" || strings.HasPrefix(value, "oblique ")
		case "text-decoration", "text-decoration-line":
			h.strike = strings.Contains(value, "line-through")
		}
	}
	return h
}

func isBoldWeight(value string) bool {
	switch value {
	case "bold", "bolder":
		return true
	}
	w, err := strconv.Atoi(value)
	return err == nil && w >= 600
}

// stripVendorMarkers removes class and style from elements carrying
// vendor-specific classes or style properties.
func (n *Normalizer) stripVendorMarkers(root *html.Node, result *Result) {
	if len(n.config.VendorClassPrefixes) == 0 && len(n.config.VendorStylePrefixes) == 0 {
		return
	}
	markup.Walk(root, func(x *html.Node) bool {
		if x.Type != html.ElementNode {
			return true
		}
		if n.hasVendorClass(x) || n.hasVendorStyle(x) {
			removed := 0
			if markup.RemoveAttr(x, "class") {
				removed++
			}
			if markup.RemoveAttr(x, "style") {
				removed++
			}
			result.Stats.AttributesRemoved += removed
			result.Stats.VendorStrips++
		}
		return true
	})
}

func (n *Normalizer) hasVendorClass(x *html.Node) bool {
	class, ok := markup.Attr(x, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		for _, p := range n.config.VendorClassPrefixes {
			if strings.HasPrefix(c, p) {
				return true
			}
		}
	}
	return false
}

func (n *Normalizer) hasVendorStyle(x *html.Node) bool {
	style, ok := markup.Attr(x, "style")
	if !ok || style == "" {
		return false
	}
	decls, err := markup.StyleDeclarations(style)
	if err != nil {
		// Unparseable styles are matched textually.
		lower := strings.ToLower(style)
		for _, p := range n.config.VendorStylePrefixes {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
	for _, d := range decls {
		for _, p := range n.config.VendorStylePrefixes {
			if strings.HasPrefix(d.Property, p) {
				return true
			}
		}
	}
	return false
}

var formattingTags = []string{"em", "i", "strong", "b", "del", "s", "strike", "code"}

// unwrapEmptyFormatting replaces formatting elements without text by their
// whitespace so that neighbouring words stay apart. Inner elements are
// handled first, so nested empty formatting collapses completely.
func (n *Normalizer) unwrapEmptyFormatting(root *html.Node, result *Result) {
	nodes := markup.PostOrder(root, func(x *html.Node) bool {
		return markup.IsElement(x, formattingTags...)
	})
	for _, el := range nodes {
		if el.Parent == nil {
			continue
		}
		text := markup.TextContent(el)
		if strings.TrimSpace(text) != "" {
			continue
		}
		if markup.HasAncestor(el, root, "pre") {
			continue
		}
		if len(markup.FindAll(el, "img", "br")) > 0 {
			markup.Unwrap(el)
		} else if text == "" {
			markup.Remove(el)
		} else {
			markup.ReplaceWithText(el, text)
		}
		result.Stats.EmptyFormatUnwrap++
	}
}

// applyAllowList strips every attribute not on the clean mode allow-list.
func (n *Normalizer) applyAllowList(root *html.Node, result *Result) {
	markup.Walk(root, func(x *html.Node) bool {
		if x.Type == html.ElementNode && x != root {
			result.Stats.AttributesRemoved += markup.RemoveAllAttrs(x, cleanAllowList[x.Data]...)
		}
		return true
	})
}

// cleanAttributes removes scripting and styling attributes in default mode.
func (n *Normalizer) cleanAttributes(root *html.Node, result *Result) {
	cfg := n.config
	if !cfg.StripEventHandlers && !cfg.StripDataAttributes && !cfg.StripARIA && !cfg.StripStyles {
		return
	}
	markup.Walk(root, func(x *html.Node) bool {
		if x.Type != html.ElementNode {
			return true
		}
		result.Stats.AttributesRemoved += markup.RemoveAttrs(x, func(key string) bool {
			switch {
			case cfg.StripEventHandlers && strings.HasPrefix(key, "on"):
				return true
			case cfg.StripDataAttributes && strings.HasPrefix(key, "data-"):
				return true
			case cfg.StripARIA && strings.HasPrefix(key, "aria-"):
				return true
			case cfg.StripStyles && key == "style":
				return true
			}
			return false
		})
		return true
	})
}

// hasContent reports whether n holds any text or images.
func hasContent(n *html.Node) bool {
	if strings.TrimSpace(markup.TextContent(n)) != "" {
		return true
	}
	return len(markup.FindAll(n, "img")) > 0
}

// attached reports whether n is still connected to root.
func attached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
