// Package markup provides the parsed HTML tree used by the paste pipeline.
//
// Trees are built with golang.org/x/net/html (through goquery) and are owned
// by a single conversion call. Every node is owned by its parent; Parent
// pointers are for navigation only. All mutation goes through the editing
// functions in this package rather than ad hoc node surgery.
package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is a node of the markup tree.
type Node = html.Node

// Document is a parsed markup tree.
type Document struct {
	doc *goquery.Document
}

// Parse parses markup text into a Document.
// The HTML5 parser tolerates almost anything; an error here means the reader
// failed, not that the markup was malformed.
func Parse(src string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Selection returns a goquery selection over the whole document.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Body returns the <body> element, or nil when the tree has none.
func (d *Document) Body() *html.Node {
	return FindFirst(d.Root(), "body")
}

// HTMLElement returns the <html> element, falling back to the document node.
func (d *Document) HTMLElement() *html.Node {
	if n := FindFirst(d.Root(), "html"); n != nil {
		return n
	}
	return d.Root()
}

// Container returns the node whose children hold the document content.
func (d *Document) Container() *html.Node {
	if b := d.Body(); b != nil {
		return b
	}
	return d.HTMLElement()
}

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children, in place.
func Unwrap(n *html.Node) {
	p := n.Parent
	if p == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		p.InsertBefore(c, n)
		c = next
	}
	p.RemoveChild(n)
}

// ReplaceWith puts repl where n was and detaches n.
func ReplaceWith(n, repl *html.Node) {
	p := n.Parent
	if p == nil {
		return
	}
	if repl.Parent != nil {
		repl.Parent.RemoveChild(repl)
	}
	p.InsertBefore(repl, n)
	p.RemoveChild(n)
}

// ReplaceWithText replaces n with a single text node and returns it.
func ReplaceWithText(n *html.Node, text string) *html.Node {
	t := NewText(text)
	ReplaceWith(n, t)
	return t
}

// Wrap inserts a new tag element where n was and moves n inside it.
func Wrap(n *html.Node, tag string) *html.Node {
	w := NewElement(tag)
	if n.Parent != nil {
		n.Parent.InsertBefore(w, n)
		n.Parent.RemoveChild(n)
	}
	w.AppendChild(n)
	return w
}

// MoveChildren moves every child of from to the end of to.
func MoveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// IsElement reports whether n is an element with one of the given tags.
// With no tags it reports whether n is an element at all.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// Elements returns the element children of n.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants in document order. When fn returns
// false the children of that node are skipped.
// fn must not detach nodes; collect them first and edit afterwards.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// FindAll returns the descendants of n (excluding n) that are elements with
// one of the tags, in document order.
func FindAll(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(x *html.Node) bool {
			if IsElement(x, tags...) {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

// FindFirst returns the first descendant-or-self element with the tag.
func FindFirst(n *html.Node, tag string) *html.Node {
	var found *html.Node
	Walk(n, func(x *html.Node) bool {
		if found != nil {
			return false
		}
		if IsElement(x, tag) {
			found = x
			return false
		}
		return true
	})
	return found
}

// PostOrder returns the descendants of n (excluding n) that satisfy pred,
// children before parents. Editing the nodes in that order lets inner
// results feed the outer ones.
func PostOrder(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(x *html.Node) {
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
			if pred(c) {
				out = append(out, c)
			}
		}
	}
	visit(n)
	return out
}

// HasAncestor reports whether any ancestor of n, up to but excluding stop,
// is an element with one of the tags.
func HasAncestor(n, stop *html.Node, tags ...string) bool {
	for p := n.Parent; p != nil && p != stop; p = p.Parent {
		if IsElement(p, tags...) {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	Walk(n, func(x *html.Node) bool {
		if x.Type == html.TextNode {
			sb.WriteString(x.Data)
		}
		return true
	})
	return sb.String()
}

// Attr returns the value of the attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets the attribute key, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key and reports whether it was present.
func RemoveAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAttrs deletes every attribute for which drop returns true and
// returns how many were removed.
func RemoveAttrs(n *html.Node, drop func(key string) bool) int {
	kept := n.Attr[:0]
	removed := 0
	for _, a := range n.Attr {
		if drop(a.Key) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	return removed
}

// RemoveAllAttrs deletes every attribute not listed in keep.
func RemoveAllAttrs(n *html.Node, keep ...string) int {
	return RemoveAttrs(n, func(key string) bool {
		for _, k := range keep {
			if k == key {
				return false
			}
		}
		return true
	})
}

// Render serialises n, including n itself.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render markup: %w", err)
	}
	return buf.String(), nil
}

// RenderChildren serialises the children of n.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render markup: %w", err)
		}
	}
	return buf.String(), nil
}

var (
	tagRegex     = regexp.MustCompile(`<[^>]*>`)
	commentRegex = regexp.MustCompile(`<!--[\s\S]*?-->`)
)

// StripTags removes anything that looks like a tag from s.
// It is the last-resort text extraction when no tree is available.
func StripTags(s string) string {
	s = commentRegex.ReplaceAllString(s, "")
	s = tagRegex.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}
