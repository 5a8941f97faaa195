package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseBody(t *testing.T, src string) (*Document, string) {
	t.Helper()
	doc, err := Parse(src)
	require.NoError(t, err)
	out, err := RenderChildren(doc.Container())
	require.NoError(t, err)
	return doc, out
}

func TestParse_ContainerIsBody(t *testing.T) {
	doc, out := parseBody(t, `<p>Hello</p>`)
	require.NotNil(t, doc.Body())
	assert.Equal(t, doc.Body(), doc.Container())
	assert.Equal(t, "<p>Hello</p>", out)
}

func TestUnwrap_HoistsChildrenInPlace(t *testing.T) {
	doc, _ := parseBody(t, `<p>a<span>b<em>c</em></span>d</p>`)
	span := FindFirst(doc.Root(), "span")
	require.NotNil(t, span)

	Unwrap(span)

	out, err := RenderChildren(doc.Container())
	require.NoError(t, err)
	assert.Equal(t, "<p>ab<em>c</em>d</p>", out)
}

func TestReplaceWithText(t *testing.T) {
	doc, _ := parseBody(t, `<div>x<table><tr><td>1</td></tr></table>y</div>`)
	table := FindFirst(doc.Root(), "table")
	require.NotNil(t, table)

	ReplaceWithText(table, "MARK")

	out, err := RenderChildren(doc.Container())
	require.NoError(t, err)
	assert.Equal(t, "<div>xMARKy</div>", out)
}

func TestRemove(t *testing.T) {
	doc, _ := parseBody(t, `<p>keep</p><script>alert(1)</script>`)
	Remove(FindFirst(doc.Root(), "script"))

	out, err := RenderChildren(doc.Container())
	require.NoError(t, err)
	assert.Equal(t, "<p>keep</p>", out)

	// detached nodes are ignored
	Remove(NewElement("p"))
}

func TestClone_IsDeepAndDetached(t *testing.T) {
	doc, _ := parseBody(t, `<div class="c"><p>one <b>two</b></p></div>`)
	p := FindFirst(doc.Root(), "p")
	require.NotNil(t, p)

	c := Clone(p)
	assert.Nil(t, c.Parent)
	assert.Equal(t, "one two", TextContent(c))

	Unwrap(FindFirst(c, "b"))
	assert.NotNil(t, FindFirst(p, "b"), "original must be untouched")
}

func TestAttrHelpers(t *testing.T) {
	n := NewElement("a")
	SetAttr(n, "href", "https://example.com")
	SetAttr(n, "style", "color:red")
	SetAttr(n, "onclick", "x()")

	v, ok := Attr(n, "href")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", v)

	SetAttr(n, "href", "https://example.org")
	v, _ = Attr(n, "href")
	assert.Equal(t, "https://example.org", v)

	assert.True(t, RemoveAttr(n, "style"))
	assert.False(t, RemoveAttr(n, "style"))

	assert.Equal(t, 1, RemoveAllAttrs(n, "href"))
	require.Len(t, n.Attr, 1)
	assert.Equal(t, "href", n.Attr[0].Key)
}

func TestPostOrder_ChildrenFirst(t *testing.T) {
	doc, _ := parseBody(t, `<strong><em>x</em></strong>`)
	nodes := PostOrder(doc.Container(), func(n *Node) bool {
		return IsElement(n, "strong", "em")
	})
	require.Len(t, nodes, 2)
	assert.Equal(t, "em", nodes[0].Data)
	assert.Equal(t, "strong", nodes[1].Data)
}

func TestHasAncestor(t *testing.T) {
	doc, _ := parseBody(t, `<table><tr><td><table><tr><td>in</td></tr></table></td></tr></table>`)
	tables := FindAll(doc.Root(), "table")
	require.Len(t, tables, 2)
	assert.False(t, HasAncestor(tables[0], nil, "table"))
	assert.True(t, HasAncestor(tables[1], nil, "table"))
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<div>raw <b>text</b> &amp; more<!-- note --></div>`)
	assert.Equal(t, "raw text & more", got)
}

func TestStyleDeclarations(t *testing.T) {
	type decl struct{ prop, value string }
	tests := []struct {
		name  string
		style string
		want  []decl
	}{
		{"single without semicolon", "font-weight:700", []decl{{"font-weight", "700"}}},
		{"single with semicolon", "font-weight: bold;", []decl{{"font-weight", "bold"}}},
		{"last value kept", "font-style:italic;font-weight:bold", []decl{{"font-style", "italic"}, {"font-weight", "bold"}}},
		{"trailing semicolons and spaces", " color: red ;; ", []decl{{"color", "red"}}},
		{"property case folded", "COLOR: Red", []decl{{"color", "Red"}}},
		{"empty value dropped", "color:;margin:0", []decl{{"margin", "0"}}},
		{"blank", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls, err := StyleDeclarations(tt.style)
			require.NoError(t, err)

			var got []decl
			for _, d := range decls {
				got = append(got, decl{d.Property, d.Value})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStyleDeclarations_Important(t *testing.T) {
	decls, err := StyleDeclarations("font-weight: bold !important")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "bold", decls[0].Value)
	assert.True(t, decls[0].Important)
}
