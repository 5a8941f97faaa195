package convert

import (
	"fmt"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"

	"github.com/jmylchreest/mdclip/pkg/markup"
)

// passthroughBlocks only group content; their children are rendered as
// blocks separated by blank lines.
var passthroughBlocks = []string{"div", "section", "article", "main", "header", "footer", "center"}

// passthroughInline only carry styling; their children are rendered in place.
var passthroughInline = []string{"span", "font", "o:p"}

// autolinkSchemes are the link schemes rendered as <url> when the link text
// repeats the target.
var autolinkSchemes = []string{"http://", "https://", "mailto:"}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDomain resolves relative links and images against domain.
func WithDomain(domain string) EngineOption {
	return func(e *Engine) {
		e.domain = domain
	}
}

// Engine is the generic markup-to-markdown converter. The underlying
// converter is built on first use and shared by every later call, so one
// Engine should be created per host and passed to each conversion.
// An Engine is safe for concurrent use.
type Engine struct {
	once   sync.Once
	conv   *converter.Converter
	domain string
}

// NewEngine creates an Engine. Nothing is built until the first conversion.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Converter returns the underlying html-to-markdown converter, building it
// on first use.
func (e *Engine) Converter() *converter.Converter {
	e.once.Do(e.build)
	return e.conv
}

// ConvertString converts markup to markdown.
func (e *Engine) ConvertString(src string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if e.domain != "" {
		opts = append(opts, converter.WithDomain(e.domain))
	}
	md, err := e.Converter().ConvertString(src, opts...)
	if err != nil {
		return "", fmt.Errorf("engine convert: %w", err)
	}
	return md, nil
}

func (e *Engine) build() {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)

	for _, tag := range passthroughBlocks {
		conv.Register.RendererFor(tag, converter.TagTypeBlock, renderBlockChildren, converter.PriorityEarly)
	}
	for _, tag := range passthroughInline {
		conv.Register.RendererFor(tag, converter.TagTypeInline, renderInlineChildren, converter.PriorityEarly)
	}
	conv.Register.RendererFor("a", converter.TagTypeInline, renderAutolink, converter.PriorityEarly)

	e.conv = conv
}

func renderBlockChildren(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	w.WriteString("\n\n")
	ctx.RenderChildNodes(ctx, w, n)
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

func renderInlineChildren(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	ctx.RenderChildNodes(ctx, w, n)
	return converter.RenderSuccess
}

// renderAutolink writes <href> for links whose text is their own target.
// Anything else is left to the commonmark renderer.
func renderAutolink(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	href := strings.TrimSpace(dom.GetAttributeOr(n, "href", ""))
	if href == "" || !hasAutolinkScheme(href) {
		return converter.RenderTryNext
	}
	if strings.TrimSpace(markup.TextContent(n)) != href {
		return converter.RenderTryNext
	}
	w.WriteString("<" + href + ">")
	return converter.RenderSuccess
}

func hasAutolinkScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, s := range autolinkSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}
