package mdclip

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mdclip/pkg/cleaner"
	"github.com/jmylchreest/mdclip/pkg/clipboard"
	"github.com/jmylchreest/mdclip/pkg/convert"
	"github.com/jmylchreest/mdclip/pkg/mdformat"
)

func newService(cb clipboard.Clipboard, opts ...Option) *Service {
	opts = append([]Option{WithClipboard(cb), WithFormatter(mdformat.NewNoop())}, opts...)
	return New(opts...)
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<div>raw text</div>", true},
		{"  <p>x", true},
		{"<br/>", true},
		{"</span>", true},
		{"<o:p></o:p>", true},
		{"plain <b>bold</b>", false},
		{"< not a tag", false},
		{"<3 you", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksLikeHTML(tt.in), "LooksLikeHTML(%q)", tt.in)
	}
}

func TestPasteFromHTML_PlainTextMarkup(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypePlain, Data: "<div>raw text</div>"})

	r := newService(cb).PasteFromHTML(context.Background())

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "raw text", r.Text)
	assert.Equal(t, clipboard.TypePlain, r.Source)
	assert.Equal(t, ModePasteHTML, r.Mode)
}

func TestPasteMarkdown_PlainTextMarkupIsLiteral(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypePlain, Data: "<div>raw text</div>"})

	r := newService(cb).PasteMarkdown(context.Background())

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "<div>raw text</div>", r.Text)
}

func TestPaste_StructuredReadFailsFallsBackToText(t *testing.T) {
	for name, paste := range map[string]func(*Service, context.Context) Result{
		"markdown":  (*Service).PasteMarkdown,
		"from html": (*Service).PasteFromHTML,
	} {
		t.Run(name, func(t *testing.T) {
			cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypePlain, Data: "just **text**\n  kept"})
			cb.Fail(clipboard.OpRead, clipboard.ErrPermission)

			r := paste(newService(cb), context.Background())

			assert.Equal(t, "just **text**\n  kept", r.Text)
			assert.Equal(t, StatusDegraded, r.Status)
			assert.ErrorIs(t, r.Err, clipboard.ErrPermission)
			assert.Equal(t, 1, cb.Calls(clipboard.OpRead))
			assert.Equal(t, 1, cb.Calls(clipboard.OpReadText))
		})
	}
}

func TestPaste_Unavailable(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypePlain, Data: "x"})
	cb.Fail(clipboard.OpRead, clipboard.ErrUnsupported)
	cb.Fail(clipboard.OpReadText, clipboard.ErrPermission)
	s := newService(cb)
	ctx := context.Background()

	for _, r := range []Result{s.PasteMarkdown(ctx), s.PasteFromHTML(ctx), s.ReadPlainText(ctx)} {
		assert.Equal(t, StatusUnavailable, r.Status)
		assert.Empty(t, r.Text)
		assert.ErrorIs(t, r.Err, clipboard.ErrUnsupported)
		assert.ErrorIs(t, r.Err, clipboard.ErrPermission)
		assert.False(t, r.OK())
	}
	assert.Equal(t, 3, cb.Calls(clipboard.OpRead))
	assert.Equal(t, 3, cb.Calls(clipboard.OpReadText))

	_, err := s.Inspect(ctx)
	assert.Error(t, err)
}

func TestPaste_EmptyClipboard(t *testing.T) {
	r := newService(clipboard.NewMemory()).PasteMarkdown(context.Background())
	assert.Equal(t, StatusUnavailable, r.Status)
	assert.ErrorIs(t, r.Err, clipboard.ErrEmpty)
}

func TestPasteMarkdown_PrefersHTML(t *testing.T) {
	cb := clipboard.NewMemory(
		clipboard.Item{Type: clipboard.TypePlain, Data: "Header 1 Header 2"},
		clipboard.Item{Type: clipboard.TypeHTML, Data: `<p>Intro</p><table><tr><th>Header 1</th><th>Header 2</th></tr><tr><td>Cell 1</td><td>Cell 2</td></tr></table>`},
	)

	r := newService(cb).PasteMarkdown(context.Background())

	require.Equal(t, StatusOK, r.Status)
	assert.Equal(t, clipboard.TypeHTML, r.Source)
	assert.Equal(t, 1, r.Tables)
	assert.Equal(t, "Intro\n\n| Header 1 | Header 2 |\n| --- | --- |\n| Cell 1 | Cell 2 |", r.Text)
	assert.Equal(t, "noop", r.Formatter)
}

func TestPasteMarkdown_DefaultFormatter(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{
		Type: clipboard.TypeHTML,
		Data: `<p>See <a href="https://example.com/docs">the docs</a></p>` +
			`<table><tr><th>Header 1</th><th>Header 2</th></tr><tr><td>Cell 1</td><td>Cell 2</td></tr></table>`,
	})

	r := New(WithClipboard(cb)).PasteMarkdown(context.Background())

	require.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "markdown", r.Formatter)
	assert.Equal(t, 1, r.Tables)
	assert.Contains(t, r.Text, "See [the docs](https://example.com/docs)")
	assert.Contains(t, r.Text, "| Header 1 | Header 2 |\n|----------|----------|\n| Cell 1   | Cell 2   |")
	assert.NotContains(t, r.Text, "UNIQUE_TABLE_MARKER")
}

func TestPasteMarkdown_EmptyHTMLUsesPlainText(t *testing.T) {
	cb := clipboard.NewMemory(
		clipboard.Item{Type: clipboard.TypeHTML, Data: "<script>x()</script>"},
		clipboard.Item{Type: clipboard.TypePlain, Data: "fallback"},
	)

	r := newService(cb).PasteMarkdown(context.Background())
	assert.Equal(t, "fallback", r.Text)
	assert.Equal(t, clipboard.TypePlain, r.Source)
	assert.Equal(t, StatusDegraded, r.Status)
}

type failingFormatter struct{}

func (failingFormatter) Format(string) (string, error) { return "", errors.New("cannot parse") }
func (failingFormatter) Name() string                  { return "failing" }

func TestPasteMarkdown_FormatterFailureKeepsMarkdown(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypeHTML, Data: "<p>Some <b>bold</b></p>"})

	r := New(WithClipboard(cb), WithFormatter(failingFormatter{})).PasteMarkdown(context.Background())

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "Some **bold**", r.Text)
	assert.Empty(t, r.Formatter)
}

func TestPasteMarkdown_SelectsFormatter(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypeHTML, Data: "<h1>Title</h1><p>Body text</p>"})

	r := New(WithClipboard(cb)).PasteMarkdown(context.Background())

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "markdown", r.Formatter)
	assert.Contains(t, r.Text, "Title")
	assert.Contains(t, r.Text, "Body text")
}

func TestPasteMarkdown_DegradedConversion(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypeHTML, Data: "<p>Some <b>bold</b> text</p>"})
	conv := convert.New(convert.WithMaxInputBytes(4))

	r := newService(cb, WithConverter(conv)).PasteMarkdown(context.Background())

	assert.Equal(t, StatusDegraded, r.Status)
	assert.ErrorIs(t, r.Err, convert.ErrInputTooLarge)
	assert.Equal(t, "Some **bold** text", r.Text)
}

func TestReadPlainText(t *testing.T) {
	ctx := context.Background()

	cb := clipboard.NewMemory(
		clipboard.Item{Type: clipboard.TypeHTML, Data: "<b>rich</b>"},
		clipboard.Item{Type: clipboard.TypePlain, Data: "plain"},
	)
	r := newService(cb).ReadPlainText(ctx)
	assert.Equal(t, "plain", r.Text)
	assert.Equal(t, StatusOK, r.Status)

	cb = clipboard.NewMemory(clipboard.Item{Type: clipboard.TypeHTML, Data: "<h1>Title</h1><p>Some <b>bold</b> text</p>"})
	r = newService(cb).ReadPlainText(ctx)
	assert.Equal(t, "Title\nSome bold text", r.Text)
	assert.Equal(t, clipboard.TypeHTML, r.Source)
}

func TestCopyRichText(t *testing.T) {
	cb := clipboard.NewMemory()
	md := "# Title\n\n`code` and [link](https://example.com)"

	r := newService(cb).CopyRichText(context.Background(), md)
	require.Equal(t, StatusOK, r.Status)

	items := cb.Items()
	require.Len(t, items, 2)
	htmlData, ok := clipboard.Find(items, clipboard.TypeHTML)
	require.True(t, ok)
	assert.Contains(t, htmlData, `<h1 style="font-size: 2em;`)
	assert.Contains(t, htmlData, `<code style="font-family: Consolas`)
	assert.Contains(t, htmlData, `<a href="https://example.com" style="color: #0969da;`)

	plain, _ := clipboard.Find(items, clipboard.TypePlain)
	assert.Equal(t, md, plain)
}

func TestCopyRichText_FallsBackToText(t *testing.T) {
	cb := clipboard.NewMemory()
	cb.Fail(clipboard.OpWrite, clipboard.ErrUnsupported)

	r := newService(cb).CopyRichText(context.Background(), "**md**")

	assert.Equal(t, StatusDegraded, r.Status)
	assert.ErrorIs(t, r.Err, clipboard.ErrUnsupported)
	assert.Equal(t, []clipboard.Item{{Type: clipboard.TypePlain, Data: "**md**"}}, cb.Items())

	cb.Fail(clipboard.OpWriteText, clipboard.ErrPermission)
	r = newService(cb).CopyRichText(context.Background(), "**md**")
	assert.Equal(t, StatusUnavailable, r.Status)
	assert.ErrorIs(t, r.Err, clipboard.ErrPermission)
}

func TestCopyHTML(t *testing.T) {
	cb := clipboard.NewMemory()

	r := newService(cb).CopyHTML(context.Background(), "Some *text*")
	require.Equal(t, StatusOK, r.Status)

	htmlData, _ := clipboard.Find(cb.Items(), clipboard.TypeHTML)
	plain, _ := clipboard.Find(cb.Items(), clipboard.TypePlain)
	assert.Equal(t, htmlData, plain)
	assert.Contains(t, htmlData, "<em>")
	assert.NotContains(t, htmlData, "style=")
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypePlain, Data: "x"})
	s := newService(cb)

	assert.Equal(t, StatusUnavailable, s.PasteMarkdown(ctx).Status)
	assert.Equal(t, StatusUnavailable, s.CopyRichText(ctx, "x").Status)
	assert.Zero(t, cb.Calls(clipboard.OpRead))
}

func TestInspect(t *testing.T) {
	items := []clipboard.Item{{Type: clipboard.TypeHTML, Data: "<b>x</b>"}, {Type: clipboard.TypePlain, Data: "x"}}
	got, err := newService(clipboard.NewMemory(items...)).Inspect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "unavailable", StatusUnavailable.String())
	text, err := StatusDegraded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "degraded", string(text))
}

// replaceStage is a cleaner stage that rewrites one string.
type replaceStage struct{ from, to string }

func (r replaceStage) Clean(s string) (string, error) { return strings.ReplaceAll(s, r.from, r.to), nil }
func (r replaceStage) Name() string                  { return "replace" }

type failingStage struct{}

func (failingStage) Clean(string) (string, error) { return "", errors.New("boom") }
func (failingStage) Name() string                 { return "failing" }

func TestConvertHTML_DefaultPreprocessorIsNoop(t *testing.T) {
	s := newService(clipboard.NewMemory())
	assert.Equal(t, "noop", s.pre.Name())

	r := s.ConvertHTML(context.Background(), "<p><b>kept</b></p>")
	assert.Equal(t, "**kept**", r.Text)
}

func TestConvertHTML_PreprocessorsRunInOrder(t *testing.T) {
	s := newService(clipboard.NewMemory(), WithPreprocessors(
		replaceStage{"<nav>menu</nav>", ""},
		cleaner.NewNoop(),
		replaceStage{"draft", "final"},
	))
	assert.Equal(t, "chain(replace->noop->replace)", s.pre.Name())

	r := s.ConvertHTML(context.Background(), "<nav>menu</nav><p>draft text</p>")

	require.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "final text", r.Text)
}

func TestConvertHTML_PreprocessorFailureKeepsMarkup(t *testing.T) {
	for name, stage := range map[string]cleaner.Cleaner{
		"error": failingStage{},
		"empty": replaceStage{"<p>whole page</p>", ""},
	} {
		t.Run(name, func(t *testing.T) {
			s := newService(clipboard.NewMemory(), WithPreprocessors(stage))

			r := s.ConvertHTML(context.Background(), "<p>whole page</p>")

			assert.Equal(t, StatusOK, r.Status)
			assert.Equal(t, "whole page", r.Text)
		})
	}
}

func TestPaste_SkipsPreprocessors(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypeHTML, Data: "<p>draft</p>"})

	r := newService(cb, WithPreprocessors(replaceStage{"draft", "final"})).PasteMarkdown(context.Background())

	assert.Equal(t, "draft", r.Text)
}
