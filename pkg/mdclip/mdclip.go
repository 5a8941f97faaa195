// Package mdclip moves content between markdown and the system clipboard.
//
// Copy paths render markdown to HTML and write it together with the
// markdown source. Paste paths read the richest representation available,
// convert HTML to markdown and format the result. Every read goes through
// the same chain: one structured read, then one plain text read, then an
// unavailable result.
package mdclip

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/cleaner"
	"github.com/jmylchreest/mdclip/pkg/cleaner/normalize"
	"github.com/jmylchreest/mdclip/pkg/clipboard"
	"github.com/jmylchreest/mdclip/pkg/convert"
	"github.com/jmylchreest/mdclip/pkg/mdformat"
	"github.com/jmylchreest/mdclip/pkg/richtext"
)

// looksLikeTag finds an opening or closing element tag.
var looksLikeTag = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9:-]*(\s[^<>]*)?/?>`)

// LooksLikeHTML reports whether plain text is probably markup: it starts
// with '<' and contains an element tag.
func LooksLikeHTML(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "<") && looksLikeTag.MatchString(s)
}

// Option configures a Service.
type Option func(*Service)

// WithClipboard sets the clipboard. The default is the system clipboard.
func WithClipboard(cb clipboard.Clipboard) Option {
	return func(s *Service) {
		s.clipboard = cb
	}
}

// WithConverter sets the paste pipeline.
func WithConverter(c *convert.Converter) Option {
	return func(s *Service) {
		s.converter = c
	}
}

// WithPreprocessors runs cleaner stages, in order, over markup handed to
// ConvertHTML before the paste pipeline sees it. Clipboard pastes skip them.
func WithPreprocessors(stages ...cleaner.Cleaner) Option {
	return func(s *Service) {
		if len(stages) > 0 {
			s.pre = cleaner.NewChain(stages...)
		}
	}
}

// WithRenderer sets the markdown renderer used on copy.
func WithRenderer(r *richtext.Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// WithStylesheet sets the inline styles used on rich copy.
func WithStylesheet(sheet richtext.Stylesheet) Option {
	return func(s *Service) {
		s.sheet = sheet
	}
}

// WithFormatter forces a markdown formatter. Without it the formatter is
// picked per paste with mdformat.Select.
func WithFormatter(f mdformat.Formatter) Option {
	return func(s *Service) {
		s.formatter = f
	}
}

// Service mediates every clipboard interaction. It is safe for concurrent
// use when its clipboard is.
type Service struct {
	clipboard clipboard.Clipboard
	converter *convert.Converter
	renderer  *richtext.Renderer
	sheet     richtext.Stylesheet
	formatter mdformat.Formatter
	pre       cleaner.Cleaner
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.clipboard == nil {
		s.clipboard = clipboard.NewSystem()
	}
	if s.converter == nil {
		s.converter = convert.New()
	}
	if s.renderer == nil {
		s.renderer = richtext.NewRenderer()
	}
	if s.sheet == nil {
		s.sheet = richtext.DefaultStylesheet()
	}
	if s.pre == nil {
		s.pre = cleaner.NewNoop()
	}
	return s
}

// Clipboard returns the clipboard in use.
func (s *Service) Clipboard() clipboard.Clipboard {
	return s.clipboard
}

// Converter returns the paste pipeline in use.
func (s *Service) Converter() *convert.Converter {
	return s.converter
}

// CopyRichText renders markdown as styled HTML and writes it alongside the
// markdown source. If that write fails only the markdown is written.
func (s *Service) CopyRichText(ctx context.Context, markdown string) Result {
	result := Result{Mode: ModeCopyRich}

	styled, err := s.renderer.RenderStyled(markdown, s.sheet)
	if err == nil {
		err = s.write(ctx, clipboard.Item{Type: clipboard.TypeHTML, Data: styled}, clipboard.Item{Type: clipboard.TypePlain, Data: markdown})
		if err == nil {
			result.Text = styled
			result.Source = clipboard.TypeHTML
			return result
		}
	}
	logger.WarnContext(ctx, "rich copy failed, writing plain text", "error", err)
	return s.writeTextFallback(ctx, result, markdown, err)
}

// CopyHTML renders markdown to formatted HTML and writes the markup as both
// the HTML and plain text representations.
func (s *Service) CopyHTML(ctx context.Context, markdown string) Result {
	result := Result{Mode: ModeCopyHTML}

	rendered, err := s.renderer.Render(markdown)
	if err != nil {
		logger.WarnContext(ctx, "render failed, writing plain text", "error", err)
		return s.writeTextFallback(ctx, result, markdown, err)
	}
	formatted := richtext.FormatHTML(rendered)

	err = s.write(ctx, clipboard.Item{Type: clipboard.TypeHTML, Data: formatted}, clipboard.Item{Type: clipboard.TypePlain, Data: formatted})
	if err != nil {
		logger.WarnContext(ctx, "html copy failed, writing plain text", "error", err)
		return s.writeTextFallback(ctx, result, formatted, err)
	}
	result.Text = formatted
	result.Source = clipboard.TypeHTML
	return result
}

func (s *Service) write(ctx context.Context, items ...clipboard.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clipboard.Write(ctx, items...)
}

func (s *Service) writeTextFallback(ctx context.Context, result Result, text string, cause error) Result {
	if err := ctx.Err(); err != nil {
		result.Status = StatusUnavailable
		result.Err = err
		return result
	}
	if err := s.clipboard.WriteText(ctx, text); err != nil {
		logger.ErrorContext(ctx, "plain text copy failed", "error", err)
		result.Status = StatusUnavailable
		result.Err = errors.Join(cause, err)
		return result
	}
	result.Text = text
	result.Source = clipboard.TypePlain
	result.Status = StatusDegraded
	result.Err = cause
	return result
}

// PasteMarkdown reads the clipboard and returns markdown. HTML is converted
// and formatted; plain text is returned unchanged.
func (s *Service) PasteMarkdown(ctx context.Context) Result {
	return s.paste(ctx, ModePasteMarkdown, false)
}

// PasteFromHTML is PasteMarkdown, except that plain text which looks like
// markup is converted as HTML.
func (s *Service) PasteFromHTML(ctx context.Context) Result {
	return s.paste(ctx, ModePasteHTML, true)
}

func (s *Service) paste(ctx context.Context, mode Mode, sniff bool) Result {
	items, readErr := s.read(ctx)
	if items == nil {
		return Result{Mode: mode, Status: StatusUnavailable, Err: readErr}
	}

	htmlData, hasHTML := clipboard.Find(items, clipboard.TypeHTML)
	plain, hasPlain := clipboard.Find(items, clipboard.TypePlain)

	source := clipboard.TypeHTML
	if !hasHTML || strings.TrimSpace(htmlData) == "" {
		hasHTML = false
		if sniff && hasPlain && LooksLikeHTML(plain) {
			htmlData, hasHTML = plain, true
			source = clipboard.TypePlain
		}
	}

	if hasHTML {
		result := s.convertHTML(ctx, htmlData, mode)
		result.Source = source
		if result.OK() {
			if readErr != nil {
				result.Status = StatusDegraded
				result.Err = readErr
			}
			return result
		}
		if !hasPlain || source == clipboard.TypePlain {
			return result
		}
		logger.WarnContext(ctx, "html paste produced nothing, using plain text", "error", result.Err)
		readErr = errors.Join(readErr, result.Err)
	}

	if !hasPlain {
		return Result{Mode: mode, Status: StatusUnavailable, Err: clipboard.ErrEmpty}
	}
	result := Result{Text: plain, Mode: mode, Source: clipboard.TypePlain}
	if readErr != nil {
		result.Status = StatusDegraded
		result.Err = readErr
	}
	return result
}

// ConvertHTML runs the preprocessors, the paste pipeline and the formatter
// on markup without touching the clipboard. A failing or empty
// preprocessor result leaves the markup as given.
func (s *Service) ConvertHTML(ctx context.Context, src string) Result {
	out, err := s.pre.Clean(src)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "preprocessing failed, converting full markup", "stages", s.pre.Name(), "error", err)
	case strings.TrimSpace(out) == "":
		logger.DebugContext(ctx, "preprocessing left nothing, converting full markup", "stages", s.pre.Name())
	default:
		src = out
	}
	return s.convertHTML(ctx, src, ModeConvert)
}

func (s *Service) convertHTML(ctx context.Context, src string, mode Mode) Result {
	conv := s.converter.Convert(ctx, src)
	result := Result{
		Mode:     mode,
		Tables:   conv.Tables,
		Stats:    conv.Stats,
		Warnings: conv.Warnings,
		Err:      conv.Err,
	}

	switch conv.Status {
	case convert.StatusEmpty:
		result.Status = StatusUnavailable
		if result.Err == nil {
			result.Err = clipboard.ErrEmpty
		}
		return result
	case convert.StatusDegraded:
		result.Status = StatusDegraded
	}

	result.Text, result.Formatter = s.format(ctx, conv.Markdown)
	return result
}

// format applies the configured or selected formatter. A formatter error
// leaves the markdown unformatted.
func (s *Service) format(ctx context.Context, md string) (string, string) {
	f := s.formatter
	if f == nil {
		f = mdformat.Select(md)
	}
	out, err := f.Format(md)
	if err != nil {
		logger.WarnContext(ctx, "formatter failed, keeping unformatted markdown", "formatter", f.Name(), "error", err)
		return md, ""
	}
	return out, f.Name()
}

// ReadPlainText returns the clipboard as plain text. HTML is reduced to its
// text content when no plain text representation exists.
func (s *Service) ReadPlainText(ctx context.Context) Result {
	result := Result{Mode: ModePlainText}

	items, readErr := s.read(ctx)
	if items == nil {
		result.Status = StatusUnavailable
		result.Err = readErr
		return result
	}
	if readErr != nil {
		result.Status = StatusDegraded
		result.Err = readErr
	}

	if plain, ok := clipboard.Find(items, clipboard.TypePlain); ok {
		result.Text = plain
		result.Source = clipboard.TypePlain
		return result
	}
	if htmlData, ok := clipboard.Find(items, clipboard.TypeHTML); ok {
		result.Text = normalize.Text(htmlData)
		result.Source = clipboard.TypeHTML
		return result
	}
	result.Status = StatusUnavailable
	result.Err = clipboard.ErrEmpty
	return result
}

// Inspect lists the representations currently on the clipboard.
func (s *Service) Inspect(ctx context.Context) ([]clipboard.Item, error) {
	items, err := s.read(ctx)
	if items == nil {
		return nil, err
	}
	return items, nil
}

// read tries the structured read once and the plain text read once. It
// returns nil items when both fail. A non-nil error with items means the
// structured read failed and the text read was used.
func (s *Service) read(ctx context.Context) ([]clipboard.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.clipboard.Read(ctx)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err == nil {
		err = clipboard.ErrEmpty
	}
	logger.DebugContext(ctx, "structured clipboard read failed, trying plain text", "error", err)

	if cerr := ctx.Err(); cerr != nil {
		return nil, errors.Join(err, cerr)
	}
	text, terr := s.clipboard.ReadText(ctx)
	if terr != nil {
		logger.WarnContext(ctx, "clipboard unavailable", "error", terr)
		return nil, errors.Join(err, terr)
	}
	return []clipboard.Item{{Type: clipboard.TypePlain, Data: text}}, err
}
