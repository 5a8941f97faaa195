package ffi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jmylchreest/mdclip/pkg/cleaner/normalize"
	"github.com/jmylchreest/mdclip/pkg/convert"
	"github.com/jmylchreest/mdclip/pkg/mdformat"
	"github.com/jmylchreest/mdclip/pkg/richtext"
)

// engine is shared by every converter created through the library so the
// rule set is built once per process.
var engine = convert.NewEngine()

// converters holds converters created by mdclip_engine_new.
var converters = &handleSet{
	items: make(map[int]*convert.Converter),
}

type handleSet struct {
	mu     sync.RWMutex
	items  map[int]*convert.Converter
	nextID int
}

func (h *handleSet) add(c *convert.Converter) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.items[h.nextID] = c
	return h.nextID
}

func (h *handleSet) get(id int) (*convert.Converter, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.items[id]
	if !ok {
		return nil, fmt.Errorf("invalid engine handle: %d", id)
	}
	return c, nil
}

func (h *handleSet) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.items, id)
}

// convertOptions is the JSON configuration accepted by mdclip_convert and
// mdclip_engine_new.
type convertOptions struct {
	Mode          string `json:"mode"`
	MaxInputBytes int64  `json:"max_input_bytes"`
}

func newConverter(optionsJSON string) (*convert.Converter, error) {
	var opts convertOptions
	if optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
	}

	var cfg *normalize.Config
	switch normalize.Mode(opts.Mode) {
	case normalize.ModeClean:
		cfg = normalize.PresetClean()
	case normalize.ModeDefault, "":
		cfg = normalize.DefaultConfig()
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}

	return convert.New(
		convert.WithEngine(engine),
		convert.WithNormalizer(cfg),
		convert.WithMaxInputBytes(opts.MaxInputBytes),
	), nil
}

// convertResponse is the JSON returned for a conversion.
type convertResponse struct {
	Markdown string              `json:"markdown"`
	Status   convert.Status      `json:"status"`
	Tables   int                 `json:"tables"`
	Warnings []normalize.Warning `json:"warnings,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func convertJSON(ctx context.Context, conv *convert.Converter, src string) (string, error) {
	r := conv.Convert(ctx, src)
	resp := convertResponse{
		Markdown: r.Markdown,
		Status:   r.Status,
		Tables:   r.Tables,
		Warnings: r.Warnings,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func plainText(src string) string {
	return normalize.Text(src)
}

var renderer = richtext.NewRenderer()

// render converts markdown to HTML. Mode "rich" (default) inlines the
// default stylesheet; "html" pretty-prints unstyled markup.
func render(markdown, mode string) (string, error) {
	switch mode {
	case "", "rich":
		return renderer.RenderStyled(markdown, richtext.DefaultStylesheet())
	case "html":
		out, err := renderer.Render(markdown)
		if err != nil {
			return "", err
		}
		return richtext.FormatHTML(out), nil
	}
	return "", fmt.Errorf("unknown render mode %q", mode)
}

func format(markdown string) (string, error) {
	return mdformat.Select(markdown).Format(markdown)
}
