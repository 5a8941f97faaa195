// Package convert turns pasted markup into clean markdown.
//
// The pipeline parses the markup, normalizes vendor noise away, lifts tables
// out as markdown, converts the rest with the generic engine, puts the tables
// back and tidies the result. Any failure degrades to converting the raw
// input with the engine alone; the caller always gets a Result.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/cleaner/normalize"
	"github.com/jmylchreest/mdclip/pkg/cleaner/tables"
	"github.com/jmylchreest/mdclip/pkg/cleaner/tidy"
	"github.com/jmylchreest/mdclip/pkg/markup"
)

// ErrInputTooLarge is reported when input exceeds the configured size limit.
var ErrInputTooLarge = errors.New("input exceeds size limit")

// Status describes how a conversion went.
type Status int

const (
	// StatusOK means the full pipeline ran.
	StatusOK Status = iota
	// StatusDegraded means the raw input went straight through the engine.
	StatusDegraded
	// StatusEmpty means there was nothing to convert or every path failed.
	StatusEmpty
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusEmpty:
		return "empty"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of one conversion.
type Result struct {
	Markdown string `json:"markdown" yaml:"markdown"`
	Status   Status `json:"status" yaml:"status"`

	// Tables is the number of tables extracted and reinserted.
	Tables int `json:"tables" yaml:"tables"`

	// MissingMarkers counts tables whose marker the engine did not emit.
	MissingMarkers int `json:"missing_markers,omitempty" yaml:"missing_markers,omitempty"`

	Stats    *normalize.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Warnings []normalize.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration time.Duration       `json:"duration_ms" yaml:"duration_ms"`

	// Err records why the pipeline degraded or came up empty.
	Err error `json:"-" yaml:"-"`
}

// Option configures a Converter.
type Option func(*Converter)

// WithEngine shares an existing engine handle.
func WithEngine(e *Engine) Option {
	return func(c *Converter) {
		c.engine = e
	}
}

// WithNormalizer sets the normalizer configuration.
func WithNormalizer(cfg *normalize.Config) Option {
	return func(c *Converter) {
		c.normConfig = cfg
	}
}

// WithExtractor sets the table extractor.
func WithExtractor(e *tables.Extractor) Option {
	return func(c *Converter) {
		c.extractor = e
	}
}

// WithMaxInputBytes limits the markup size the full pipeline accepts.
// Larger input goes straight to the engine. Zero means no limit.
func WithMaxInputBytes(n int64) Option {
	return func(c *Converter) {
		c.maxInput = n
	}
}

// Converter runs the paste pipeline. It implements the cleaner.Cleaner
// interface and is safe for concurrent use.
type Converter struct {
	engine     *Engine
	normConfig *normalize.Config
	extractor  *tables.Extractor
	maxInput   int64
}

// New creates a Converter. Without WithEngine a private engine is created.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = NewEngine()
	}
	if c.normConfig == nil {
		c.normConfig = normalize.DefaultConfig()
	}
	if c.extractor == nil {
		c.extractor = tables.NewExtractor()
	}
	return c
}

// Engine returns the engine handle in use.
func (c *Converter) Engine() *Engine {
	return c.engine
}

// Name returns the cleaner name for logging.
func (c *Converter) Name() string {
	return "mdclip"
}

// Clean converts markup to markdown. It returns an error only when nothing
// could be produced from non-empty input.
func (c *Converter) Clean(content string) (string, error) {
	r := c.Convert(context.Background(), content)
	if r.Status == StatusEmpty && r.Err != nil {
		return "", r.Err
	}
	return r.Markdown, nil
}

// Convert runs the full pipeline on src.
func (c *Converter) Convert(ctx context.Context, src string) *Result {
	start := time.Now()
	result := c.convert(ctx, src)
	result.Duration = time.Since(start)
	return result
}

func (c *Converter) convert(ctx context.Context, src string) *Result {
	if strings.TrimSpace(src) == "" {
		return &Result{Status: StatusEmpty}
	}
	if err := ctx.Err(); err != nil {
		return &Result{Status: StatusEmpty, Err: err}
	}
	if c.maxInput > 0 && int64(len(src)) > c.maxInput {
		err := fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(src), c.maxInput)
		logger.WarnContext(ctx, "markup too large for full pipeline, converting raw", "bytes", len(src), "limit", c.maxInput)
		return c.raw(src, err)
	}

	result, err := c.pipeline(src)
	if err != nil {
		logger.WarnContext(ctx, "paste pipeline failed, converting raw markup", "error", err)
		return c.raw(src, err)
	}
	logger.DebugContext(ctx, "converted markup",
		"input_bytes", len(src),
		"output_bytes", len(result.Markdown),
		"tables", result.Tables,
		"style_conversions", result.Stats.StyleConversions,
	)
	return result
}

// pipeline runs normalize, extract, engine, reinsert and tidy. A panic in
// any stage is returned as an error.
func (c *Converter) pipeline(src string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	doc, err := markup.Parse(src)
	if err != nil {
		return nil, err
	}

	norm := normalize.New(c.normConfig).Normalize(doc)
	extracted := c.extractor.Extract(norm.Root)

	body, err := markup.RenderChildren(norm.Root)
	if err != nil {
		return nil, err
	}

	md, err := c.engine.ConvertString(body)
	if err != nil {
		return nil, err
	}

	md, missing := tables.Reinsert(md, extracted)
	result = &Result{
		Markdown:       tidy.Markdown(md),
		Status:         StatusOK,
		Tables:         len(extracted) - missing,
		MissingMarkers: missing,
		Stats:          norm.Stats,
		Warnings:       norm.Warnings,
	}
	if result.Markdown == "" {
		result.Status = StatusEmpty
	}
	if missing > 0 {
		result.Warnings = append(result.Warnings, normalize.Warning{
			Phase:   "reinsert",
			Message: "table markers missing from engine output",
			Context: fmt.Sprintf("%d of %d", missing, len(extracted)),
		})
	}
	return result, nil
}

// raw converts src with the engine alone.
func (c *Converter) raw(src string, cause error) *Result {
	md, err := c.safeEngine(src)
	if err != nil {
		logger.Error("raw markup conversion failed", "error", err, "cause", cause)
		return &Result{Status: StatusEmpty, Err: errors.Join(cause, err)}
	}
	return &Result{
		Markdown: tidy.Markdown(tables.Strip(md)),
		Status:   StatusDegraded,
		Err:      cause,
	}
}

func (c *Converter) safeEngine(src string) (md string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return c.engine.ConvertString(src)
}
