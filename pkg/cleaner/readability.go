package cleaner

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/markup"
)

// OutputFormat selects what the Readability cleaner returns.
type OutputFormat int

const (
	// OutputHTML returns the article markup, ready for the paste pipeline.
	OutputHTML OutputFormat = iota
	// OutputText returns the article as plain text.
	OutputText
)

// ReadabilityConfig configures the Readability cleaner.
type ReadabilityConfig struct {
	Output OutputFormat
	// MaxElemsToParse limits the number of nodes to parse (0 = no limit).
	MaxElemsToParse int
	// CharThreshold is the minimum character count for an article (default: 500).
	CharThreshold int
	// KeepClasses keeps class attributes; the paste pipeline strips vendor
	// classes anyway.
	KeepClasses bool
	// BaseURL resolves relative links and images. If empty, URLs remain relative.
	BaseURL string
}

// ReadabilityCleaner reduces a web page to its main article with
// go-readability. Pages with no detectable article pass through unchanged.
type ReadabilityCleaner struct {
	cfg     ReadabilityConfig
	baseURL *url.URL
	parser  readability.Parser
}

// NewReadability creates a new Readability cleaner.
// Pass nil for default configuration.
func NewReadability(cfg *ReadabilityConfig) *ReadabilityCleaner {
	if cfg == nil {
		cfg = &ReadabilityConfig{}
	}

	parser := readability.NewParser()
	if cfg.MaxElemsToParse > 0 {
		parser.MaxElemsToParse = cfg.MaxElemsToParse
	}
	if cfg.CharThreshold > 0 {
		parser.CharThresholds = cfg.CharThreshold
	}
	parser.KeepClasses = cfg.KeepClasses

	c := &ReadabilityCleaner{cfg: *cfg, parser: parser}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			logger.Warn("ignoring invalid base url", "url", cfg.BaseURL, "error", err)
		} else {
			c.baseURL = u
		}
	}
	return c
}

// Clean extracts the main article from a page.
func (c *ReadabilityCleaner) Clean(page string) (string, error) {
	article, err := c.parser.Parse(strings.NewReader(page), c.baseURL)
	if err != nil {
		return "", fmt.Errorf("readability parse: %w", err)
	}
	if article.Node == nil {
		logger.Debug("no article found, keeping full page")
		return page, nil
	}

	var buf bytes.Buffer
	switch c.cfg.Output {
	case OutputText:
		if err := article.RenderText(&buf); err != nil {
			return "", fmt.Errorf("readability text: %w", err)
		}
	default:
		if err := article.RenderHTML(&buf); err != nil {
			rendered, rerr := markup.Render(article.Node)
			if rerr != nil {
				return "", fmt.Errorf("readability html: %w", err)
			}
			buf.Reset()
			buf.WriteString(rendered)
		}
	}

	if strings.TrimSpace(buf.String()) == "" {
		return page, nil
	}
	logger.Debug("article extracted", "input_bytes", len(page), "output_bytes", buf.Len())
	return buf.String(), nil
}

// Name returns the cleaner type.
func (c *ReadabilityCleaner) Name() string {
	return "readability"
}
