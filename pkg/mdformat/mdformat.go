// Package mdformat normalizes markdown source layout.
//
// Plain markdown goes through markdownfmt. MDX documents are split so that
// import/export statements, JSX blocks and expression lines are kept
// verbatim while the markdown between them is formatted.
package mdformat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shurcooL/markdownfmt/markdown"
)

// ErrUnbalancedMDX is returned when a JSX block is never closed.
var ErrUnbalancedMDX = errors.New("unbalanced MDX block")

// Formatter rewrites markdown source into a canonical layout.
type Formatter interface {
	Format(src string) (string, error)
	Name() string
}

// Markdown formats plain markdown with markdownfmt.
type Markdown struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Format formats src.
func (m *Markdown) Format(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	out, err := markdown.Process("", []byte(src), nil)
	if err != nil {
		return "", fmt.Errorf("format markdown: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// Name returns the formatter type.
func (m *Markdown) Name() string {
	return "markdown"
}

// Noop returns its input unchanged.
type Noop struct{}

// NewNoop creates a Noop formatter.
func NewNoop() *Noop {
	return &Noop{}
}

// Format returns src.
func (n *Noop) Format(src string) (string, error) {
	return src, nil
}

// Name returns the formatter type.
func (n *Noop) Name() string {
	return "noop"
}

// Select returns the MDX formatter for MDX sources and the markdown
// formatter otherwise.
func Select(src string) Formatter {
	if IsMDX(src) {
		return NewMDX()
	}
	return NewMarkdown()
}
