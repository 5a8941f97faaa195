package markup

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// StyleDeclarations parses an inline style attribute. Property names are
// lower-cased and values trimmed; declarations without a value are dropped.
func StyleDeclarations(style string) ([]*css.Declaration, error) {
	style = strings.TrimRight(strings.TrimSpace(style), "; \t\r\n")
	if style == "" {
		return nil, nil
	}
	// The declaration parser only keeps the last value when it is terminated.
	decls, err := parser.ParseDeclarations(style + ";")
	if err != nil {
		return nil, err
	}
	out := decls[:0]
	for _, d := range decls {
		d.Property = strings.ToLower(strings.TrimSpace(d.Property))
		d.Value = strings.TrimSpace(d.Value)
		if d.Property == "" || d.Value == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
