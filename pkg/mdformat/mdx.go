package mdformat

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// jsxOpen matches a line opening a capitalised JSX element.
	jsxOpen = regexp.MustCompile(`^\s*<([A-Z][A-Za-z0-9_.]*)`)

	// jsxTag finds a capitalised JSX tag anywhere in a line.
	jsxTag = regexp.MustCompile(`<[A-Z][A-Za-z0-9_.]*[\s/>]`)

	// expression finds a {…} expression.
	expression = regexp.MustCompile(`\{[^{}\n]+\}`)

	// codeSpan matches inline code spans.
	codeSpan = regexp.MustCompile("`+[^`\n]*`+")
)

// IsMDX reports whether src uses MDX syntax outside code: an import or
// export statement, a capitalised JSX tag or a {expression}.
func IsMDX(src string) bool {
	var fence string
	for _, line := range strings.Split(src, "\n") {
		if f, ok := fenceMarker(line); ok {
			switch {
			case fence == "":
				fence = f
			case strings.HasPrefix(f, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		if isStatement(line) {
			return true
		}
		text := codeSpan.ReplaceAllString(line, "")
		if jsxTag.MatchString(text) || expression.MatchString(text) {
			return true
		}
	}
	return false
}

// MDX formats MDX sources, leaving MDX-only segments untouched.
type MDX struct {
	markdown Formatter
}

// NewMDX creates an MDX formatter that formats markdown segments with
// markdownfmt.
func NewMDX() *MDX {
	return &MDX{markdown: NewMarkdown()}
}

// Name returns the formatter type.
func (m *MDX) Name() string {
	return "mdx"
}

// Format formats the markdown segments of src.
func (m *MDX) Format(src string) (string, error) {
	segments, err := splitMDX(src)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := seg.text
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !seg.verbatim {
			text, err = m.markdown.Format(text)
			if err != nil {
				return "", err
			}
		}
		parts = append(parts, strings.Trim(text, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

type segment struct {
	text     string
	verbatim bool
}

// splitMDX cuts src into alternating markdown and MDX-only segments.
func splitMDX(src string) ([]segment, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var (
		segments []segment
		current  []string
		fence    string
	)
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, segment{text: strings.Join(current, "\n")})
			current = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if f, ok := fenceMarker(line); ok {
			switch {
			case fence == "":
				fence = f
			case strings.HasPrefix(f, fence):
				fence = ""
			}
			current = append(current, line)
			continue
		}
		if fence != "" {
			current = append(current, line)
			continue
		}

		var end int
		switch {
		case isStatement(line):
			end = statementEnd(lines, i)
		case jsxOpen.MatchString(line):
			var err error
			end, err = jsxEnd(lines, i)
			if err != nil {
				return nil, err
			}
		case isExpressionLine(line):
			end = i
		default:
			current = append(current, line)
			continue
		}

		flush()
		segments = append(segments, segment{text: strings.Join(lines[i:end+1], "\n"), verbatim: true})
		i = end
	}
	flush()
	return segments, nil
}

func isStatement(line string) bool {
	return strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "export ")
}

func isExpressionLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")
}

// statementEnd returns the last line of the statement block starting at i,
// which runs until a blank line.
func statementEnd(lines []string, i int) int {
	for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
		i++
	}
	return i
}

// jsxEnd returns the line closing the JSX element opened at line i.
func jsxEnd(lines []string, i int) (int, error) {
	name := jsxOpen.FindStringSubmatch(lines[i])[1]
	open := regexp.MustCompile(`<` + regexp.QuoteMeta(name) + `(\s[^>]*?)?(/?)>`)
	closing := "</" + name + ">"

	depth := 0
	for j := i; j < len(lines); j++ {
		for _, m := range open.FindAllStringSubmatch(lines[j], -1) {
			if m[2] != "/" {
				depth++
			}
		}
		depth -= strings.Count(lines[j], closing)
		if depth <= 0 {
			return j, nil
		}
	}
	return 0, fmt.Errorf("%w: <%s> opened on line %d", ErrUnbalancedMDX, name, i+1)
}

// fenceMarker reports whether line opens or closes a code fence and
// returns the fence characters.
func fenceMarker(line string) (string, bool) {
	t := strings.TrimLeft(line, " ")
	if len(line)-len(t) > 3 {
		return "", false
	}
	for _, ch := range []string{"`", "~"} {
		n := 0
		for n < len(t) && t[n:n+1] == ch {
			n++
		}
		if n >= 3 {
			return t[:n], true
		}
	}
	return "", false
}
