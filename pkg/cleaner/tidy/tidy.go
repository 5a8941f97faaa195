// Package tidy cleans up markdown produced by the conversion engine.
//
// Pasted markup often carries formatting elements that wrap nothing but
// whitespace. After conversion these show up as empty emphasis pairs such as
// "** **" or as lines holding a lone "**" or "****". The engine writes
// horizontal rules as "* * *", so lines built only from "**" and "__" pairs
// are never treated as thematic breaks. Markdown removes them together
// with non-breaking spaces, trailing whitespace and runs of blank lines.
package tidy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxPasses = 8

var (
	newlineRunRegex = regexp.MustCompile(`\n{3,}`)

	// emptyPairRegex matches emphasis markers that enclose nothing.
	emptyPairRegex = regexp.MustCompile(`\*\* \*\*|__ __|\*\*\*\*|____|\* \*|_ _`)

	// markerLineRegex matches lines holding only an emphasis or code marker.
	markerLineRegex = regexp.MustCompile("^[ \t]*(\\*\\*|__|~~|``?)[ \t]*$")

	// pairLineRegex matches lines made only of "**" and "__" pairs, such as
	// "****" or "** **". They are emptied emphasis, not thematic breaks.
	pairLineRegex = regexp.MustCompile(`^[ \t]*(\*\*|__)([ \t]*(\*\*|__))*[ \t]*$`)

	// thematicBreakRegex matches "***", "* * *", "___" and similar lines.
	thematicBreakRegex = regexp.MustCompile(`^[ \t]*([*_-])([ \t]*([*_-]))*[ \t]*$`)

	fenceRegex = regexp.MustCompile("^[ \t]*(```|~~~)")
)

// Markdown returns md with empty formatting removed and whitespace normalized.
// It is idempotent: Markdown(Markdown(s)) == Markdown(s).
func Markdown(md string) string {
	md = strings.ReplaceAll(md, "\u00a0", " ")
	md = strings.ReplaceAll(md, "\r\n", "\n")

	for i := 0; i < maxPasses; i++ {
		next := pass(md)
		if next == md {
			break
		}
		md = next
	}
	return md
}

// WithTrailingNewline returns md ending in exactly one newline, as expected
// by files on disk. Empty input stays empty.
func WithTrailingNewline(md string) string {
	md = strings.TrimRight(md, "\n")
	if md == "" {
		return ""
	}
	return md + "\n"
}

func pass(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	inFence := false

	for _, line := range lines {
		if fenceRegex.MatchString(line) {
			inFence = !inFence
			out = append(out, strings.TrimRight(line, " \t"))
			continue
		}
		if inFence {
			out = append(out, strings.TrimRight(line, " \t"))
			continue
		}
		if markerLineRegex.MatchString(line) || pairLineRegex.MatchString(line) {
			continue
		}
		if !isThematicBreak(line) {
			line = removeEmptyPairs(line)
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}

	md = strings.Join(out, "\n")
	md = newlineRunRegex.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md)
}

// isThematicBreak reports whether line is made of at least three identical
// break characters and optional spaces.
func isThematicBreak(line string) bool {
	if !thematicBreakRegex.MatchString(line) {
		return false
	}
	var ch rune
	n := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			continue
		}
		if ch == 0 {
			ch = r
		} else if r != ch {
			return false
		}
		n++
	}
	return n >= 3
}

// removeEmptyPairs deletes empty emphasis pairs that stand on their own:
// not glued to word characters or other markers and not inside a code span.
func removeEmptyPairs(line string) string {
	for {
		changed := false
		for _, loc := range emptyPairRegex.FindAllStringIndex(line, -1) {
			if !standsAlone(line, loc[0], loc[1]) || inCodeSpan(line, loc[0]) {
				continue
			}
			before, after := line[:loc[0]], line[loc[1]:]
			if strings.HasSuffix(before, " ") && strings.HasPrefix(after, " ") {
				after = after[1:]
			}
			line = before + after
			changed = true
			break
		}
		if !changed {
			return line
		}
	}
}

func standsAlone(line string, start, end int) bool {
	if start > 0 && isGlue(rune(line[start-1])) {
		return false
	}
	if end < len(line) && isGlue(rune(line[end])) {
		return false
	}
	return true
}

func isGlue(r rune) bool {
	return r == '*' || r == '_' || r == '\\' || unicode.IsLetter(r) || unicode.IsDigit(r) || r >= utf8.RuneSelf
}

// inCodeSpan reports whether position i falls after an odd number of
// backticks on the line.
func inCodeSpan(line string, i int) bool {
	return strings.Count(line[:i], "`")%2 == 1
}
