package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmylchreest/mdclip/pkg/markup"
)

// Stats captures metrics about what the normalizer did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Element counts
	ElementsRemoved map[string]int `json:"elements_removed" yaml:"elements_removed"` // tag -> count
	ElementsKept    int            `json:"elements_kept" yaml:"elements_kept"`
	CommentsRemoved int            `json:"comments_removed" yaml:"comments_removed"`

	// Attribute cleaning
	AttributesRemoved int `json:"attributes_removed" yaml:"attributes_removed"`

	// Selector matches
	SelectorMatches map[string]int `json:"selector_matches" yaml:"selector_matches"` // selector -> count

	// Rewrites
	VendorStrips      int `json:"vendor_strips" yaml:"vendor_strips"`
	NamespacedUnwraps int `json:"namespaced_unwraps" yaml:"namespaced_unwraps"`
	StyleConversions  int `json:"style_conversions" yaml:"style_conversions"`
	EmptyFormatUnwrap int `json:"empty_format_unwraps" yaml:"empty_format_unwraps"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ms" yaml:"parse_duration_ms"`
	TransformDuration time.Duration `json:"transform_duration_ms" yaml:"transform_duration_ms"`
	OutputDuration    time.Duration `json:"output_duration_ms" yaml:"output_duration_ms"`
	TotalDuration     time.Duration `json:"total_duration_ms" yaml:"total_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		SelectorMatches: make(map[string]int),
	}
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// RecordSelectorMatch records that a selector matched elements.
func (s *Stats) RecordSelectorMatch(selector string, count int) {
	s.SelectorMatches[selector] += count
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Size: %d -> %d bytes\n", s.InputBytes, s.OutputBytes)
	fmt.Fprintf(&sb, "Elements: %d removed, %d kept\n", s.TotalElementsRemoved(), s.ElementsKept)

	if len(s.ElementsRemoved) > 0 {
		tags := make([]string, 0, len(s.ElementsRemoved))
		for tag := range s.ElementsRemoved {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
		}
		sb.WriteString("Removed by tag: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.CommentsRemoved > 0 {
		fmt.Fprintf(&sb, "Comments removed: %d\n", s.CommentsRemoved)
	}
	if s.AttributesRemoved > 0 {
		fmt.Fprintf(&sb, "Attributes removed: %d\n", s.AttributesRemoved)
	}
	if s.VendorStrips > 0 || s.NamespacedUnwraps > 0 {
		fmt.Fprintf(&sb, "Vendor markup: %d stripped, %d namespaced unwrapped\n",
			s.VendorStrips, s.NamespacedUnwraps)
	}
	if s.StyleConversions > 0 {
		fmt.Fprintf(&sb, "Style conversions: %d\n", s.StyleConversions)
	}
	if s.EmptyFormatUnwrap > 0 {
		fmt.Fprintf(&sb, "Empty formatting unwrapped: %d\n", s.EmptyFormatUnwrap)
	}

	fmt.Fprintf(&sb, "Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during normalization.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "parse", "transform", "output"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"` // Element or selector that caused issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a normalization.
type Result struct {
	// Content is the normalized markup. Only set by CleanWithStats; on parse
	// errors it holds the original input.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Root is the node whose children should be converted. It is the body,
	// or the html element when the body ended up without content.
	Root *markup.Node `json:"-" yaml:"-"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
