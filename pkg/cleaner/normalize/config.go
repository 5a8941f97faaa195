// Package normalize rewrites pasted markup into plain semantic HTML.
// It removes non-content elements, strips vendor styling left behind by word
// processors and browser document editors, and turns inline styles that fake
// emphasis into real emphasis elements.
package normalize

// Mode selects how aggressively attributes are stripped.
type Mode string

const (
	// ModeDefault keeps structural attributes and drops scripting and styling noise.
	ModeDefault Mode = "default"

	// ModeClean keeps only href on links and src/alt/title on images.
	ModeClean Mode = "clean"
)

// Config defines all configuration options for the normalizer.
type Config struct {
	// Mode selects the attribute policy applied after semantic conversion.
	Mode Mode `json:"mode" mapstructure:"mode"`

	// === Removal Options ===

	// RemoveTags are removed together with their content.
	RemoveTags []string `json:"remove_tags" mapstructure:"remove_tags"`

	// StripComments removes HTML comments.
	StripComments bool `json:"strip_comments" mapstructure:"strip_comments"`

	// RemoveSelectors is a list of CSS selectors to always remove.
	RemoveSelectors []string `json:"remove_selectors" mapstructure:"remove_selectors"`

	// === Vendor markup ===

	// VendorClassPrefixes mark classes emitted by office suites and mail clients.
	VendorClassPrefixes []string `json:"vendor_class_prefixes" mapstructure:"vendor_class_prefixes"`

	// VendorStylePrefixes mark inline style properties that only vendors emit.
	VendorStylePrefixes []string `json:"vendor_style_prefixes" mapstructure:"vendor_style_prefixes"`

	// UnwrapNamespaced replaces namespaced elements such as <o:p> with their content.
	UnwrapNamespaced bool `json:"unwrap_namespaced" mapstructure:"unwrap_namespaced"`

	// UnwrapDocsWrapper unwraps the <b id="docs-internal-guid-..."> element
	// Google Docs puts around every copied fragment.
	UnwrapDocsWrapper bool `json:"unwrap_docs_wrapper" mapstructure:"unwrap_docs_wrapper"`

	// === Semantics ===

	// ConvertStyles turns bold, italic and line-through inline styles on
	// span and font elements into strong, em and del.
	ConvertStyles bool `json:"convert_styles" mapstructure:"convert_styles"`

	// UnwrapEmptyFormatting replaces emphasis and code elements that hold no
	// text with their whitespace.
	UnwrapEmptyFormatting bool `json:"unwrap_empty_formatting" mapstructure:"unwrap_empty_formatting"`

	// === Attribute Cleaning (default mode) ===

	// StripEventHandlers removes onclick, onload, and other event attributes.
	StripEventHandlers bool `json:"strip_event_handlers" mapstructure:"strip_event_handlers"`

	// StripDataAttributes removes data-* attributes.
	StripDataAttributes bool `json:"strip_data_attributes" mapstructure:"strip_data_attributes"`

	// StripARIA removes aria-* attributes.
	StripARIA bool `json:"strip_aria" mapstructure:"strip_aria"`

	// StripStyles removes style="" attributes once their semantics are extracted.
	StripStyles bool `json:"strip_styles" mapstructure:"strip_styles"`
}

// cleanAllowList is the attribute allow-list used in clean mode.
var cleanAllowList = map[string][]string{
	"a":   {"href"},
	"img": {"src", "alt", "title"},
}

// DefaultConfig returns the configuration used for clipboard paste.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeDefault,
		RemoveTags: []string{
			"script", "style", "meta", "link", "head", "title",
			"iframe", "frame", "frameset", "noscript", "svg",
			"object", "embed", "template", "xml",
		},
		StripComments: true,

		VendorClassPrefixes: []string{
			"Mso", "mso-", "docs-", "kix-", "gmail_", "Apple-", "ql-", "x_",
			"SpellE", "GramE",
		},
		VendorStylePrefixes: []string{
			"mso-", "-webkit-", "-aw-", "tab-stops",
		},
		UnwrapNamespaced:  true,
		UnwrapDocsWrapper: true,

		ConvertStyles:         true,
		UnwrapEmptyFormatting: true,

		StripEventHandlers:  true,
		StripDataAttributes: true,
		StripARIA:           true,
		StripStyles:         true,
	}
}

// PresetClean returns the default configuration in clean mode, which keeps
// only the attributes markdown can express.
func PresetClean() *Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeClean
	return cfg
}

// PresetMinimal removes non-content elements and comments only.
// Vendor classes and inline styles are left untouched.
func PresetMinimal() *Config {
	cfg := DefaultConfig()
	return &Config{
		Mode:          ModeDefault,
		RemoveTags:    cfg.RemoveTags,
		StripComments: true,
	}
}

// Merge merges another config into this one.
// Boolean options set in other win, lists are appended without duplicates
// and a non-empty Mode replaces this one.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	if other.Mode != "" {
		merged.Mode = other.Mode
	}

	merged.StripComments = merged.StripComments || other.StripComments
	merged.UnwrapNamespaced = merged.UnwrapNamespaced || other.UnwrapNamespaced
	merged.UnwrapDocsWrapper = merged.UnwrapDocsWrapper || other.UnwrapDocsWrapper
	merged.ConvertStyles = merged.ConvertStyles || other.ConvertStyles
	merged.UnwrapEmptyFormatting = merged.UnwrapEmptyFormatting || other.UnwrapEmptyFormatting
	merged.StripEventHandlers = merged.StripEventHandlers || other.StripEventHandlers
	merged.StripDataAttributes = merged.StripDataAttributes || other.StripDataAttributes
	merged.StripARIA = merged.StripARIA || other.StripARIA
	merged.StripStyles = merged.StripStyles || other.StripStyles

	merged.RemoveTags = appendUnique(c.RemoveTags, other.RemoveTags)
	merged.RemoveSelectors = appendUnique(c.RemoveSelectors, other.RemoveSelectors)
	merged.VendorClassPrefixes = appendUnique(c.VendorClassPrefixes, other.VendorClassPrefixes)
	merged.VendorStylePrefixes = appendUnique(c.VendorStylePrefixes, other.VendorStylePrefixes)

	return &merged
}

func appendUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
