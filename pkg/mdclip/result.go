package mdclip

import (
	"fmt"

	"github.com/jmylchreest/mdclip/pkg/cleaner/normalize"
)

// Status describes how a clipboard operation went.
type Status int

const (
	// StatusOK means the preferred path succeeded.
	StatusOK Status = iota
	// StatusDegraded means a fallback produced the result.
	StatusDegraded
	// StatusUnavailable means every fallback failed or the clipboard was empty.
	StatusUnavailable
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode names the operation that produced a Result.
type Mode string

// Operations.
const (
	ModeCopyRich      Mode = "copy-rich"
	ModeCopyHTML      Mode = "copy-html"
	ModePasteMarkdown Mode = "paste-markdown"
	ModePasteHTML     Mode = "paste-html"
	ModePlainText     Mode = "plain-text"
	ModeConvert       Mode = "convert"
)

// Result is the outcome of one clipboard operation. Operations never
// return errors directly; failures are reported through Status and Err.
type Result struct {
	// Text is the content written or the content read and converted.
	Text   string `json:"text" yaml:"text"`
	Status Status `json:"status" yaml:"status"`

	// Source is the representation the content came from or went to.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Mode   Mode   `json:"mode" yaml:"mode"`

	// Formatter names the markdown formatter applied, if any.
	Formatter string `json:"formatter,omitempty" yaml:"formatter,omitempty"`

	// Tables is the number of tables converted on paste.
	Tables int `json:"tables,omitempty" yaml:"tables,omitempty"`

	// Stats and Warnings come from the normalizer when markup was converted.
	Stats    *normalize.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Warnings []normalize.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// OK reports whether content is available.
func (r Result) OK() bool {
	return r.Status != StatusUnavailable
}
