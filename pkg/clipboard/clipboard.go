// Package clipboard defines access to a system clipboard holding several
// representations of the same content.
// Implement the Clipboard interface to plug in a platform clipboard, a
// remote clipboard or a test double.
package clipboard

import (
	"context"
	"errors"
)

// Representation types.
const (
	TypePlain = "text/plain"
	TypeHTML  = "text/html"
)

// Item is one representation of the clipboard content.
type Item struct {
	Type string `json:"type" yaml:"type"`
	Data string `json:"data" yaml:"data"`
}

// Clipboard abstracts clipboard access.
type Clipboard interface {
	// Read returns every available representation.
	Read(ctx context.Context) ([]Item, error)

	// ReadText returns the plain text representation.
	ReadText(ctx context.Context) (string, error)

	// Write replaces the clipboard content with the given representations.
	Write(ctx context.Context, items ...Item) error

	// WriteText replaces the clipboard content with plain text.
	WriteText(ctx context.Context, text string) error
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, clipboard.ErrUnsupported).
var (
	// ErrUnsupported indicates the clipboard cannot perform the operation.
	ErrUnsupported = errors.New("clipboard operation not supported")
	// ErrEmpty indicates the clipboard holds nothing readable.
	ErrEmpty = errors.New("clipboard is empty")
	// ErrPermission indicates access to the clipboard was denied.
	ErrPermission = errors.New("clipboard permission denied")
)

// Find returns the data of the first item of type t.
func Find(items []Item, t string) (string, bool) {
	for _, it := range items {
		if it.Type == t {
			return it.Data, true
		}
	}
	return "", false
}
