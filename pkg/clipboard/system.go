package clipboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jmylchreest/mdclip/internal/logger"
)

// System is the platform clipboard. Plain text goes through atotto/clipboard;
// markup goes through wl-clipboard or xclip on Linux and osascript on macOS.
// Without one of those tools the structured calls report ErrUnsupported so
// callers fall back to text.
// It implements the Clipboard interface.
type System struct {
	html htmlBackend
}

// NewSystem creates a System clipboard using the utilities found on PATH.
func NewSystem() *System {
	return newSystem(defaultHTMLBackend())
}

func newSystem(html htmlBackend) *System {
	s := &System{html: html}
	if html != nil {
		logger.Debug("html clipboard backend", "tool", html.Name())
	}
	return s
}

// Available reports whether a platform clipboard utility was found.
func (s *System) Available() bool {
	return !clipboard.Unsupported || s.html != nil
}

// Read returns the markup and plain text representations that are present.
func (s *System) Read(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.html == nil {
		return nil, fmt.Errorf("read: %w", ErrUnsupported)
	}

	var items []Item
	markup, herr := s.html.ReadHTML(ctx)
	if herr != nil {
		// The tools fail when the clipboard holds no markup.
		logger.Debug("no html on clipboard", "tool", s.html.Name(), "error", herr)
	} else if strings.TrimSpace(markup) != "" {
		items = append(items, Item{Type: TypeHTML, Data: markup})
	}

	if text, err := s.ReadText(ctx); err == nil && text != "" {
		items = append(items, Item{Type: TypePlain, Data: text})
	}

	if len(items) == 0 {
		if herr != nil {
			return nil, fmt.Errorf("read: %w", herr)
		}
		return nil, fmt.Errorf("read: %w", ErrEmpty)
	}
	return items, nil
}

// ReadText reads plain text from the platform clipboard.
func (s *System) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if clipboard.Unsupported {
		return "", fmt.Errorf("read text: %w", ErrUnsupported)
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		logger.Debug("system clipboard read failed", "error", err)
		return "", fmt.Errorf("read text: %w", err)
	}
	return text, nil
}

// Write stores the markup item, offering the plain text item alongside it
// where the platform tool allows. Items whose markup and text are the same
// are literal markup and are written as text.
func (s *System) Write(ctx context.Context, items ...Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	markup, hasHTML := Find(items, TypeHTML)
	text, hasText := Find(items, TypePlain)

	if !hasHTML || (hasText && text == markup) {
		if hasText {
			return s.WriteText(ctx, text)
		}
		return fmt.Errorf("write: %w", ErrUnsupported)
	}
	if s.html == nil {
		return fmt.Errorf("write: %w", ErrUnsupported)
	}
	if err := s.html.WriteHTML(ctx, markup, text); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// WriteText writes plain text to the platform clipboard.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return fmt.Errorf("write text: %w", ErrUnsupported)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}
