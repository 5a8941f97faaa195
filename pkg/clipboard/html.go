package clipboard

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// htmlBackend reaches the text/html representation, which the plain text
// library cannot see.
type htmlBackend interface {
	Name() string
	ReadHTML(ctx context.Context) (string, error)
	// WriteHTML replaces the clipboard with markup. plain is offered as the
	// text representation where the platform tool can hold both.
	WriteHTML(ctx context.Context, markup, plain string) error
}

// detectHTMLBackend picks the clipboard utility for the platform, or nil
// when none is installed.
func detectHTMLBackend(goos string, getenv func(string) string, lookPath func(string) (string, error)) htmlBackend {
	has := func(names ...string) bool {
		for _, name := range names {
			if _, err := lookPath(name); err != nil {
				return false
			}
		}
		return true
	}

	switch goos {
	case "darwin":
		if has("osascript") {
			return osascriptBackend{}
		}
	case "windows":
		return nil
	default:
		if getenv("WAYLAND_DISPLAY") != "" && has("wl-paste", "wl-copy") {
			return &commandBackend{
				name:  "wl-clipboard",
				read:  []string{"wl-paste", "--no-newline", "--type", TypeHTML},
				write: []string{"wl-copy", "--type", TypeHTML},
			}
		}
		if has("xclip") {
			return &commandBackend{
				name:  "xclip",
				read:  []string{"xclip", "-selection", "clipboard", "-t", TypeHTML, "-o"},
				write: []string{"xclip", "-selection", "clipboard", "-t", TypeHTML, "-i"},
			}
		}
	}
	return nil
}

func defaultHTMLBackend() htmlBackend {
	return detectHTMLBackend(runtime.GOOS, os.Getenv, exec.LookPath)
}

// commandBackend runs one command to print the markup and another that
// takes it on stdin. The tools hold a single representation per call.
type commandBackend struct {
	name  string
	read  []string
	write []string
}

func (b *commandBackend) Name() string {
	return b.name
}

func (b *commandBackend) ReadHTML(ctx context.Context) (string, error) {
	out, err := run(ctx, b.read, "")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b *commandBackend) WriteHTML(ctx context.Context, markup, _ string) error {
	_, err := run(ctx, b.write, markup)
	return err
}

// osascriptBackend moves markup through AppleScript's HTML class, which
// carries the data hex encoded.
type osascriptBackend struct{}

func (osascriptBackend) Name() string {
	return "osascript"
}

func (osascriptBackend) ReadHTML(ctx context.Context) (string, error) {
	out, err := run(ctx, []string{"osascript", "-e", "the clipboard as «class HTML»"}, "")
	if err != nil {
		return "", err
	}
	return decodeAppleScriptData(string(out))
}

func (osascriptBackend) WriteHTML(ctx context.Context, markup, plain string) error {
	script := fmt.Sprintf("set the clipboard to {«class HTML»:«data HTML%X», string:%s}", []byte(markup), appleScriptString(plain))
	_, err := run(ctx, []string{"osascript", "-e", script}, "")
	return err
}

// decodeAppleScriptData decodes «data HTML3C62...» output.
func decodeAppleScriptData(out string) (string, error) {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "«data HTML") || !strings.HasSuffix(out, "»") {
		return "", fmt.Errorf("unexpected osascript output: %.40q", out)
	}
	data, err := hex.DecodeString(strings.TrimSuffix(strings.TrimPrefix(out, "«data HTML"), "»"))
	if err != nil {
		return "", fmt.Errorf("decode osascript data: %w", err)
	}
	return string(data), nil
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func run(ctx context.Context, argv []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	return out, nil
}
