package clipboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPathFrom(found ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDetectHTMLBackend(t *testing.T) {
	wayland := env(map[string]string{"WAYLAND_DISPLAY": "wayland-0"})
	x11 := env(nil)

	tests := []struct {
		name   string
		goos   string
		getenv func(string) string
		found  []string
		want   string
	}{
		{"wayland with wl-clipboard", "linux", wayland, []string{"wl-paste", "wl-copy", "xclip"}, "wl-clipboard"},
		{"wayland without wl-copy uses xclip", "linux", wayland, []string{"wl-paste", "xclip"}, "xclip"},
		{"x11 ignores wl-clipboard", "linux", x11, []string{"wl-paste", "wl-copy", "xclip"}, "xclip"},
		{"bsd with xclip", "freebsd", x11, []string{"xclip"}, "xclip"},
		{"macos", "darwin", x11, []string{"osascript"}, "osascript"},
		{"no tools", "linux", wayland, nil, ""},
		{"windows", "windows", x11, []string{"xclip"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := detectHTMLBackend(tt.goos, tt.getenv, lookPathFrom(tt.found...))
			if tt.want == "" {
				assert.Nil(t, b)
				return
			}
			require.NotNil(t, b)
			assert.Equal(t, tt.want, b.Name())
		})
	}
}

func TestDetectHTMLBackend_XclipArgs(t *testing.T) {
	b := detectHTMLBackend("linux", env(nil), lookPathFrom("xclip"))
	cb, ok := b.(*commandBackend)
	require.True(t, ok)
	assert.Equal(t, []string{"xclip", "-selection", "clipboard", "-t", "text/html", "-o"}, cb.read)
	assert.Equal(t, []string{"xclip", "-selection", "clipboard", "-t", "text/html", "-i"}, cb.write)
}

// writeScript creates an executable shell script in a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a unix shell")
	}
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestSystem_ReadHTMLFromTool(t *testing.T) {
	paste := writeScript(t, `printf '<p><b>hi</b></p>'`)
	sys := newSystem(&commandBackend{name: "fake", read: []string{paste}})

	items, err := sys.Read(context.Background())
	require.NoError(t, err)
	html, ok := Find(items, TypeHTML)
	require.True(t, ok)
	assert.Equal(t, "<p><b>hi</b></p>", html)
}

func TestSystem_ReadToolFailureWithoutText(t *testing.T) {
	paste := writeScript(t, `echo "No suitable type of content copied" >&2; exit 1`)
	sys := newSystem(&commandBackend{name: "fake", read: []string{paste}})

	items, err := sys.Read(context.Background())
	if err == nil {
		// A plain text clipboard on the host can still answer.
		_, ok := Find(items, TypeHTML)
		assert.False(t, ok)
		return
	}
	assert.Contains(t, err.Error(), "No suitable type")
}

func TestSystem_WriteHTMLToTool(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.html")
	copyTool := writeScript(t, `cat > "$1"`)
	sys := newSystem(&commandBackend{name: "fake", write: []string{copyTool, out}})

	err := sys.Write(context.Background(),
		Item{Type: TypeHTML, Data: "<h1>Title</h1>"},
		Item{Type: TypePlain, Data: "# Title"},
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Title</h1>", string(data))
}

func TestSystem_WriteToolFailure(t *testing.T) {
	copyTool := writeScript(t, `exit 3`)
	sys := newSystem(&commandBackend{name: "fake", write: []string{copyTool}})

	err := sys.Write(context.Background(), Item{Type: TypeHTML, Data: "<p>x</p>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write html")
}

func TestDecodeAppleScriptData(t *testing.T) {
	got, err := decodeAppleScriptData("«data HTML3C623E68693C2F623E»\n")
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", got)

	_, err = decodeAppleScriptData("missing value")
	assert.Error(t, err)
}

func TestAppleScriptString(t *testing.T) {
	assert.Equal(t, `"say \"hi\" \\ bye"`, appleScriptString(`say "hi" \ bye`))
}
