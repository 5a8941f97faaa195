package commands

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/clipboard"
)

const tableHTML = `<p>Intro</p><table><tr><th>Header 1</th><th>Header 2</th></tr><tr><td>Cell 1</td><td>Cell 2</td></tr></table>`

type run struct {
	stdout string
	stderr string
	err    error
}

// execute runs the CLI against cb with an isolated home directory.
func execute(t *testing.T, cb clipboard.Clipboard, stdin string, args ...string) run {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(cb)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return run{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestPaste_HTMLTable(t *testing.T) {
	cb := clipboard.NewMemory(
		clipboard.Item{Type: clipboard.TypeHTML, Data: tableHTML},
		clipboard.Item{Type: clipboard.TypePlain, Data: "Intro Header 1 Header 2"},
	)

	r := execute(t, cb, "", "paste", "--format=false")
	require.NoError(t, r.err)
	assert.Equal(t, "Intro\n\n| Header 1 | Header 2 |\n| --- | --- |\n| Cell 1 | Cell 2 |\n", r.stdout)
}

func TestPaste_TextMode(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypeHTML, Data: "<h1>Title</h1><p>Some <b>bold</b> text</p>"})

	r := execute(t, cb, "", "paste", "--mode", "text")
	require.NoError(t, r.err)
	assert.Equal(t, "Title\nSome bold text\n", r.stdout)
}

func TestPaste_WriteFile(t *testing.T) {
	cb := clipboard.NewMemory(clipboard.Item{Type: clipboard.TypePlain, Data: "just text"})
	path := filepath.Join(t.TempDir(), "out.md")

	r := execute(t, cb, "", "paste", "--format=false", "-w", path)
	require.NoError(t, r.err)
	assert.Empty(t, r.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "just text\n", string(data))
}

func TestPaste_EmptyClipboardFails(t *testing.T) {
	cb := clipboard.NewMemory()

	r := execute(t, cb, "", "paste")
	require.Error(t, r.err)
	assert.Empty(t, r.stdout)
	assert.Equal(t, 1, cb.Calls(clipboard.OpRead))
	assert.Equal(t, 1, cb.Calls(clipboard.OpReadText))
}

func TestPaste_UnknownMode(t *testing.T) {
	r := execute(t, clipboard.NewMemory(), "", "paste", "--mode", "rtf")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), `unknown paste mode "rtf"`)
}

func TestCopy_Rich(t *testing.T) {
	cb := clipboard.NewMemory()

	r := execute(t, cb, "# Title\n\nSome **bold** text", "copy")
	require.NoError(t, r.err)

	items := cb.Items()
	htmlData, ok := clipboard.Find(items, clipboard.TypeHTML)
	require.True(t, ok)
	assert.Contains(t, htmlData, "<h1")
	assert.Contains(t, htmlData, "font-size: 2em")
	assert.Contains(t, htmlData, "<strong")

	plain, ok := clipboard.Find(items, clipboard.TypePlain)
	require.True(t, ok)
	assert.Equal(t, "# Title\n\nSome **bold** text", plain)
}

func TestCopy_HTMLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.md")
	require.NoError(t, os.WriteFile(path, []byte("Hello *world*"), 0o644))
	cb := clipboard.NewMemory()

	r := execute(t, cb, "", "copy", "--mode", "html", path)
	require.NoError(t, r.err)

	htmlData, ok := clipboard.Find(cb.Items(), clipboard.TypeHTML)
	require.True(t, ok)
	assert.Contains(t, htmlData, "<em>")
	assert.Contains(t, htmlData, "world")
	assert.NotContains(t, htmlData, "style=")

	plain, _ := clipboard.Find(cb.Items(), clipboard.TypePlain)
	assert.Equal(t, htmlData, plain)
}

func TestCopy_WriteFailureFallsBackToText(t *testing.T) {
	cb := clipboard.NewMemory()
	cb.Fail(clipboard.OpWrite, fmt.Errorf("no html support"))

	r := execute(t, cb, "**x**", "copy")
	require.NoError(t, r.err)
	assert.Equal(t, []clipboard.Item{{Type: clipboard.TypePlain, Data: "**x**"}}, cb.Items())
	assert.Contains(t, r.stderr, "completed with fallback")
}

func TestConvert_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(tableHTML), 0o644))
	cb := clipboard.NewMemory()

	r := execute(t, cb, "", "convert", "--format=false", "--stats", path)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "| Cell 1 | Cell 2 |")
	assert.Contains(t, r.stderr, "Tables: 1")
	assert.Zero(t, cb.Calls(clipboard.OpRead))
}

func TestConvert_StatsJSON(t *testing.T) {
	r := execute(t, clipboard.NewMemory(), tableHTML, "convert", "--stats", "-o", "json")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, `"status": "ok"`)
	assert.Contains(t, r.stderr, `"tables": 1`)
}

func TestConvert_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Post</title></head><body><h2>Heading</h2><p>Body with a <a href="/next">link</a></p></body></html>`))
	}))
	defer srv.Close()

	r := execute(t, clipboard.NewMemory(), "", "convert", "--format=false", "--url", srv.URL)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "## Heading")
	assert.Contains(t, r.stdout, "[link](/next)")
}

func TestConvert_FileAndURLConflict(t *testing.T) {
	r := execute(t, clipboard.NewMemory(), "", "convert", "--url", "http://127.0.0.1:1", "page.html")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "not both")
}

func TestRender(t *testing.T) {
	r := execute(t, nil, "# Title", "render")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "<h1")
	assert.Contains(t, r.stdout, "font-weight: bold")

	r = execute(t, nil, "# Title", "render", "--mode", "html")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "<h1>")
	assert.NotContains(t, r.stdout, "style=")
}

func TestInspect(t *testing.T) {
	cb := clipboard.NewMemory(
		clipboard.Item{Type: clipboard.TypeHTML, Data: "<b>hi</b>"},
		clipboard.Item{Type: clipboard.TypePlain, Data: "hi"},
	)

	r := execute(t, cb, "", "inspect")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "text/html")
	assert.Contains(t, r.stdout, "9 B")

	r = execute(t, cb, "", "inspect", "-o", "yaml")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "type: text/plain")
	assert.Contains(t, r.stdout, "data: hi")
}

func TestVersion(t *testing.T) {
	r := execute(t, nil, "", "version")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "mdclip")

	r = execute(t, nil, "", "version", "-o", "json")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, `"version"`)
}

func TestInvalidConfig(t *testing.T) {
	r := execute(t, clipboard.NewMemory(), "", "paste", "--preset", "aggressive")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "invalid config")
}
