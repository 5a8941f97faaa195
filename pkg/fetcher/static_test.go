package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Fetcher = (*StaticFetcher)(nil)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>  Paste\n test </title></head><body><p>" + r.Header.Get("X-Test") + "|" + r.UserAgent() + "</p></body></html>"))
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":1}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStaticFetcher_Fetch(t *testing.T) {
	srv := newServer(t)
	f := NewStatic(StaticConfig{UserAgent: "mdclip-test"})

	content, err := f.Fetch(context.Background(), srv.URL+"/page", Options{Headers: map[string]string{"X-Test": "hdr"}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, content.StatusCode)
	assert.Equal(t, "Paste test", content.Title)
	assert.Contains(t, content.HTML, "<p>hdr|mdclip-test</p>")
	assert.False(t, content.FetchedAt.IsZero())
}

func TestStaticFetcher_UserAgentOverride(t *testing.T) {
	srv := newServer(t)

	content, err := NewStatic(StaticConfig{}).Fetch(context.Background(), srv.URL+"/page", Options{UserAgent: "override"})
	require.NoError(t, err)
	assert.Contains(t, content.HTML, "|override</p>")
}

func TestStaticFetcher_NotHTML(t *testing.T) {
	srv := newServer(t)

	_, err := NewStatic(StaticConfig{}).Fetch(context.Background(), srv.URL+"/json", Options{})
	assert.ErrorIs(t, err, ErrNotHTML)
}

func TestStaticFetcher_HTTPError(t *testing.T) {
	srv := newServer(t)

	content, err := NewStatic(StaticConfig{}).Fetch(context.Background(), srv.URL+"/missing", Options{})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, content.StatusCode)
}

func TestStaticFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic(StaticConfig{}).Fetch(ctx, "http://127.0.0.1:1/", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML(""))
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.True(t, isHTML("application/xhtml+xml"))
	assert.False(t, isHTML("application/json"))
	assert.False(t, isHTML(";;"))
}

func TestNewStatic_Defaults(t *testing.T) {
	f := NewStatic(StaticConfig{})
	def := DefaultStaticConfig()
	assert.Equal(t, def, f.config)
	assert.Equal(t, "static", f.Type())
	assert.NoError(t, f.Close())
}
