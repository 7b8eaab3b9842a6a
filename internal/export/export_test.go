package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/config"
	"github.com/systemlogs/folio/internal/server"
)

func newTestExporter(t *testing.T, fsys fstest.MapFS) *Exporter {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Environment = "production"
	cfg.Development.HotReload = false
	cfg.Site.BaseURL = "https://example.com"

	srv, err := server.New(cfg, server.WithContentFS(fsys))
	require.NoError(t, err)
	return New(srv, nil)
}

func testContent() fstest.MapFS {
	return fstest.MapFS{
		"blog/en/hello-world.md": {Data: []byte("---\ntitle: Hello World\ndate: 2025-03-07\n---\n\nHello.\n")},
		"blog/de/hallo.md":       {Data: []byte("---\ntitle: Hallo Welt\ndate: 2025-03-01\n---\n\nHallo.\n")},
		"static/styles.css":      {Data: []byte("body {}\n")},
		"static/img/logo.svg":    {Data: []byte("<svg/>")},
	}
}

// workDir moves the test into an empty working directory; exports are only
// allowed below it.
func workDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func readFile(t *testing.T, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(parts...))
	require.NoError(t, err)
	return string(data)
}

func TestRoutes(t *testing.T) {
	e := newTestExporter(t, testContent())

	routes := e.Routes(context.Background())

	assert.Contains(t, routes, "/en")
	assert.Contains(t, routes, "/de/about")
	assert.Contains(t, routes, "/en/impressum")
	assert.Contains(t, routes, "/de/blog")
	assert.Contains(t, routes, "/en/blog/hello-world")
	assert.Contains(t, routes, "/de/blog/hallo")
	// Default-language posts are reachable under every language.
	assert.Contains(t, routes, "/de/blog/hello-world")
	assert.NotContains(t, routes, "/en/blog/hallo")
}

func TestExport(t *testing.T) {
	workDir(t)
	out := "dist"
	e := newTestExporter(t, testContent())

	result, err := e.Export(context.Background(), Options{OutputDir: out, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, len(e.Routes(context.Background())), result.Pages)
	assert.Equal(t, 2, result.Assets)
	assert.Equal(t, out, result.OutputDir)

	assert.Contains(t, readFile(t, out, "en", "index.html"), "Hello World")
	assert.Contains(t, readFile(t, out, "en", "blog", "hello-world", "index.html"), "<h1>Hello World</h1>")
	assert.Contains(t, readFile(t, out, "de", "blog", "hello-world", "index.html"), "language-notice")
	assert.Contains(t, readFile(t, out, "de", "privacy", "index.html"), `<html lang="de">`)
	assert.Contains(t, readFile(t, out, "sitemap.xml"), "<loc>https://example.com/de/blog/hallo</loc>")
	assert.Contains(t, readFile(t, out, "robots.txt"), "Sitemap: https://example.com/sitemap.xml")
	assert.Contains(t, readFile(t, out, "404.html"), "Not Found")
	assert.Contains(t, readFile(t, out, "index.html"), `url=/en`)
	assert.Equal(t, "<svg/>", readFile(t, out, "static", "img", "logo.svg"))

	index := readFile(t, out, "en", "index.html")
	assert.NotContains(t, index, "new WebSocket")
}

func TestExportClean(t *testing.T) {
	workDir(t)
	out := "dist"
	stale := filepath.Join(out, "stale.html")
	require.NoError(t, os.MkdirAll(out, 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	e := newTestExporter(t, testContent())

	_, err := e.Export(context.Background(), Options{OutputDir: out})
	require.NoError(t, err)
	assert.FileExists(t, stale)

	_, err = e.Export(context.Background(), Options{OutputDir: out, Clean: true})
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestExportReportsFailuresByCode(t *testing.T) {
	workDir(t)
	out := "dist"
	require.NoError(t, os.MkdirAll(out, 0755))
	// A file where the German tree should go makes every German page fail.
	require.NoError(t, os.WriteFile(filepath.Join(out, "de"), []byte("x"), 0644))

	e := newTestExporter(t, testContent())
	var german int
	for _, route := range e.Routes(context.Background()) {
		if route == "/de" || strings.HasPrefix(route, "/de/") {
			german++
		}
	}

	result, err := e.Export(context.Background(), Options{OutputDir: out})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, map[string]int{ErrCodeWriteFailed: german}, result.Failures)
	assert.Contains(t, readFile(t, out, "en", "index.html"), "Hello World")
}

func TestExportWithoutStaticDir(t *testing.T) {
	workDir(t)
	out := "dist"
	fsys := testContent()
	delete(fsys, "static/styles.css")
	delete(fsys, "static/img/logo.svg")

	result, err := newTestExporter(t, fsys).Export(context.Background(), Options{OutputDir: out})
	require.NoError(t, err)
	assert.Zero(t, result.Assets)
}

func TestExportRejectsBadOutput(t *testing.T) {
	cwd := workDir(t)
	post := filepath.Join("content", "blog", "en", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(post), 0755))
	require.NoError(t, os.WriteFile(post, []byte("keep"), 0644))

	e := newTestExporter(t, testContent())

	tests := []struct {
		name string
		dir  string
	}{
		{"empty", ""},
		{"traversal", "../outside"},
		{"shell metacharacter", "dist;rm"},
		{"working directory", "."},
		{"absolute working directory", cwd},
		{"parent of working directory", filepath.Dir(cwd)},
		{"absolute path elsewhere", t.TempDir()},
		{"content directory", "content"},
		{"inside content directory", filepath.Join("content", "dist")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Export(context.Background(), Options{OutputDir: tt.dir, Clean: true})
			assert.Error(t, err)
			assert.FileExists(t, filepath.Join(cwd, post))
		})
	}
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	workDir(t)
	_, err := newTestExporter(t, testContent()).Export(ctx, Options{OutputDir: "dist"})
	assert.ErrorIs(t, err, context.Canceled)
}
