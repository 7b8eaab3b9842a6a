// Package export renders every route of the site to static files.
//
// Pages are produced by sending requests through the server's own handler,
// so the exported HTML is byte-for-byte what the live server would return.
// Each route is written as <route>/index.html below the output directory,
// next to sitemap.xml, robots.txt, 404.html and a copy of the static assets.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/i18n"
	"github.com/systemlogs/folio/internal/logging"
	"github.com/systemlogs/folio/internal/server"
	"github.com/systemlogs/folio/internal/sitemap"
	"github.com/systemlogs/folio/internal/validation"
)

// Error codes reported by an export.
const (
	ErrCodeRenderFailed = "EXPORT_RENDER_FAILED"
	ErrCodeWriteFailed  = "EXPORT_WRITE_FAILED"
)

// notFoundRoute is a path no route serves, used to render 404.html.
const notFoundRoute = "/__not_found__"

// Options configure an export.
type Options struct {
	OutputDir string
	// Clean removes the output directory before writing.
	Clean bool
	// Workers is the number of concurrent renders. Zero uses GOMAXPROCS.
	Workers int
}

// Result summarizes a finished export.
type Result struct {
	OutputDir string
	Pages     int
	Assets    int
	Files     []string
	Duration  time.Duration
	// Failures counts failed files by error code.
	Failures map[string]int
}

// Exporter writes a static copy of a server.
type Exporter struct {
	server *server.Server
	logger logging.Logger
}

// New creates an exporter for srv. srv should be built with hot reload off,
// otherwise every page carries the live-reload script.
func New(srv *server.Server, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Exporter{server: srv, logger: logger.WithComponent("export")}
}

// Routes lists every page path to export: the home, static and legal pages,
// the blog index and each post, for each language. A post from the default
// language is also exported under the other languages, where the server
// renders it with a language notice.
func (e *Exporter) Routes(ctx context.Context) []string {
	langs := e.server.Languages()
	resolver := e.server.Resolver()

	fallback := make(map[string]bool)
	for _, post := range resolver.ListPosts(ctx, langs.Default) {
		fallback[post.Slug] = true
	}

	var routes []string
	for _, lang := range langs.Supported {
		for _, page := range sitemap.StaticPages {
			route := "/" + string(lang)
			if page != "" {
				route += "/" + page
			}
			routes = append(routes, route)
		}
		routes = append(routes, "/"+string(lang)+"/blog")

		slugs := make(map[string]bool, len(fallback))
		for slug := range fallback {
			slugs[slug] = true
		}
		for _, post := range resolver.ListPosts(ctx, lang) {
			slugs[post.Slug] = true
		}
		for _, slug := range sortedKeys(slugs) {
			routes = append(routes, "/"+string(lang)+"/blog/"+slug)
		}
	}
	return routes
}

// Export renders the site into opts.OutputDir. Pages that fail to render
// are collected and reported together; the remaining pages are still
// written.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if err := prepareOutput(opts.OutputDir, e.server.ContentDir(), opts.Clean); err != nil {
		return nil, err
	}

	result := &Result{OutputDir: opts.OutputDir}
	collector := errors.NewCollector()
	var mutex sync.Mutex
	record := func(file string) {
		mutex.Lock()
		result.Files = append(result.Files, file)
		mutex.Unlock()
	}

	routes := e.Routes(ctx)
	e.logger.Info(ctx, "Exporting site", "routes", len(routes), "output", opts.OutputDir)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workerCount(opts.Workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for route := range jobs {
				file, err := e.exportPage(ctx, opts.OutputDir, route)
				if err != nil {
					collector.Add(err)
					continue
				}
				record(file)
			}
		}()
	}

feed:
	for _, route := range routes {
		select {
		case jobs <- route:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Pages = len(result.Files)

	extras := []struct {
		route  string
		file   string
		status int
	}{
		{"/sitemap.xml", "sitemap.xml", http.StatusOK},
		{"/robots.txt", "robots.txt", http.StatusOK},
		{"/" + string(e.server.Languages().Default) + notFoundRoute, "404.html", http.StatusNotFound},
	}
	for _, extra := range extras {
		file, err := e.fetch(ctx, opts.OutputDir, extra.route, extra.file, extra.status)
		if err != nil {
			collector.Add(err)
			continue
		}
		record(file)
	}

	index, err := writeRootRedirect(opts.OutputDir, e.server.Languages().Default)
	if err != nil {
		collector.Add(err)
	} else {
		record(index)
	}

	assets, err := e.copyStatic(opts.OutputDir)
	if err != nil {
		collector.Add(err)
	}
	result.Assets = len(assets)
	result.Files = append(result.Files, assets...)

	sort.Strings(result.Files)
	result.Duration = time.Since(start)

	if err := collector.Err(); err != nil {
		result.Failures = make(map[string]int)
		for code, errs := range collector.ByCode() {
			result.Failures[code] = len(errs)
		}
		e.logger.Error(ctx, err, "Export finished with errors",
			"failed", len(collector.Errors()), "by_code", result.Failures)
		return result, err
	}

	e.logger.Info(ctx, "Export complete", "pages", result.Pages, "assets", result.Assets,
		"duration", result.Duration.String())
	return result, nil
}

func (e *Exporter) exportPage(ctx context.Context, outputDir, route string) (string, error) {
	rel := path.Join(strings.TrimPrefix(route, "/"), "index.html")
	return e.fetch(ctx, outputDir, route, rel, http.StatusOK)
}

// fetch requests route from the server and writes the body to rel.
func (e *Exporter) fetch(ctx context.Context, outputDir, route, rel string, want int) (string, error) {
	req := httptest.NewRequest(http.MethodGet, route, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	if rec.Code != want {
		return "", errors.NewValidationError(ErrCodeRenderFailed,
			fmt.Sprintf("%s returned status %d, want %d", route, rec.Code, want)).WithPath(route)
	}

	file := filepath.Join(outputDir, filepath.FromSlash(rel))
	if err := writeFile(file, rec.Body); err != nil {
		return "", err
	}
	e.logger.Debug(ctx, "Exported page", "route", route, "file", file, "bytes", rec.Body.Len())
	return file, nil
}

// copyStatic mirrors the static asset tree to <output>/static.
func (e *Exporter) copyStatic(outputDir string) ([]string, error) {
	static, err := e.server.StaticFS()
	if err != nil {
		return nil, err
	}

	var files []string
	err = fs.WalkDir(static, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && name == "." {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		src, err := static.Open(name)
		if err != nil {
			return err
		}
		defer src.Close()

		file := filepath.Join(outputDir, "static", filepath.FromSlash(name))
		if err := writeFile(file, src); err != nil {
			return err
		}
		files = append(files, file)
		return nil
	})
	return files, err
}

// writeRootRedirect writes index.html sending visitors to the default
// language. Static hosts cannot negotiate, so the default is fixed.
func writeRootRedirect(outputDir string, lang i18n.Language) (string, error) {
	target := "/" + string(lang)
	page := fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="utf-8">`+
		`<meta http-equiv="refresh" content="0; url=%s"><link rel="canonical" href="%s">`+
		`</head><body><a href="%s">%s</a></body></html>`+"\n", target, target, target, target)

	file := filepath.Join(outputDir, "index.html")
	return file, writeFile(file, strings.NewReader(page))
}

// prepareOutput checks that outputDir lies strictly inside the working
// directory and neither contains nor sits inside contentDir, then creates it.
func prepareOutput(outputDir, contentDir string, clean bool) error {
	if outputDir == "" {
		return errors.NewValidationError(errors.ErrCodeConfigInvalid, "output directory is required")
	}
	if err := validation.ValidatePath(outputDir); err != nil {
		return err
	}

	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return errors.WrapIO(err, ErrCodeWriteFailed, "resolve output directory").WithPath(outputDir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return errors.WrapIO(err, ErrCodeWriteFailed, "resolve working directory").WithPath(outputDir)
	}
	if inside, err := validation.WithinDir(cwd, abs); err != nil || !inside || abs == cwd {
		return errors.NewValidationError(errors.ErrCodeConfigInvalid,
			"output directory must be inside the working directory").WithPath(outputDir)
	}

	if contentDir != "" {
		holdsContent, err := validation.WithinDir(abs, contentDir)
		if err != nil {
			return errors.WrapIO(err, ErrCodeWriteFailed, "resolve content directory").WithPath(contentDir)
		}
		inContent, err := validation.WithinDir(contentDir, abs)
		if err != nil {
			return errors.WrapIO(err, ErrCodeWriteFailed, "resolve content directory").WithPath(contentDir)
		}
		if holdsContent || inContent {
			return errors.NewValidationError(errors.ErrCodeConfigInvalid,
				"output directory overlaps the content directory").WithPath(outputDir)
		}
	}

	if clean {
		if err := os.RemoveAll(abs); err != nil {
			return errors.WrapIO(err, ErrCodeWriteFailed, "clean output directory").WithPath(outputDir)
		}
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return errors.WrapIO(err, ErrCodeWriteFailed, "create output directory").WithPath(outputDir)
	}
	return nil
}

func writeFile(file string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return errors.WrapIO(err, ErrCodeWriteFailed, "create directory").WithPath(file)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return errors.WrapIO(err, ErrCodeWriteFailed, "read source").WithPath(file)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		return errors.WrapIO(err, ErrCodeWriteFailed, "write file").WithPath(file)
	}
	return nil
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
